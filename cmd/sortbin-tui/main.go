package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tendant/sortbin/internal/bootstrap"
	"github.com/tendant/sortbin/internal/config"
	"github.com/tendant/sortbin/internal/dataset"
	"github.com/tendant/sortbin/internal/search"
	"github.com/tendant/sortbin/internal/tui"
)

// Terminal search box.
// Usage: sortbin-tui [dataset.json | http://host]
func main() {
	// Logs would garble the screen
	log.SetOutput(io.Discard)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var src dataset.Source
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			src = dataset.NewHTTPSource(arg)
		} else {
			src = dataset.NewFileSource(arg)
		}
	} else {
		s, cleanup, err := bootstrap.DatasetSource(context.Background(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize dataset source: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		src = s
	}

	table, err := search.LoadKeywordTable(cfg.KeywordsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load keyword table: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.New(src, search.NewRouter(table)))
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "TUI failed: %v\n", err)
		os.Exit(1)
	}

	if m, ok := final.(tui.Model); ok && m.Route() != nil {
		fmt.Println(m.Route().Path)
	}
}
