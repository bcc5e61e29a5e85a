package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/tendant/sortbin/pkg/client"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: sortbin-detect <image> [image...]")
		os.Exit(1)
	}

	serverURL := os.Getenv("SORTBIN_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	var files []client.File
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		files = append(files, client.File{Name: filepath.Base(path), Data: data})
	}

	os.Exit(run(context.Background(), client.New(serverURL), files, os.Stdout))
}

// run detects every file in a fresh session and returns the exit code.
// The session is closed on every path once created.
func run(ctx context.Context, c *client.Client, files []client.File, out io.Writer) int {
	sessionID, err := c.CreateSession(ctx)
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		return 1
	}
	defer func() {
		if err := c.CloseSession(ctx, sessionID); err != nil {
			log.Printf("Failed to close session %s: %v", sessionID, err)
		}
	}()

	view, err := c.UploadImages(ctx, sessionID, files)
	if err != nil {
		log.Printf("Failed to upload images: %v", err)
		return 1
	}
	fmt.Fprintf(out, "✓ Uploaded %d image(s) to session %s\n", len(view.Images), sessionID)

	failed := 0
	for _, img := range view.Images {
		resp, err := c.Detect(ctx, sessionID, img.ID)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", img.FileName, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "✓ %s\n", img.FileName)
		fmt.Fprintf(out, "  Object:   %s\n", resp.Result.Object)
		fmt.Fprintf(out, "  Material: %s\n", resp.Result.SubCategory)
		fmt.Fprintf(out, "  Bin Type: %s\n", resp.Result.MainCategory)
		fmt.Fprintf(out, "  Tips:     %s\n", resp.Route)
	}

	if failed > 0 {
		return 1
	}
	return 0
}
