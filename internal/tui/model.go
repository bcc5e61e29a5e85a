// Package tui is a terminal rendition of the recycling search box.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tendant/sortbin/internal/dataset"
	"github.com/tendant/sortbin/internal/search"
	"github.com/tendant/sortbin/pkg/recycling"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	itemStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3D8B40")).Bold(true)
	categoryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))
	dropdownStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6272A4")).Padding(0, 1)
)

// datasetMsg carries the result of the background dataset load
type datasetMsg struct {
	ds  *recycling.Dataset
	err error
}

// Model is the Bubble Tea model of the search box
type Model struct {
	input     textinput.Model
	box       *search.Box
	source    dataset.Source
	highlight int
	route     *recycling.Route
	loading   bool
	loadErr   error
}

// New creates the model. The dataset is loaded from src when the program starts.
func New(src dataset.Source, router *search.Router) Model {
	input := textinput.New()
	input.Placeholder = "What would you like to recycle?"
	input.Prompt = "🔍 "
	input.CharLimit = 200
	input.Focus()

	return Model{
		input:     input,
		box:       search.NewBox(nil, router),
		source:    src,
		highlight: -1,
		loading:   src != nil,
	}
}

// Init starts the dataset load
func (m Model) Init() tea.Cmd {
	if m.source == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, loadDataset(m.source))
}

func loadDataset(src dataset.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ds, err := src.Load(ctx)
		if err == nil {
			err = dataset.Validate(ds)
		}
		if err != nil {
			return datasetMsg{err: err}
		}
		return datasetMsg{ds: ds}
	}
}

// Update handles key presses and the dataset load
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case datasetMsg:
		m.loading = false
		if msg.err != nil {
			// Search stays empty without a dataset
			m.loadErr = msg.err
			return m, nil
		}
		m.box.SetDataset(msg.ds)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.box.Open() && m.highlight > -1 {
				m.highlight--
			}
			return m, nil

		case tea.KeyDown:
			if m.box.Open() && m.highlight < len(m.box.Suggestions())-1 {
				m.highlight++
			}
			return m, nil

		case tea.KeyEnter:
			m.enter()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.box.Term() {
		m.box.SetTerm(m.input.Value())
		m.highlight = -1
	}
	return m, cmd
}

// enter chooses the highlighted suggestion or submits the term
func (m *Model) enter() {
	var route recycling.Route
	if m.box.Open() && m.highlight >= 0 {
		r, err := m.box.Choose(m.highlight)
		if err != nil {
			return
		}
		route = r
	} else {
		route = m.box.Submit()
	}

	m.highlight = -1
	m.input.SetValue(m.box.Term())
	m.input.CursorEnd()
	if !route.NotFound {
		m.route = &route
	}
}

// Route returns the last page navigated to
func (m Model) Route() *recycling.Route {
	return m.route
}

// View renders the input, dropdown, notice and status bar
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Recycling search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.box.Open() {
		var rows []string
		for i, s := range m.box.Suggestions() {
			style := itemStyle
			if i == m.highlight {
				style = highlightStyle
			}
			rows = append(rows, style.Render(s.Name)+"  "+categoryStyle.Render(s.Category))
		}
		b.WriteString(dropdownStyle.Render(strings.Join(rows, "\n")))
		b.WriteString("\n")
	}

	if msg := m.box.NotFoundMessage(); msg != "" {
		b.WriteString(noticeStyle.Render(msg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) status() string {
	switch {
	case m.loading:
		return "Loading dataset..."
	case m.route != nil:
		return fmt.Sprintf("→ %s (%s)  ·  esc to quit", m.route.Path, m.route.Source)
	default:
		return "↑/↓ to pick · enter to go · esc to quit"
	}
}
