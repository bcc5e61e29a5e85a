package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/sortbin/pkg/recycling"
)

type staticSource struct {
	ds  *recycling.Dataset
	err error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Load(ctx context.Context) (*recycling.Dataset, error) { return s.ds, s.err }

func testDataset() *recycling.Dataset {
	return recycling.NewDataset(
		[]recycling.Item{
			{Name: "Glass Jar", Category: "glass"},
			{Name: "Jam Jar Lid", Category: "metal"},
			{Name: "Soda Can", Category: "metal"},
		},
		[]recycling.KeywordGroup{{Category: "glass", Keywords: []string{"jar"}}},
	)
}

func loaded(t *testing.T) Model {
	t.Helper()
	src := staticSource{ds: testDataset()}
	m := New(src, nil)
	msg := loadDataset(src)()
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func press(m Model, k tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(Model)
}

func TestModel_TypingShowsSuggestions(t *testing.T) {
	m := typeText(loaded(t), "jar")

	assert.True(t, m.box.Open())
	require.Len(t, m.box.Suggestions(), 2)
	view := m.View()
	assert.Contains(t, view, "Glass Jar")
	assert.Contains(t, view, "Jam Jar Lid")
}

func TestModel_ChooseHighlighted(t *testing.T) {
	m := typeText(loaded(t), "jar")
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	assert.Equal(t, 1, m.highlight)

	m = press(m, tea.KeyEnter)
	require.NotNil(t, m.Route())
	assert.Equal(t, "/metal", m.Route().Path)
	assert.Equal(t, "", m.input.Value())
	assert.False(t, m.box.Open())
}

func TestModel_HighlightStaysInRange(t *testing.T) {
	m := typeText(loaded(t), "soda")
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	assert.Equal(t, 0, m.highlight)
	m = press(m, tea.KeyUp)
	m = press(m, tea.KeyUp)
	assert.Equal(t, -1, m.highlight)
}

func TestModel_SubmitFallbackKeepsTerm(t *testing.T) {
	m := typeText(loaded(t), "old newspaper")
	m = press(m, tea.KeyEnter)

	require.NotNil(t, m.Route())
	assert.Equal(t, "/paper", m.Route().Path)
	assert.Equal(t, "old newspaper", m.input.Value())
}

func TestModel_SubmitNotFound(t *testing.T) {
	m := typeText(loaded(t), "xyzzy")
	m = press(m, tea.KeyEnter)

	assert.Nil(t, m.Route())
	assert.Contains(t, m.View(), `Sorry, no match found for "xyzzy".`)

	// Editing clears the notice
	m = typeText(m, "z")
	assert.NotContains(t, m.View(), "Sorry")
}

func TestModel_DatasetFailureLeavesSearchEmpty(t *testing.T) {
	src := staticSource{err: errors.New("offline")}
	m := New(src, nil)
	next, _ := m.Update(loadDataset(src)())
	m = next.(Model)

	m = typeText(m, "jar")
	assert.Empty(t, m.box.Suggestions())
	assert.Error(t, m.loadErr)
	assert.False(t, strings.Contains(m.View(), "Loading"))
}

func TestModel_Quit(t *testing.T) {
	_, cmd := loaded(t).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
