package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/sortbin/pkg/recycling"
)

func TestBox_TypingOpensDropdown(t *testing.T) {
	box := NewBox(testDataset(), nil)

	box.SetTerm("can")
	assert.True(t, box.Open())
	assert.Len(t, box.Suggestions(), 2)

	box.SetTerm("   ")
	assert.False(t, box.Open())
	assert.Empty(t, box.Suggestions())
}

func TestBox_SubmitExactSuggestionClearsTerm(t *testing.T) {
	box := NewBox(testDataset(), nil)
	box.SetTerm("Soda Can")

	route := box.Submit()

	assert.Equal(t, "/metal", route.Path)
	assert.Equal(t, recycling.SourceSuggestion, route.Source)
	assert.Equal(t, "", box.Term())
	assert.False(t, box.Open())
	assert.False(t, box.NotFound())
}

func TestBox_SubmitFallbackKeepsTerm(t *testing.T) {
	box := NewBox(testDataset(), nil)
	box.SetTerm("my glass jar")

	route := box.Submit()

	assert.Equal(t, "/glass", route.Path)
	assert.Equal(t, recycling.SourceFallback, route.Source)
	assert.Equal(t, "my glass jar", box.Term())
	assert.False(t, box.NotFound())
}

func TestBox_SubmitNotFound(t *testing.T) {
	box := NewBox(testDataset(), nil)
	box.SetTerm("xyz123")

	route := box.Submit()

	assert.True(t, route.NotFound)
	assert.Empty(t, route.Path)
	assert.True(t, box.NotFound())
	assert.Equal(t, `Sorry, no match found for "xyz123".`, box.NotFoundMessage())

	// the notice clears on the next edit
	box.SetTerm("xyz12")
	assert.False(t, box.NotFound())
	assert.Empty(t, box.NotFoundMessage())
}

func TestBox_NotFoundMessageShowsTermVerbatim(t *testing.T) {
	box := NewBox(testDataset(), nil)
	box.SetTerm(`12" xyz\1`)

	box.Submit()

	assert.Equal(t, `Sorry, no match found for "12" xyz\1".`, box.NotFoundMessage())
}

func TestBox_Choose(t *testing.T) {
	box := NewBox(testDataset(), nil)
	box.SetTerm("ba")

	route, err := box.Choose(0)
	require.NoError(t, err)
	assert.Equal(t, "/plastic", route.Path)
	assert.Equal(t, "", box.Term())

	_, err = box.Choose(0)
	assert.ErrorIs(t, err, ErrNoSuggestion)
}

func TestBox_LateDataset(t *testing.T) {
	box := NewBox(nil, nil)
	box.SetTerm("can")
	assert.Empty(t, box.Suggestions())

	box.SetDataset(testDataset())
	assert.Len(t, box.Suggestions(), 2)
}
