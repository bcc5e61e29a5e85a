package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/sortbin/pkg/recycling"
)

func names(suggestions []recycling.Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Name)
	}
	return out
}

func TestSearch_EmptyQueries(t *testing.T) {
	ds := testDataset()

	for _, q := range []string{"", " ", "\t\n  "} {
		t.Run(fmt.Sprintf("%q", q), func(t *testing.T) {
			got := Search(q, ds)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestSearch_NoDataset(t *testing.T) {
	got := Search("can", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_SubstringNotToken(t *testing.T) {
	got := Search("can", testDataset())

	// "can" is already covered by "Soda Can", so no keyword entry is synthesized
	assert.Equal(t, []recycling.Suggestion{
		{Name: "Soda Can", Category: "metal"},
		{Name: "Candle", Category: "trash"},
	}, got)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	got := Search("SODA", testDataset())
	require.Len(t, got, 1)
	assert.Equal(t, "Soda Can", got[0].Name)
}

func TestSearch_KeywordExpansion(t *testing.T) {
	got := Search("ba", testDataset())

	assert.Equal(t, []recycling.Suggestion{
		{Name: "Bag", Category: "plastic", IsKeywordMatch: true},
	}, got)
}

func TestSearch_KeywordCoveredByDirectMatch(t *testing.T) {
	got := Search("bottle", testDataset())

	// both plastic and glass list "bottle", but "Plastic Bottle" covers it
	assert.Equal(t, []string{"Plastic Bottle"}, names(got))
	assert.False(t, got[0].IsKeywordMatch)
}

func TestSearch_SynthesizedEntriesNotDeduplicatedAgainstEachOther(t *testing.T) {
	ds := recycling.NewDataset(nil, []recycling.KeywordGroup{
		{Category: "glass", Keywords: []string{"jar"}},
		{Category: "compost", Keywords: []string{"jar"}},
	})

	got := Search("ja", ds)

	assert.Equal(t, []recycling.Suggestion{
		{Name: "Jar", Category: "glass", IsKeywordMatch: true},
		{Name: "Jar", Category: "compost", IsKeywordMatch: true},
	}, got)
}

func TestSearch_KeywordOrderFollowsDataset(t *testing.T) {
	got := Search("o", recycling.NewDataset(nil, []recycling.KeywordGroup{
		{Category: "compost", Keywords: []string{"coffee grounds", "food"}},
		{Category: "glass", Keywords: []string{"window"}},
	}))

	assert.Equal(t, []string{"Coffee grounds", "Food", "Window"}, names(got))
	assert.Equal(t, "compost", got[0].Category)
	assert.Equal(t, "glass", got[2].Category)
}

func TestSearch_NoExpansionAtThreshold(t *testing.T) {
	ds := testDataset()
	got := Search("o", ds)

	direct := 0
	for _, item := range ds.Items {
		if strings.Contains(strings.ToLower(item.Name), "o") {
			direct++
		}
	}
	require.GreaterOrEqual(t, direct, recycling.KeywordExpansionThreshold)

	for _, s := range got {
		assert.False(t, s.IsKeywordMatch, "no keyword entries once direct matches reach the threshold")
	}
}

func TestSearch_TruncatesToMax(t *testing.T) {
	items := make([]recycling.Item, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, recycling.Item{Name: fmt.Sprintf("Box %02d", i), Category: "paper"})
	}
	ds := recycling.NewDataset(items, []recycling.KeywordGroup{
		{Category: "paper", Keywords: []string{"box"}},
	})

	got := Search("box", ds)

	require.Len(t, got, recycling.MaxSuggestions)
	assert.Equal(t, "Box 00", got[0].Name)
	assert.Equal(t, "Box 07", got[7].Name)
}

func TestSearch_DirectMatchesPrecedeKeywordMatches(t *testing.T) {
	ds := recycling.NewDataset(
		[]recycling.Item{
			{Name: "Tea Tin", Category: "metal"},
			{Name: "Tinfoil Tray", Category: "metal"},
		},
		[]recycling.KeywordGroup{
			{Category: "electronics", Keywords: []string{"tinsel lights", "tint", "tinkertoy", "tinny speaker", "tinder", "tinplate", "tincture"}},
		},
	)

	got := Search("tin", ds)

	require.Len(t, got, recycling.MaxSuggestions)
	assert.Equal(t, []string{
		"Tea Tin", "Tinfoil Tray",
		"Tinsel lights", "Tint", "Tinkertoy", "Tinny speaker", "Tinder", "Tinplate",
	}, names(got))
}

func TestSearch_Properties(t *testing.T) {
	ds := testDataset()
	queries := []string{"a", "o", "can", "box", "bottle", "x", "jar", "pe", "Glass", "e"}

	for _, q := range queries {
		got := Search(q, ds)
		assert.LessOrEqual(t, len(got), recycling.MaxSuggestions, q)

		direct := 0
		for _, s := range got {
			if s.IsKeywordMatch {
				continue
			}
			direct++
			assert.Contains(t, strings.ToLower(s.Name), strings.ToLower(q), q)
		}
		if direct >= recycling.KeywordExpansionThreshold {
			for _, s := range got {
				assert.False(t, s.IsKeywordMatch, q)
			}
		}

		assert.Equal(t, got, Search(q, ds), "search must be deterministic")
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Coffee grounds", capitalize("coffee grounds"))
	assert.Equal(t, "Éclair box", capitalize("éclair box"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "ALREADY", capitalize("ALREADY"))
}
