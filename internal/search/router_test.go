package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/sortbin/pkg/recycling"
)

func TestRouter_Resolve(t *testing.T) {
	router := NewRouter(nil)
	shown := []recycling.Suggestion{
		{Name: "Soda Can", Category: "metal"},
		{Name: "Candle", Category: "trash"},
	}

	tests := []struct {
		name     string
		query    string
		shown    []recycling.Suggestion
		expected recycling.Route
	}{
		{
			name:  "exact suggestion ignoring case",
			query: "soda CAN",
			shown: shown,
			expected: recycling.Route{
				Path: "/metal", Category: "metal", Query: "soda CAN", Source: recycling.SourceSuggestion,
			},
		},
		{
			name:  "suggestion wins over fallback keyword",
			query: "candle",
			shown: shown,
			expected: recycling.Route{
				Path: "/trash", Category: "trash", Query: "candle", Source: recycling.SourceSuggestion,
			},
		},
		{
			name:  "fallback keyword contained in query",
			query: "my glass jar",
			expected: recycling.Route{
				Path: "/glass", Category: "glass", Query: "my glass jar", Source: recycling.SourceFallback,
			},
		},
		{
			name:  "first table route wins",
			query: "soda bottle",
			expected: recycling.Route{
				Path: "/glass", Category: "glass", Query: "soda bottle", Source: recycling.SourceFallback,
			},
		},
		{
			name:  "partial suggestion name falls through to keywords",
			query: "soda",
			shown: shown,
			expected: recycling.Route{
				Path: "/metal", Category: "metal", Query: "soda", Source: recycling.SourceFallback,
			},
		},
		{
			name:  "uppercase query still hits keyword",
			query: "OLD PHONE",
			expected: recycling.Route{
				Path: "/electronics", Category: "electronics", Query: "OLD PHONE", Source: recycling.SourceFallback,
			},
		},
		{
			name:     "nothing matches",
			query:    "xyz123",
			expected: recycling.Route{Query: "xyz123", NotFound: true, Source: recycling.SourceNone},
		},
		{
			name:     "empty query",
			query:    "",
			expected: recycling.Route{Query: "", NotFound: true, Source: recycling.SourceNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, router.Resolve(tt.query, tt.shown))
		})
	}
}

func TestRouter_CustomTable(t *testing.T) {
	router := NewRouter(KeywordTable{
		{Category: "hazardous", Keywords: []string{"paint"}},
	})

	assert.Equal(t, "/hazardous", router.Resolve("leftover paint can", nil).Path)
	assert.True(t, router.Resolve("glass", nil).NotFound)
}

func TestDefaultMaterialKeywords_Order(t *testing.T) {
	assert.Equal(t, []string{
		"glass", "plastic", "compost", "metal", "rubber", "paper", "electronics", "batteries",
	}, DefaultMaterialKeywords().Categories())
	assert.NoError(t, DefaultMaterialKeywords().Validate())
}

func TestLoadKeywordTable(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		table, err := LoadKeywordTable("")
		require.NoError(t, err)
		assert.Equal(t, DefaultMaterialKeywords(), table)
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		table, err := LoadKeywordTable(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultMaterialKeywords(), table)
	})

	t.Run("yaml table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keywords.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - category: textiles
    keywords: [shirt, jeans]
  - category: glass
    keywords: [jar]
`), 0o644))

		table, err := LoadKeywordTable(path)
		require.NoError(t, err)
		assert.Equal(t, KeywordTable{
			{Category: "textiles", Keywords: []string{"shirt", "jeans"}},
			{Category: "glass", Keywords: []string{"jar"}},
		}, table)
	})

	t.Run("empty keyword rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keywords.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - category: glass
    keywords: [""]
`), 0o644))

		_, err := LoadKeywordTable(path)
		assert.ErrorIs(t, err, ErrInvalidKeywordTable)
	})

	t.Run("no routes rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keywords.yaml")
		require.NoError(t, os.WriteFile(path, []byte("routes: []\n"), 0o644))

		_, err := LoadKeywordTable(path)
		assert.ErrorIs(t, err, ErrInvalidKeywordTable)
	})
}
