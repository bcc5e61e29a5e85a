package search

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordRoute maps a category page to the keywords that imply it
type KeywordRoute struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// KeywordTable is the ordered fallback table; earlier routes win
type KeywordTable []KeywordRoute

// DefaultMaterialKeywords returns the built-in material table
func DefaultMaterialKeywords() KeywordTable {
	return KeywordTable{
		{Category: "glass", Keywords: []string{"glass", "bottle", "jar"}},
		{Category: "plastic", Keywords: []string{"plastic", "container"}},
		{Category: "compost", Keywords: []string{"compost", "food", "organic"}},
		{Category: "metal", Keywords: []string{"metal", "can", "aluminum", "soda"}},
		{Category: "rubber", Keywords: []string{"rubber", "glove", "tire"}},
		{Category: "paper", Keywords: []string{"paper", "cardboard", "newspaper", "book"}},
		{Category: "electronics", Keywords: []string{"electronic", "device", "phone", "computer"}},
		{Category: "batteries", Keywords: []string{"battery", "lithium", "rechargeable"}},
	}
}

// Categories lists the table's categories in order
func (t KeywordTable) Categories() []string {
	out := make([]string, 0, len(t))
	for _, r := range t {
		out = append(out, r.Category)
	}
	return out
}

// Validate rejects empty categories and keywords.
// An empty keyword would match every query.
func (t KeywordTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no routes", ErrInvalidKeywordTable)
	}
	for i, r := range t {
		if strings.TrimSpace(r.Category) == "" {
			return fmt.Errorf("%w: route %d has no category", ErrInvalidKeywordTable, i)
		}
		for _, kw := range r.Keywords {
			if kw == "" {
				return fmt.Errorf("%w: empty keyword for %q", ErrInvalidKeywordTable, r.Category)
			}
		}
	}
	return nil
}

type keywordFile struct {
	Routes KeywordTable `yaml:"routes"`
}

// LoadKeywordTable reads a YAML keyword table.
// If path is empty or the file doesn't exist, the default table is returned.
//
//	routes:
//	  - category: glass
//	    keywords: [glass, bottle, jar]
func LoadKeywordTable(path string) (KeywordTable, error) {
	if path == "" {
		return DefaultMaterialKeywords(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultMaterialKeywords(), nil
		}
		return nil, fmt.Errorf("failed to read keyword table: %w", err)
	}

	var f keywordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse keyword table: %w", err)
	}
	if err := f.Routes.Validate(); err != nil {
		return nil, err
	}

	return f.Routes, nil
}
