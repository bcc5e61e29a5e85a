// Package search implements suggestion matching and query routing over the
// recycling dataset.
package search

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tendant/sortbin/pkg/recycling"
)

// Search returns the dropdown suggestions for query.
//
// Items whose name contains the query come first, in dataset order. When
// fewer than recycling.KeywordExpansionThreshold items match, keyword hits
// are synthesized per category unless a direct match already covers the
// keyword. The result never exceeds recycling.MaxSuggestions entries.
func Search(query string, ds *recycling.Dataset) []recycling.Suggestion {
	results := make([]recycling.Suggestion, 0, recycling.MaxSuggestions)
	if ds == nil || strings.TrimSpace(query) == "" {
		return results
	}

	term := lower(query)

	var matches []recycling.Suggestion
	for _, item := range ds.Items {
		if strings.Contains(lower(item.Name), term) {
			matches = append(matches, recycling.Suggestion{
				Name:     item.Name,
				Category: item.Category,
			})
		}
	}

	if len(matches) < recycling.KeywordExpansionThreshold {
		direct := matches
		for _, category := range ds.Categories() {
			for _, keyword := range ds.Keywords[category] {
				if !strings.Contains(keyword, term) || covers(direct, keyword) {
					continue
				}
				matches = append(matches, recycling.Suggestion{
					Name:           capitalize(keyword),
					Category:       category,
					IsKeywordMatch: true,
				})
			}
		}
	}

	if len(matches) > recycling.MaxSuggestions {
		matches = matches[:recycling.MaxSuggestions]
	}
	return append(results, matches...)
}

// covers reports whether any suggestion name already contains keyword
func covers(suggestions []recycling.Suggestion, keyword string) bool {
	for _, s := range suggestions {
		if strings.Contains(lower(s.Name), keyword) {
			return true
		}
	}
	return false
}

// lower applies full Unicode lower-casing.
// Casers keep state, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// capitalize upper-cases the first rune only
func capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}
