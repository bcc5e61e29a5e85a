package search

import (
	"strings"

	"github.com/tendant/sortbin/pkg/recycling"
)

// Router resolves a submitted query to a category page
type Router struct {
	table KeywordTable
}

// NewRouter creates a router over table; a nil table uses the material defaults
func NewRouter(table KeywordTable) *Router {
	if table == nil {
		table = DefaultMaterialKeywords()
	}
	return &Router{table: table}
}

// Table returns the fallback keyword table
func (r *Router) Table() KeywordTable {
	return r.table
}

// Resolve picks the route for an explicit submission.
//
// A suggestion whose whole name equals the query (ignoring case) wins.
// Otherwise the first table route with a keyword contained in the query
// is used. Note the direction: keyword-in-query, unlike Search.
func (r *Router) Resolve(query string, shown []recycling.Suggestion) recycling.Route {
	term := lower(query)

	for _, s := range shown {
		if lower(s.Name) == term {
			return ForSuggestion(query, s)
		}
	}

	for _, route := range r.table {
		for _, kw := range route.Keywords {
			if strings.Contains(term, kw) {
				return recycling.Route{
					Path:     "/" + route.Category,
					Category: route.Category,
					Query:    query,
					Source:   recycling.SourceFallback,
				}
			}
		}
	}

	return recycling.Route{
		Query:    query,
		NotFound: true,
		Source:   recycling.SourceNone,
	}
}

// ForSuggestion is the route taken when a suggestion is chosen
func ForSuggestion(query string, s recycling.Suggestion) recycling.Route {
	return recycling.Route{
		Path:     "/" + s.Category,
		Category: s.Category,
		Query:    query,
		Source:   recycling.SourceSuggestion,
	}
}
