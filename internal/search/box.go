package search

import (
	"fmt"
	"strings"

	"github.com/tendant/sortbin/pkg/recycling"
)

// Box holds the state of a search input with its suggestion dropdown.
// It is not safe for concurrent use; front ends drive it from one event loop.
type Box struct {
	router  *Router
	dataset *recycling.Dataset

	term        string
	suggestions []recycling.Suggestion
	open        bool
	notFound    bool
}

// NewBox creates a search box. ds may be nil until the dataset arrives.
func NewBox(ds *recycling.Dataset, router *Router) *Box {
	if router == nil {
		router = NewRouter(nil)
	}
	return &Box{
		router:      router,
		dataset:     ds,
		suggestions: Search("", nil),
	}
}

// SetDataset installs a late-loaded dataset and refreshes the suggestions
func (b *Box) SetDataset(ds *recycling.Dataset) {
	b.dataset = ds
	b.suggestions = Search(b.term, b.dataset)
}

// SetTerm handles an edit of the input
func (b *Box) SetTerm(term string) {
	b.term = term
	b.suggestions = Search(term, b.dataset)
	b.open = strings.TrimSpace(term) != ""
	b.notFound = false
}

// Choose navigates to the i-th shown suggestion and resets the input
func (b *Box) Choose(i int) (recycling.Route, error) {
	if i < 0 || i >= len(b.suggestions) {
		return recycling.Route{}, fmt.Errorf("%w: %d", ErrNoSuggestion, i)
	}
	route := ForSuggestion(b.term, b.suggestions[i])
	b.reset()
	return route, nil
}

// Submit resolves the current term. A route to a shown suggestion resets
// the input; a fallback route keeps it; no match raises the not-found notice.
func (b *Box) Submit() recycling.Route {
	route := b.router.Resolve(b.term, b.suggestions)
	switch route.Source {
	case recycling.SourceSuggestion:
		b.reset()
	case recycling.SourceNone:
		b.notFound = true
	}
	return route
}

func (b *Box) reset() {
	b.term = ""
	b.suggestions = Search("", b.dataset)
	b.open = false
	b.notFound = false
}

// Term returns the current input
func (b *Box) Term() string { return b.term }

// Suggestions returns the shown suggestions
func (b *Box) Suggestions() []recycling.Suggestion { return b.suggestions }

// Open reports whether the dropdown is shown
func (b *Box) Open() bool { return b.open && len(b.suggestions) > 0 }

// NotFound reports whether the last submission matched nothing
func (b *Box) NotFound() bool { return b.notFound }

// NotFoundMessage is the inline notice for a failed submission
func (b *Box) NotFoundMessage() string {
	if !b.notFound {
		return ""
	}
	return fmt.Sprintf("Sorry, no match found for \"%s\".", b.term)
}
