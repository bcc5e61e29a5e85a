package search

import "errors"

var (
	// ErrInvalidKeywordTable is returned when a keyword table can't be used for routing
	ErrInvalidKeywordTable = errors.New("invalid keyword table")

	// ErrNoSuggestion is returned when a suggestion index is out of range
	ErrNoSuggestion = errors.New("no such suggestion")
)
