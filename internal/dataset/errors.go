package dataset

import "errors"

var (
	// ErrInvalidDataset is returned when a loaded document can't back the search
	ErrInvalidDataset = errors.New("invalid recycling dataset")

	// ErrAlreadyLoaded is returned when a holder is asked to load a second time
	ErrAlreadyLoaded = errors.New("dataset already loaded")
)
