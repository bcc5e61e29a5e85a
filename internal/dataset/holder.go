package dataset

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/tendant/sortbin/pkg/recycling"
)

// Holder keeps the dataset loaded at startup.
//
// The dataset is loaded at most once. When that load fails the holder stays
// inert for the process lifetime and Dataset returns nil, which makes every
// search come back empty.
type Holder struct {
	mu      sync.RWMutex
	ds      *recycling.Dataset
	source  string
	loaded  bool
	loadErr error
}

// NewHolder creates an empty holder
func NewHolder() *Holder {
	return &Holder{}
}

// Load fetches the dataset from src.
// Failures are logged and returned; the holder remains inert.
func (h *Holder) Load(ctx context.Context, src Source) error {
	h.mu.Lock()
	if h.loaded {
		h.mu.Unlock()
		return ErrAlreadyLoaded
	}
	h.loaded = true
	h.source = src.Name()
	h.mu.Unlock()

	ds, err := src.Load(ctx)
	if err == nil {
		err = Validate(ds)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.loadErr = fmt.Errorf("failed to load dataset from %s: %w", src.Name(), err)
		log.Printf("Dataset unavailable, search disabled: %v", h.loadErr)
		return h.loadErr
	}

	h.ds = ds
	log.Printf("✓ Dataset loaded from %s: %d items, %d keyword categories", src.Name(), len(ds.Items), len(ds.Categories()))
	return nil
}

// Dataset returns the loaded dataset or nil
func (h *Holder) Dataset() *recycling.Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ds
}

// Ready reports whether a dataset is available
func (h *Holder) Ready() bool {
	return h.Dataset() != nil
}

// Err returns the load failure, if any
func (h *Holder) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadErr
}
