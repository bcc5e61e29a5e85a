// Package preview issues displayable thumbnails for uploaded images.
//
// A preview handle behaves like a browser object URL: it resolves to the
// thumbnail until it is revoked, and every handle must be revoked exactly once.
package preview

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/tendant/sortbin/internal/metrics"
)

// Default thumbnail box and JPEG quality
const (
	DefaultWidth   = 300
	DefaultHeight  = 300
	DefaultQuality = 80
)

// Registry holds live preview thumbnails keyed by handle
type Registry struct {
	width   int
	height  int
	quality int

	mu       sync.RWMutex
	previews map[string][]byte
}

// NewRegistry creates a registry producing 300x300 JPEG thumbnails
func NewRegistry() *Registry {
	return NewRegistryWithSize(DefaultWidth, DefaultHeight)
}

// NewRegistryWithSize creates a registry fitting thumbnails into width x height
func NewRegistryWithSize(width, height int) *Registry {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Registry{
		width:    width,
		height:   height,
		quality:  DefaultQuality,
		previews: make(map[string][]byte),
	}
}

// Create renders a thumbnail of data and returns its handle
func (r *Registry) Create(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	// Lanczos keeps small previews sharp
	thumbnail := imaging.Fit(img, r.width, r.height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumbnail, &jpeg.Options{Quality: r.quality}); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	handle := uuid.New().String()

	r.mu.Lock()
	r.previews[handle] = buf.Bytes()
	r.mu.Unlock()

	metrics.LivePreviews.Inc()
	return handle, nil
}

// Get returns the JPEG thumbnail for handle
func (r *Registry) Get(handle string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.previews[handle]
	return data, ok
}

// Revoke releases handle. Revoking twice returns ErrUnknownHandle.
func (r *Registry) Revoke(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.previews[handle]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	delete(r.previews, handle)
	metrics.LivePreviews.Dec()
	return nil
}

// Live returns the number of unrevoked handles
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.previews)
}
