// Package session holds the upload and detection state of one widget instance.
package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/sortbin/internal/detect"
	"github.com/tendant/sortbin/internal/preview"
	"github.com/tendant/sortbin/internal/storage"
	"github.com/tendant/sortbin/pkg/recycling"
)

// PreviewPath prefixes preview handles in rendered views
const PreviewPath = "/previews/"

// Upload is one file picked by the user
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Session is a set of uploaded images with their selection and detection results.
// Every method is a discrete event; the detection request itself runs unlocked.
type Session struct {
	id       string
	store    storage.Store
	previews *preview.Registry
	detector detect.Detector

	mu         sync.Mutex
	images     []recycling.UploadedImage
	selected   string
	results    map[string]*recycling.DetectionResult
	pending    map[string]bool
	lastErr    string
	lastActive time.Time
	closed     bool
}

// New creates an empty session. detector may be nil to disable detection.
func New(store storage.Store, previews *preview.Registry, detector detect.Detector) *Session {
	return &Session{
		id:         uuid.New().String(),
		store:      store,
		previews:   previews,
		detector:   detector,
		results:    make(map[string]*recycling.DetectionResult),
		pending:    make(map[string]bool),
		lastActive: time.Now(),
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Add stores the files and issues their previews.
// The first new image is selected only when nothing is selected yet.
// If any file fails, resources created by this call are released.
func (s *Session) Add(ctx context.Context, files []Upload) ([]recycling.UploadedImage, error) {
	if len(files) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrSessionClosed
	}

	added := make([]recycling.UploadedImage, 0, len(files))
	for _, f := range files {
		img, err := s.ingest(ctx, f)
		if err != nil {
			s.release(ctx, added)
			return nil, err
		}
		added = append(added, img)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.release(ctx, added)
		return nil, ErrSessionClosed
	}
	s.images = append(s.images, added...)
	if s.selected == "" {
		s.selected = added[0].ID
	}
	s.touch()
	s.mu.Unlock()

	log.Printf("[%s] Added %d image(s)", s.id, len(added))
	return added, nil
}

func (s *Session) ingest(ctx context.Context, f Upload) (recycling.UploadedImage, error) {
	contentType := f.ContentType
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(f.Data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return recycling.UploadedImage{}, fmt.Errorf("%w: %s (%s)", ErrNotImage, f.FileName, contentType)
	}

	handle, err := s.previews.Create(f.Data)
	if err != nil {
		return recycling.UploadedImage{}, fmt.Errorf("failed to create preview for %s: %w", f.FileName, err)
	}

	key, err := s.store.Put(ctx, f.FileName, bytes.NewReader(f.Data), int64(len(f.Data)), contentType)
	if err != nil {
		s.revoke(handle)
		return recycling.UploadedImage{}, fmt.Errorf("failed to store %s: %w", f.FileName, err)
	}

	return recycling.UploadedImage{
		ID:          uuid.New().String(),
		FileName:    f.FileName,
		ContentType: contentType,
		Size:        int64(len(f.Data)),
		StorageKey:  key,
		Preview:     handle,
	}, nil
}

// release frees previews and blobs of images no longer held
func (s *Session) release(ctx context.Context, images []recycling.UploadedImage) {
	for _, img := range images {
		s.revoke(img.Preview)
		if err := s.store.Delete(ctx, img.StorageKey); err != nil {
			log.Printf("[%s] Failed to delete blob %s: %v", s.id, img.StorageKey, err)
		}
	}
}

func (s *Session) revoke(handle string) {
	if err := s.previews.Revoke(handle); err != nil {
		log.Printf("[%s] Failed to revoke preview: %v", s.id, err)
	}
}

// Select makes id the selected image
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	s.selected = id
	s.touch()
	return nil
}

// Selected returns the selected image id, or "" when none
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Result returns the stored detection for id
func (s *Session) Result(id string) (*recycling.DetectionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	return r, ok
}

// Error returns the message of the last failed detection
func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Detect sends one image to the detector and stores the result.
// An empty id detects the selected image. Each image is detected at most
// once; while its request is pending further attempts are rejected.
func (s *Session) Detect(ctx context.Context, id string) (*recycling.DetectionResult, error) {
	s.mu.Lock()
	if id == "" {
		id = s.selected
	}
	if id == "" {
		s.mu.Unlock()
		return nil, ErrNoSelection
	}
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	if _, done := s.results[id]; done {
		s.mu.Unlock()
		return nil, ErrAlreadyDetected
	}
	if s.pending[id] {
		s.mu.Unlock()
		return nil, ErrDetectInFlight
	}
	if s.detector == nil {
		s.mu.Unlock()
		return nil, ErrDetectDisabled
	}
	img := s.images[idx]
	s.pending[id] = true
	s.lastErr = ""
	s.touch()
	s.mu.Unlock()

	log.Printf("[%s] Detecting image %s (%s)", s.id, id, img.FileName)
	result, err := s.detect(ctx, img)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	s.touch()

	if err != nil {
		if s.indexOf(id) >= 0 {
			s.lastErr = err.Error()
		}
		log.Printf("[%s] Detection failed for %s: %v", s.id, id, err)
		return nil, fmt.Errorf("%w: %w", ErrDetectFailed, err)
	}

	// The image may have been removed while the request was in flight
	if s.indexOf(id) < 0 {
		log.Printf("[%s] Discarding result for removed image %s", s.id, id)
		return nil, fmt.Errorf("%w: %s removed during detection", ErrImageNotFound, id)
	}

	s.results[id] = result
	log.Printf("[%s] ✓ Image %s detected: %s -> %s", s.id, id, result.Object, result.Route())
	return result, nil
}

func (s *Session) detect(ctx context.Context, img recycling.UploadedImage) (*recycling.DetectionResult, error) {
	rc, err := s.store.GetReader(ctx, img.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return s.detector.Detect(ctx, img.FileName, data)
}

// Remove drops one image, its preview, blob and result.
// A removed selection falls back to the first remaining image.
func (s *Session) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImageNotFound, id)
	}
	img := s.images[idx]
	s.images = append(s.images[:idx:idx], s.images[idx+1:]...)
	delete(s.results, id)
	if s.selected == id {
		s.selected = ""
		if len(s.images) > 0 {
			s.selected = s.images[0].ID
		}
	}
	s.touch()
	s.mu.Unlock()

	s.release(ctx, []recycling.UploadedImage{img})
	log.Printf("[%s] Removed image %s", s.id, id)
	return nil
}

// RemoveAll releases every image and clears selection, results and error
func (s *Session) RemoveAll(ctx context.Context) {
	s.mu.Lock()
	images := s.images
	s.images = nil
	s.selected = ""
	s.results = make(map[string]*recycling.DetectionResult)
	s.lastErr = ""
	s.touch()
	s.mu.Unlock()

	s.release(ctx, images)
	if len(images) > 0 {
		log.Printf("[%s] Removed all %d image(s)", s.id, len(images))
	}
}

// Close releases everything and rejects further uploads
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.RemoveAll(ctx)
}

// Snapshot returns a render-ready copy of the session
func (s *Session) Snapshot() recycling.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := recycling.SessionView{
		SessionID: s.id,
		Images:    make([]recycling.ImageState, 0, len(s.images)),
		Selected:  s.selected,
		Error:     s.lastErr,
	}
	for _, img := range s.images {
		state := recycling.ImageState{
			UploadedImage: img,
			PreviewURL:    PreviewPath + img.Preview,
			Detecting:     s.pending[img.ID],
		}
		if r, ok := s.results[img.ID]; ok {
			result := *r
			state.Result = &result
			state.Route = r.Route()
		}
		state.CanDetect = s.detector != nil && !state.Detecting && state.Result == nil
		view.Images = append(view.Images, state)
	}
	return view
}

// LastActive returns the time of the last event
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) indexOf(id string) int {
	for i, img := range s.images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

// touch must be called with mu held
func (s *Session) touch() {
	s.lastActive = time.Now()
}
