package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tendant/simple-content/pkg/simplecontent"
)

// Fixed owner and tenant for uploads made by this service
var (
	contentOwnerID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	contentTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// ContentStore keeps images in a simple-content service.
// Keys are content IDs.
type ContentStore struct {
	service simplecontent.Service
}

// NewContentStore creates a store backed by a simple-content service
func NewContentStore(service simplecontent.Service) *ContentStore {
	return &ContentStore{
		service: service,
	}
}

// Put uploads r as new content and returns its content ID
func (cs *ContentStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	content, err := cs.service.UploadContent(ctx, simplecontent.UploadContentRequest{
		OwnerID:      contentOwnerID,
		TenantID:     contentTenantID,
		Name:         filepath.Base(name),
		DocumentType: contentType,
		Reader:       r,
		FileName:     filepath.Base(name),
		FileSize:     max(size, 0),
		Tags:         []string{"upload", "image"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload content: %w", err)
	}

	return content.ID.String(), nil
}

// GetReader returns a reader for content by content ID
func (cs *ContentStore) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return nil, fmt.Errorf("invalid content ID: %w", err)
	}

	reader, err := cs.service.DownloadContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to download content: %w", err)
	}

	return reader, nil
}

// Exists checks if content exists by content ID
func (cs *ContentStore) Exists(ctx context.Context, key string) (bool, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return false, fmt.Errorf("invalid content ID: %w", err)
	}

	// Any lookup error is treated as missing
	if _, err := cs.service.GetContent(ctx, id); err != nil {
		return false, nil
	}

	return true, nil
}

// Delete is a no-op: the content service retains originals.
// The session still releases its preview and result for the image.
func (cs *ContentStore) Delete(ctx context.Context, key string) error {
	if _, err := uuid.Parse(key); err != nil {
		return fmt.Errorf("invalid content ID: %w", err)
	}
	return nil
}
