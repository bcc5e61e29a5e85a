package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists at a key
var ErrNotFound = errors.New("blob not found")

// Reader provides read access to stored content
type Reader interface {
	// GetReader returns a reader for the content at the given key
	GetReader(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if content exists at the given key
	Exists(ctx context.Context, key string) (bool, error)
}

// Store keeps the original bytes of uploaded images
type Store interface {
	Reader

	// Put stores size bytes read from r under a new key derived from name
	// and returns the key. A negative size means unknown.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes the blob at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend names accepted by configuration
const (
	BackendFilesystem = "fs"
	BackendContent    = "content"
	BackendS3         = "s3"
)
