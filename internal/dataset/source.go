// Package dataset loads the static recycling data the search runs over.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tendant/sortbin/pkg/recycling"
)

// Source provides the recycling dataset
type Source interface {
	// Load fetches and decodes the dataset
	Load(ctx context.Context) (*recycling.Dataset, error)

	// Name describes the source for logs
	Name() string
}

// FileSource reads the dataset from a local JSON file
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path
func (fs *FileSource) Name() string {
	return "file:" + fs.path
}

// Load reads and decodes the file
func (fs *FileSource) Load(ctx context.Context) (*recycling.Dataset, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var ds recycling.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	return &ds, nil
}

// Validate checks that every item can be shown and routed
func Validate(ds *recycling.Dataset) error {
	if ds == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidDataset)
	}
	for i, item := range ds.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidDataset, i)
		}
		if strings.TrimSpace(item.Category) == "" {
			return fmt.Errorf("%w: item %q has no category", ErrInvalidDataset, item.Name)
		}
	}
	for _, category := range ds.Categories() {
		if strings.TrimSpace(category) == "" {
			return fmt.Errorf("%w: keyword group without category", ErrInvalidDataset)
		}
	}
	return nil
}
