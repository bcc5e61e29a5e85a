package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*FilesystemStorage)(nil)
var _ Store = (*ContentStore)(nil)
var _ Store = (*S3Storage)(nil)

func TestFilesystemStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	key, err := fs.Put(ctx, "Bottle.PNG", strings.NewReader("image bytes"), 11, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"))

	ok, err := fs.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := fs.GetReader(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))

	require.NoError(t, fs.Delete(ctx, key))
	ok, err = fs.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is fine
	assert.NoError(t, fs.Delete(ctx, key))
}

func TestFilesystemStorage_DistinctKeys(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	a, err := fs.Put(ctx, "same.jpg", strings.NewReader("a"), 1, "image/jpeg")
	require.NoError(t, err)
	b, err := fs.Put(ctx, "same.jpg", strings.NewReader("b"), 1, "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFilesystemStorage_MissingKey(t *testing.T) {
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	_, err = fs.GetReader(context.Background(), "missing.png")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFilesystemStorage_Traversal(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	tests := []string{"../etc/passwd", "../../x", "..", ""}
	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := fs.GetReader(ctx, key)
			assert.Error(t, err)
			_, err = fs.Exists(ctx, key)
			assert.Error(t, err)
			assert.Error(t, fs.Delete(ctx, key))
		})
	}
}
