package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-content/pkg/simplecontent/presets"
)

func TestContentStore_PutGet(t *testing.T) {
	ctx := context.Background()
	cs := NewContentStore(presets.NewTesting(t))

	key, err := cs.Put(ctx, "jar.png", strings.NewReader("glass jar"), 9, "image/png")
	require.NoError(t, err)
	_, err = uuid.Parse(key)
	require.NoError(t, err)

	ok, err := cs.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := cs.GetReader(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "glass jar", string(data))

	// Originals stay with the content service
	require.NoError(t, cs.Delete(ctx, key))
	ok, err = cs.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestContentStore_InvalidKey(t *testing.T) {
	ctx := context.Background()
	cs := NewContentStore(presets.NewTesting(t))

	_, err := cs.GetReader(ctx, "not-a-uuid")
	assert.Error(t, err)
	_, err = cs.Exists(ctx, "not-a-uuid")
	assert.Error(t, err)
	assert.Error(t, cs.Delete(ctx, "not-a-uuid"))

	ok, err := cs.Exists(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.False(t, ok)
}
