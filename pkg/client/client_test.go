package client

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/sortbin/internal/dataset"
	"github.com/tendant/sortbin/internal/handlers"
	"github.com/tendant/sortbin/internal/preview"
	"github.com/tendant/sortbin/internal/session"
	"github.com/tendant/sortbin/internal/storage"
	"github.com/tendant/sortbin/pkg/recycling"
)

type staticSource struct{}

func (staticSource) Name() string { return "static" }

func (staticSource) Load(ctx context.Context) (*recycling.Dataset, error) {
	return recycling.NewDataset([]recycling.Item{
		{Name: "Pizza Box", Category: "paper"},
		{Name: "Tin Can", Category: "metal"},
	}, nil), nil
}

type canDetector struct{}

func (canDetector) Detect(ctx context.Context, fileName string, data []byte) (*recycling.DetectionResult, error) {
	return &recycling.DetectionResult{Object: "can", MainCategory: "recycling", SubCategory: "metal"}, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	holder := dataset.NewHolder()
	require.NoError(t, holder.Load(context.Background(), staticSource{}))

	store, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	previews := preview.NewRegistry()

	h := handlers.NewHandler(handlers.Config{
		Dataset:  holder,
		Sessions: session.NewManager(store, previews, canDetector{}),
		Previews: previews,
	})
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func pngFile(t *testing.T, name string) File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))))
	return File{Name: name, Data: buf.Bytes()}
}

func TestClient_SearchAndSubmit(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL)

	suggestions, err := c.Search(ctx, "pizza")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "paper", suggestions[0].Category)

	route, err := c.Submit(ctx, "Pizza Box")
	require.NoError(t, err)
	assert.Equal(t, "/paper", route.Path)
	assert.Equal(t, recycling.SourceSuggestion, route.Source)

	route, err = c.Submit(ctx, "nothing here")
	require.NoError(t, err)
	assert.True(t, route.NotFound)
}

func TestClient_SessionFlow(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL)

	id, err := c.CreateSession(ctx)
	require.NoError(t, err)

	view, err := c.UploadImages(ctx, id, []File{pngFile(t, "a.png"), pngFile(t, "b.png")})
	require.NoError(t, err)
	require.Len(t, view.Images, 2)
	first, second := view.Images[0].ID, view.Images[1].ID
	assert.Equal(t, first, view.Selected)

	view, err = c.Select(ctx, id, second)
	require.NoError(t, err)
	assert.Equal(t, second, view.Selected)

	detected, err := c.Detect(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, second, detected.ImageID)
	assert.Equal(t, "/metal", detected.Route)

	_, err = c.Detect(ctx, id, second)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	view, err = c.RemoveImage(ctx, id, second)
	require.NoError(t, err)
	assert.Equal(t, first, view.Selected)

	view, err = c.RemoveAll(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, view.Images)

	require.NoError(t, c.CloseSession(ctx, id))

	_, err = c.GetSession(ctx, id)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
