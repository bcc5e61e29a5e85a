// Package client is a Go client for the sortbin HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"time"

	"github.com/tendant/sortbin/pkg/recycling"
)

// Client is an HTTP client for search, submission and upload sessions
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError is a non-success answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// File is an image to upload
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// New creates a new sortbin client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewWithHTTPClient creates a new sortbin client with a custom HTTP client
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Search returns the suggestions for query
func (c *Client) Search(ctx context.Context, query string) ([]recycling.Suggestion, error) {
	var resp recycling.SearchResponse
	path := "/v1/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Submit resolves query to a category page
func (c *Client) Submit(ctx context.Context, query string) (*recycling.Route, error) {
	body, err := json.Marshal(recycling.SubmitRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var route recycling.Route
	if err := c.do(ctx, http.MethodPost, "/v1/submit", bytes.NewReader(body), "application/json", &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// CreateSession opens an upload session and returns its id
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", nil, "", &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// GetSession returns the session view
func (c *Client) GetSession(ctx context.Context, sessionID string) (*recycling.SessionView, error) {
	var view recycling.SessionView
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID), nil, "", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UploadImages adds files to the session
func (c *Client) UploadImages(ctx context.Context, sessionID string, files []File) (*recycling.SessionView, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, filepath.Base(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(f.Data)
		}
		hdr.Set("Content-Type", contentType)

		part, err := writer.CreatePart(hdr)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var view recycling.SessionView
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID)+"/images", &body, writer.FormDataContentType(), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Select changes the selected image
func (c *Client) Select(ctx context.Context, sessionID, imageID string) (*recycling.SessionView, error) {
	body, err := json.Marshal(map[string]string{"image_id": imageID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var view recycling.SessionView
	if err := c.do(ctx, http.MethodPut, sessionPath(sessionID)+"/selected", bytes.NewReader(body), "application/json", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Detect runs detection for imageID, or the selected image when imageID is empty
func (c *Client) Detect(ctx context.Context, sessionID, imageID string) (*recycling.DetectResponse, error) {
	path := sessionPath(sessionID) + "/detect"
	if imageID != "" {
		path = sessionPath(sessionID) + "/images/" + url.PathEscape(imageID) + "/detect"
	}

	var resp recycling.DetectResponse
	if err := c.do(ctx, http.MethodPost, path, nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveImage drops one image from the session
func (c *Client) RemoveImage(ctx context.Context, sessionID, imageID string) (*recycling.SessionView, error) {
	var view recycling.SessionView
	if err := c.do(ctx, http.MethodDelete, sessionPath(sessionID)+"/images/"+url.PathEscape(imageID), nil, "", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// RemoveAll drops every image from the session
func (c *Client) RemoveAll(ctx context.Context, sessionID string) (*recycling.SessionView, error) {
	var view recycling.SessionView
	if err := c.do(ctx, http.MethodDelete, sessionPath(sessionID)+"/images", nil, "", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// CloseSession releases the session
func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(sessionID), nil, "", nil)
}

func sessionPath(sessionID string) string {
	return "/v1/sessions/" + url.PathEscape(sessionID)
}

// do sends a request and decodes a 2xx JSON answer into out
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(bodyBytes))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
