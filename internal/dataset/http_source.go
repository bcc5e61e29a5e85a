package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tendant/sortbin/pkg/recycling"
)

// HTTPSource fetches the dataset document over HTTP
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates an HTTP-based source.
// A bare base URL gets the conventional /recycling-data.json path.
func NewHTTPSource(url string) *HTTPSource {
	if !strings.HasSuffix(url, ".json") {
		url = strings.TrimSuffix(url, "/") + recycling.DatasetPath
	}
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewHTTPSourceWithClient creates an HTTP-based source with a custom HTTP client
func NewHTTPSourceWithClient(url string, httpClient *http.Client) *HTTPSource {
	src := NewHTTPSource(url)
	src.httpClient = httpClient
	return src
}

// Name returns the document URL
func (s *HTTPSource) Name() string {
	return s.url
}

// Load performs GET on the document URL
func (s *HTTPSource) Load(ctx context.Context) (*recycling.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset fetch failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ds recycling.Dataset
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	return &ds, nil
}
