// Package detect sends uploaded images to an object detection backend.
package detect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/tendant/sortbin/internal/metrics"
	"github.com/tendant/sortbin/pkg/recycling"
)

// FormField is the multipart field carrying the image
const FormField = "file"

// DefaultTimeout bounds a single prediction request
const DefaultTimeout = 30 * time.Second

// Detector classifies one image
type Detector interface {
	Detect(ctx context.Context, fileName string, data []byte) (*recycling.DetectionResult, error)
}

// HTTPDetector posts images to a prediction endpoint.
// Each call is a single request; failures are returned, never retried.
type HTTPDetector struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Option configures an HTTPDetector
type Option func(*HTTPDetector)

// WithHTTPClient replaces the default client. A nil client is ignored.
// The detector works on a copy, so c itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(d *HTTPDetector) {
		if c != nil {
			d.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *HTTPDetector) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithRatePerMinute paces outgoing requests. Zero disables pacing.
func WithRatePerMinute(perMinute int) Option {
	return func(d *HTTPDetector) {
		if perMinute <= 0 {
			d.limiter = nil
			return
		}
		d.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
	}
}

// NewHTTPDetector creates a detector for endpoint.
// An empty endpoint uses recycling.DefaultDetectEndpoint.
func NewHTTPDetector(endpoint string, opts ...Option) *HTTPDetector {
	if endpoint == "" {
		endpoint = recycling.DefaultDetectEndpoint
	}
	d := &HTTPDetector{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}

	client := *d.httpClient
	if d.timeout > 0 {
		client.Timeout = d.timeout
	}
	d.httpClient = &client
	return d
}

// Endpoint returns the prediction URL
func (d *HTTPDetector) Endpoint() string {
	return d.endpoint
}

// Detect uploads data as a multipart form and parses the prediction
func (d *HTTPDetector) Detect(ctx context.Context, fileName string, data []byte) (*recycling.DetectionResult, error) {
	start := time.Now()
	result, err := d.detect(ctx, fileName, data)
	metrics.DetectDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Detections.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Detections.WithLabelValues("ok").Inc()
	return result, nil
}

func (d *HTTPDetector) detect(ctx context.Context, fileName string, data []byte) (*recycling.DetectionResult, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(FormField, filepath.Base(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call prediction service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	result, err := ParseResult(respBody)
	if err != nil {
		return nil, err
	}

	log.Printf("✓ Detected %q (main=%s, sub=%s) for %s", result.Object, result.MainCategory, result.SubCategory, fileName)
	return result, nil
}
