// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tendant/sortbin/internal/storage"
)

// Detection backends
const (
	DetectHTTP   = "http"
	DetectVision = "vision"
	DetectNone   = "none"
)

// Config holds sortbin configuration
type Config struct {
	// HTTPAddr is the listen address of the API server
	// Optional. Defaults to ":8080"
	HTTPAddr string

	// DatasetFile is a local recycling-data.json
	// Optional. Used when neither DatasetURL nor DatasetDriver is set
	DatasetFile string

	// DatasetURL is the base URL serving /recycling-data.json
	// Optional. Takes precedence over DatasetFile
	DatasetURL string

	// DatasetDriver and DatasetDSN select a SQL dataset source
	// Optional. "postgres" or "sqlite3"; takes precedence over files and URLs
	DatasetDriver string
	DatasetDSN    string

	// KeywordsFile is a YAML fallback keyword table
	// Optional. The built-in material table is used when empty or missing
	KeywordsFile string

	// DetectBackend selects the detector: "http", "vision" or "none"
	// Optional. Defaults to "http"
	DetectBackend string

	// DetectEndpoint is the prediction URL for the http backend
	// Optional. Defaults to http://localhost:5000/predict
	DetectEndpoint string

	// DetectTimeout bounds a single prediction request
	// Optional. Defaults to 30s
	DetectTimeout time.Duration

	// DetectRatePerMin paces prediction requests
	// Optional. 0 means unlimited
	DetectRatePerMin int

	// OpenAI settings for the vision backend
	OpenAIAPIKey  string
	OpenAIBaseURL string
	VisionModel   string

	// StorageBackend selects the image store: "fs", "content" or "s3"
	// Optional. Defaults to "fs"
	StorageBackend string

	// StorageDir is the filesystem and content store directory
	// Optional. Defaults to "./dev-data"
	StorageDir string

	// S3 holds bucket settings for the s3 backend
	S3 storage.S3Config

	// LookupsDriver and LookupsDSN enable the submitted-query ledger
	// Optional. The ledger is off when LookupsDSN is empty
	LookupsDriver string
	LookupsDSN    string

	// SessionIdleTimeout closes untouched upload sessions
	// Optional. Defaults to 30m
	SessionIdleTimeout time.Duration

	// MaxUploadBytes bounds one upload request
	// Optional. Defaults to 20 MiB
	MaxUploadBytes int64
}

// WithDefaults fills in default values for optional fields
func (c *Config) WithDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.DatasetFile == "" && c.DatasetURL == "" && c.DatasetDriver == "" {
		c.DatasetFile = "./public/recycling-data.json"
	}
	if c.DetectBackend == "" {
		c.DetectBackend = DetectHTTP
	}
	if c.DetectTimeout == 0 {
		c.DetectTimeout = 30 * time.Second
	}
	if c.StorageBackend == "" {
		c.StorageBackend = storage.BackendFilesystem
	}
	if c.StorageDir == "" {
		c.StorageDir = "./dev-data"
	}
	if c.LookupsDriver == "" {
		c.LookupsDriver = "sqlite3"
	}
	if c.SessionIdleTimeout == 0 {
		c.SessionIdleTimeout = 30 * time.Minute
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 20 << 20
	}
}

// Validate rejects unknown backends
func (c *Config) Validate() error {
	switch c.DetectBackend {
	case DetectHTTP, DetectVision, DetectNone:
	default:
		return fmt.Errorf("unknown DETECT_BACKEND %q", c.DetectBackend)
	}
	switch c.StorageBackend {
	case storage.BackendFilesystem, storage.BackendContent, storage.BackendS3:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.DetectBackend == DetectVision && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the vision backend")
	}
	if c.StorageBackend == storage.BackendS3 && (c.S3.Endpoint == "" || c.S3.Bucket == "") {
		return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required for the s3 backend")
	}
	return nil
}

// Load reads configuration from the environment.
// A .env file is loaded first if it exists.
func Load() (*Config, error) {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		HTTPAddr:         getenv("SORTBIN_HTTP_ADDR"),
		DatasetFile:      getenv("DATASET_FILE"),
		DatasetURL:       getenv("DATASET_URL"),
		DatasetDriver:    getenv("DATASET_DRIVER"),
		DatasetDSN:       getenv("DATASET_DSN"),
		KeywordsFile:     getenv("KEYWORDS_FILE"),
		DetectBackend:    strings.ToLower(getenv("DETECT_BACKEND")),
		DetectEndpoint:   getenv("DETECT_ENDPOINT"),
		DetectTimeout:    p.duration("DETECT_TIMEOUT"),
		DetectRatePerMin: int(p.int("DETECT_RATE_PER_MIN")),
		OpenAIAPIKey:     getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getenv("OPENAI_BASE_URL"),
		VisionModel:      getenv("VISION_MODEL"),
		StorageBackend:   strings.ToLower(getenv("STORAGE_BACKEND")),
		StorageDir:       getenv("STORAGE_DIR"),
		S3: storage.S3Config{
			Endpoint:  getenv("S3_ENDPOINT"),
			AccessKey: getenv("S3_ACCESS_KEY"),
			SecretKey: getenv("S3_SECRET_KEY"),
			Bucket:    getenv("S3_BUCKET"),
			Region:    getenv("S3_REGION"),
			UseSSL:    p.bool("S3_USE_SSL"),
			Prefix:    getenv("S3_PREFIX"),
		},
		LookupsDriver:      getenv("LOOKUPS_DRIVER"),
		LookupsDSN:         getenv("LOOKUPS_DSN"),
		SessionIdleTimeout: p.duration("SESSION_IDLE_TIMEOUT"),
		MaxUploadBytes:     p.int("MAX_UPLOAD_BYTES"),
	}
	if p.err != nil {
		return nil, p.err
	}

	cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parser keeps the first conversion error
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) duration(key string) time.Duration {
	v := p.getenv(key)
	if v == "" || p.err != nil {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return d
}

func (p *parser) int(key string) int64 {
	v := p.getenv(key)
	if v == "" || p.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		p.err = fmt.Errorf("invalid %s: %q", key, v)
	}
	return n
}

func (p *parser) bool(key string) bool {
	v := p.getenv(key)
	if v == "" || p.err != nil {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return b
}
