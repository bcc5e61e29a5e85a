// Package bootstrap builds the service components selected by configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/tendant/simple-content/pkg/simplecontent/presets"

	"github.com/tendant/sortbin/internal/config"
	"github.com/tendant/sortbin/internal/dataset"
	"github.com/tendant/sortbin/internal/detect"
	"github.com/tendant/sortbin/internal/lookups"
	"github.com/tendant/sortbin/internal/sqldb"
	"github.com/tendant/sortbin/internal/storage"
)

func noop() {}

// DatasetSource picks the dataset source: SQL, then URL, then file
func DatasetSource(ctx context.Context, cfg *config.Config) (dataset.Source, func(), error) {
	switch {
	case cfg.DatasetDriver != "":
		db, err := sqldb.Open(ctx, cfg.DatasetDriver, cfg.DatasetDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open dataset database: %w", err)
		}
		src := dataset.NewSQLSource(db)
		if err := src.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		log.Printf("Using SQL dataset (%s)", cfg.DatasetDriver)
		return src, func() { db.Close() }, nil

	case cfg.DatasetURL != "":
		log.Printf("Using dataset from %s", cfg.DatasetURL)
		return dataset.NewHTTPSource(cfg.DatasetURL), noop, nil

	default:
		log.Printf("Using dataset file %s", cfg.DatasetFile)
		return dataset.NewFileSource(cfg.DatasetFile), noop, nil
	}
}

// Store builds the image store
func Store(cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case storage.BackendContent:
		// In-memory repository + filesystem storage
		svc, cleanup, err := presets.NewDevelopment(
			presets.WithDevStorage(cfg.StorageDir),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize simple-content service: %w", err)
		}
		log.Printf("✓ simple-content service initialized (%s)", cfg.StorageDir)
		return storage.NewContentStore(svc), cleanup, nil

	case storage.BackendS3:
		store, err := storage.NewS3Storage(cfg.S3)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("✓ S3 storage ready (%s/%s)", cfg.S3.Endpoint, cfg.S3.Bucket)
		return store, noop, nil

	default:
		store, err := storage.NewFilesystemStorage(cfg.StorageDir)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("✓ Filesystem storage ready (%s)", cfg.StorageDir)
		return store, noop, nil
	}
}

// Detector builds the detection backend, or nil when detection is off.
// categories feed the vision prompt.
func Detector(cfg *config.Config, categories []string) detect.Detector {
	switch cfg.DetectBackend {
	case config.DetectNone:
		log.Printf("Detection disabled")
		return nil

	case config.DetectVision:
		log.Printf("✓ Vision detection via %s", visionModel(cfg))
		return detect.NewVisionDetector(detect.VisionConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.VisionModel,
			Categories: categories,
		})

	default:
		d := detect.NewHTTPDetector(cfg.DetectEndpoint,
			detect.WithTimeout(cfg.DetectTimeout),
			detect.WithRatePerMinute(cfg.DetectRatePerMin),
		)
		log.Printf("✓ Detection endpoint %s", d.Endpoint())
		return d
	}
}

func visionModel(cfg *config.Config) string {
	if cfg.VisionModel == "" {
		return detect.DefaultVisionModel
	}
	return cfg.VisionModel
}

// Lookups opens the query ledger, or returns nil when no DSN is configured
func Lookups(ctx context.Context, cfg *config.Config) (*lookups.Tracker, func(), error) {
	if cfg.LookupsDSN == "" {
		return nil, noop, nil
	}

	db, err := sqldb.Open(ctx, cfg.LookupsDriver, cfg.LookupsDSN)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open lookups database: %w", err)
	}

	tracker, err := lookups.NewTracker(ctx, db)
	if err != nil {
		db.Close()
		return nil, noop, err
	}
	return tracker, func() { db.Close() }, nil
}
