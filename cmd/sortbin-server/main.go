package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/sortbin/internal/bootstrap"
	"github.com/tendant/sortbin/internal/config"
	"github.com/tendant/sortbin/internal/dataset"
	"github.com/tendant/sortbin/internal/handlers"
	"github.com/tendant/sortbin/internal/preview"
	"github.com/tendant/sortbin/internal/search"
	"github.com/tendant/sortbin/internal/session"
	"github.com/tendant/sortbin/internal/sqldb"
)

// sortbin API server: search, submit and image upload/detect sessions.
//
//	sortbin-server                  serve the API
//	sortbin-server import <file>    copy a dataset file into DATASET_DRIVER/DATASET_DSN
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "import" {
		if len(os.Args) < 3 {
			log.Fatalf("Usage: sortbin-server import <recycling-data.json>")
		}
		if err := importDataset(context.Background(), cfg, os.Args[2]); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		return
	}

	log.Printf("sortbin server")
	log.Printf("  Storage: %s (%s)", cfg.StorageBackend, cfg.StorageDir)
	log.Printf("  Detection: %s", cfg.DetectBackend)
	log.Printf("  HTTP address: %s", cfg.HTTPAddr)

	ctx := context.Background()

	// Dataset is loaded once; a failure leaves search empty
	src, closeSource, err := bootstrap.DatasetSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dataset source: %v", err)
	}
	defer closeSource()

	holder := dataset.NewHolder()
	_ = holder.Load(ctx, src)

	table, err := search.LoadKeywordTable(cfg.KeywordsFile)
	if err != nil {
		log.Fatalf("Failed to load keyword table: %v", err)
	}
	router := search.NewRouter(table)
	log.Printf("✓ Keyword table ready: %d routes", len(table))

	store, closeStore, err := bootstrap.Store(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStore()

	detector := bootstrap.Detector(cfg, table.Categories())

	tracker, closeLookups, err := bootstrap.Lookups(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize lookups ledger: %v", err)
	}
	defer closeLookups()

	previews := preview.NewRegistry()
	sessions := session.NewManager(store, previews, detector)

	handler := handlers.NewHandler(handlers.Config{
		Dataset:        holder,
		Router:         router,
		Sessions:       sessions,
		Previews:       previews,
		Lookups:        tracker,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Routes(),
	}

	// Close sessions nobody touched for a while
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweep(sweepCtx, sessions, cfg.SessionIdleTimeout)

	// Start server in goroutine
	go func() {
		log.Printf("✓ sortbin ready on %s", cfg.HTTPAddr)
		log.Printf("")
		log.Printf("Available endpoints:")
		log.Printf("  GET    /health                              - Health check")
		log.Printf("  GET    /metrics                             - Prometheus metrics")
		log.Printf("  GET    /recycling-data.json                 - Loaded dataset")
		log.Printf("  GET    /v1/search?q=                        - Suggestions")
		log.Printf("  POST   /v1/submit                           - Resolve a query to a page")
		log.Printf("  POST   /v1/sessions                         - Open an upload session")
		log.Printf("  POST   /v1/sessions/{id}/images             - Upload images (multipart \"images\")")
		log.Printf("  POST   /v1/sessions/{id}/images/{img}/detect - Detect an image")
		log.Printf("  DELETE /v1/sessions/{id}                    - Close a session")
		log.Printf("")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	stopSweep()
	sessions.CloseAll(shutdownCtx)
	log.Println("Server stopped")
}

func sweep(ctx context.Context, sessions *session.Manager, idle time.Duration) {
	interval := idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Sweep(ctx, idle)
		}
	}
}

// importDataset loads a dataset file into the configured SQL database
func importDataset(ctx context.Context, cfg *config.Config, path string) error {
	if cfg.DatasetDriver == "" {
		return fmt.Errorf("DATASET_DRIVER and DATASET_DSN are required for import")
	}

	ds, err := dataset.NewFileSource(path).Load(ctx)
	if err != nil {
		return err
	}

	db, err := sqldb.Open(ctx, cfg.DatasetDriver, cfg.DatasetDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	src := dataset.NewSQLSource(db)
	if err := src.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := src.Import(ctx, ds); err != nil {
		return err
	}

	log.Printf("✓ Imported %d items and %d keyword categories", len(ds.Items), len(ds.Categories()))
	return nil
}
