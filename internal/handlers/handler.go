// Package handlers exposes search, submission and upload sessions over HTTP.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/sortbin/internal/dataset"
	"github.com/tendant/sortbin/internal/lookups"
	"github.com/tendant/sortbin/internal/preview"
	"github.com/tendant/sortbin/internal/search"
	"github.com/tendant/sortbin/internal/session"
	"github.com/tendant/sortbin/pkg/recycling"
)

// DefaultMaxUploadBytes bounds one upload request
const DefaultMaxUploadBytes = 20 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	dataset        *dataset.Holder
	router         *search.Router
	sessions       *session.Manager
	previews       *preview.Registry
	lookups        *lookups.Tracker
	maxUploadBytes int64
}

// Config wires a Handler. Lookups may be nil.
type Config struct {
	Dataset        *dataset.Holder
	Router         *search.Router
	Sessions       *session.Manager
	Previews       *preview.Registry
	Lookups        *lookups.Tracker
	MaxUploadBytes int64
}

// NewHandler creates a handler
func NewHandler(cfg Config) *Handler {
	if cfg.Router == nil {
		cfg.Router = search.NewRouter(nil)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		dataset:        cfg.Dataset,
		router:         cfg.Router,
		sessions:       cfg.Sessions,
		previews:       cfg.Previews,
		lookups:        cfg.Lookups,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// Routes builds the HTTP router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get(recycling.DatasetPath, h.HandleDataset)
	r.Get("/previews/{handle}", h.HandlePreview)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", h.HandleSearch)
		r.Post("/submit", h.HandleSubmit)
		r.Get("/lookups/misses", h.HandleMisses)

		r.Post("/sessions", h.HandleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Delete("/", h.HandleCloseSession)
			r.Post("/images", h.HandleUpload)
			r.Delete("/images", h.HandleRemoveAll)
			r.Delete("/images/{imageID}", h.HandleRemoveImage)
			r.Put("/selected", h.HandleSelect)
			r.Post("/detect", h.HandleDetect)
			r.Post("/images/{imageID}/detect", h.HandleDetect)
		})
	})

	return r
}

// HandleHealth returns health status
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"dataset_ready":  h.dataset.Ready(),
		"detect_enabled": h.sessions.DetectEnabled(),
		"sessions":       h.sessions.Len(),
		"live_previews":  h.previews.Live(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
