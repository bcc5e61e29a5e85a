package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/tendant/sortbin/internal/lookups"
	"github.com/tendant/sortbin/internal/metrics"
	"github.com/tendant/sortbin/internal/search"
	"github.com/tendant/sortbin/pkg/recycling"
)

// HandleDataset serves the loaded dataset document
func (h *Handler) HandleDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.dataset.Dataset()
	if ds == nil {
		http.Error(w, "Dataset unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// HandleSearch handles GET /v1/search?q= and returns the suggestion list
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	metrics.Searches.Inc()

	writeJSON(w, http.StatusOK, recycling.SearchResponse{
		Query:       query,
		Suggestions: search.Search(query, h.dataset.Dataset()),
	})
}

// HandleSubmit handles POST /v1/submit and resolves the query to a page.
// An unmatched query is a normal answer with not_found set.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req recycling.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	shown := search.Search(req.Query, h.dataset.Dataset())
	route := h.router.Resolve(req.Query, shown)
	metrics.Submits.WithLabelValues(route.Source).Inc()

	if h.lookups != nil {
		if _, err := h.lookups.Record(r.Context(), req.Query, lookups.OutcomeFor(route)); err != nil {
			log.Printf("Failed to record lookup %q: %v", req.Query, err)
		}
	}

	if route.NotFound {
		log.Printf("No match for %q", req.Query)
	}

	writeJSON(w, http.StatusOK, route)
}

// HandleMisses lists the most frequent unmatched queries
func (h *Handler) HandleMisses(w http.ResponseWriter, r *http.Request) {
	if h.lookups == nil {
		http.Error(w, "Lookup ledger is not configured", http.StatusNotFound)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	misses, err := h.lookups.TopMisses(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, misses)
}
