// Package lookups keeps a ledger of submitted search queries and how they
// were routed.
package lookups

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/tendant/sortbin/pkg/recycling"
)

// Outcomes recorded for a submitted query
const (
	OutcomeResolved = "resolved"
	OutcomeFallback = "fallback"
	OutcomeNotFound = "not_found"
)

// OutcomeFor maps a route to its ledger outcome
func OutcomeFor(route recycling.Route) string {
	switch route.Source {
	case recycling.SourceSuggestion:
		return OutcomeResolved
	case recycling.SourceFallback:
		return OutcomeFallback
	default:
		return OutcomeNotFound
	}
}

// Tracker counts submitted queries
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a tracker and its table
func NewTracker(ctx context.Context, db *sql.DB) (*Tracker, error) {
	tracker := &Tracker{db: db}

	if err := tracker.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure lookups table: %w", err)
	}

	return tracker, nil
}

// ensureTable creates the search_lookups table if it doesn't exist
func (t *Tracker) ensureTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS search_lookups (
			term TEXT PRIMARY KEY,
			outcome TEXT NOT NULL,
			first_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			seen_count INTEGER DEFAULT 1
		)
	`

	if _, err := t.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create search_lookups table: %w", err)
	}

	log.Printf("✓ search_lookups table ready")
	return nil
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Record upserts a submission and returns how often the query was seen.
// The latest outcome replaces the stored one.
func (t *Tracker) Record(ctx context.Context, query string, outcome string) (int, error) {
	key := normalize(query)
	if key == "" {
		return 0, nil
	}

	stmt := `
		INSERT INTO search_lookups (term, outcome, first_seen_at, last_seen_at, seen_count)
		VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 1)
		ON CONFLICT (term) DO UPDATE
		SET last_seen_at = CURRENT_TIMESTAMP,
		    seen_count = search_lookups.seen_count + 1,
		    outcome = EXCLUDED.outcome
		RETURNING seen_count
	`

	var seenCount int
	if err := t.db.QueryRowContext(ctx, stmt, key, outcome).Scan(&seenCount); err != nil {
		return 0, fmt.Errorf("failed to record lookup: %w", err)
	}

	return seenCount, nil
}

// SeenCount returns how often query was submitted
func (t *Tracker) SeenCount(ctx context.Context, query string) (int, error) {
	var seenCount int
	err := t.db.QueryRowContext(ctx, `SELECT seen_count FROM search_lookups WHERE term = $1`, normalize(query)).Scan(&seenCount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get seen count: %w", err)
	}

	return seenCount, nil
}

// Outcome returns the latest outcome for query, or "" if never seen
func (t *Tracker) Outcome(ctx context.Context, query string) (string, error) {
	var outcome string
	err := t.db.QueryRowContext(ctx, `SELECT outcome FROM search_lookups WHERE term = $1`, normalize(query)).Scan(&outcome)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get outcome: %w", err)
	}

	return outcome, nil
}

// Miss is a query that was submitted without finding a page
type Miss struct {
	Query     string `json:"query"`
	SeenCount int    `json:"seen_count"`
}

// TopMisses lists the most frequent not-found queries
func (t *Tracker) TopMisses(ctx context.Context, limit int) ([]Miss, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := t.db.QueryContext(ctx, `
		SELECT term, seen_count FROM search_lookups
		WHERE outcome = $1
		ORDER BY seen_count DESC, term
		LIMIT $2`, OutcomeNotFound, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query misses: %w", err)
	}
	defer rows.Close()

	misses := []Miss{}
	for rows.Next() {
		var m Miss
		if err := rows.Scan(&m.Query, &m.SeenCount); err != nil {
			return nil, fmt.Errorf("failed to scan miss: %w", err)
		}
		misses = append(misses, m)
	}
	return misses, rows.Err()
}
