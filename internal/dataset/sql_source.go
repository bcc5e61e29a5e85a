package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tendant/sortbin/pkg/recycling"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS recycling_items (
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recycling_keywords (
		position INTEGER NOT NULL,
		category TEXT NOT NULL,
		keyword TEXT NOT NULL
	)`,
}

// SQLSource reads the dataset from recycling_items and recycling_keywords.
// Keyword categories are ordered by the first position they appear at.
type SQLSource struct {
	db *sql.DB
}

// NewSQLSource creates a database-backed source
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

// Name describes the source
func (s *SQLSource) Name() string {
	return "sql"
}

// EnsureSchema creates the dataset tables if they don't exist
func (s *SQLSource) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create dataset tables: %w", err)
		}
	}
	return nil
}

// Load reads items and keyword groups in position order
func (s *SQLSource) Load(ctx context.Context) (*recycling.Dataset, error) {
	items, err := s.loadItems(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.loadKeywords(ctx)
	if err != nil {
		return nil, err
	}

	return recycling.NewDataset(items, groups), nil
}

func (s *SQLSource) loadItems(ctx context.Context) ([]recycling.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, category FROM recycling_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []recycling.Item
	for rows.Next() {
		var item recycling.Item
		if err := rows.Scan(&item.Name, &item.Category); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLSource) loadKeywords(ctx context.Context) ([]recycling.KeywordGroup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, keyword FROM recycling_keywords ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer rows.Close()

	var groups []recycling.KeywordGroup
	index := make(map[string]int)
	for rows.Next() {
		var category, keyword string
		if err := rows.Scan(&category, &keyword); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, recycling.KeywordGroup{Category: category})
		}
		groups[i].Keywords = append(groups[i].Keywords, keyword)
	}
	return groups, rows.Err()
}

// Import replaces the stored dataset with ds in a single transaction
func (s *SQLSource) Import(ctx context.Context, ds *recycling.Dataset) error {
	if err := Validate(ds); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recycling_items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recycling_keywords`); err != nil {
		return fmt.Errorf("failed to clear keywords: %w", err)
	}

	for i, item := range ds.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recycling_items (position, name, category) VALUES ($1, $2, $3)`,
			i, item.Name, item.Category,
		); err != nil {
			return fmt.Errorf("failed to insert item %q: %w", item.Name, err)
		}
	}

	position := 0
	for _, category := range ds.Categories() {
		for _, keyword := range ds.Keywords[category] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recycling_keywords (position, category, keyword) VALUES ($1, $2, $3)`,
				position, category, keyword,
			); err != nil {
				return fmt.Errorf("failed to insert keyword %q: %w", keyword, err)
			}
			position++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
