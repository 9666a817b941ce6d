// Package store persists strategy order preferences in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/locsynth/dbopen"
)

// Schema is the DDL for the preference tables.
const Schema = `
-- One row per strategy name and scope; rank 0 runs first.
CREATE TABLE IF NOT EXISTS strategy_preferences (
    scope      TEXT NOT NULL,
    name       TEXT NOT NULL,
    rank       INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (scope, name)
);
CREATE INDEX IF NOT EXISTS idx_prefs_scope_rank ON strategy_preferences(scope, rank);
`

// Store is the preference database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...dbopen.Option) (*Store, error) {
	all := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(ctx, path, all...)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// LoadOrder returns the stored strategy order of scope, or nil when none was
// saved.
func (s *Store) LoadOrder(ctx context.Context, scope string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT name FROM strategy_preferences
		WHERE scope = ? ORDER BY rank, name`, scope)
	if err != nil {
		return nil, fmt.Errorf("store: load order %s: %w", scope, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("store: scan order %s: %w", scope, err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// SaveOrder replaces the stored order of scope.
func (s *Store) SaveOrder(ctx context.Context, scope string, names []string) error {
	now := time.Now().UnixMilli()
	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM strategy_preferences WHERE scope = ?`, scope); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO strategy_preferences (scope, name, rank, updated_at)
			VALUES (?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for rank, name := range names {
			if _, err := stmt.ExecContext(ctx, scope, name, rank, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: save order %s: %w", scope, err)
	}
	return nil
}

// Scopes lists the scopes with a stored order.
func (s *Store) Scopes(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT DISTINCT scope FROM strategy_preferences ORDER BY scope`)
	if err != nil {
		return nil, fmt.Errorf("store: scopes: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sc string
		if err := rows.Scan(&sc); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
