// Package store persists the manual difficulty adjustments between runs.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opsinsight/skillmap-engine/internal/utils"
)

// AdjustmentStore holds per-tag composite-score deltas entered by reviewers.
// Deltas live in [-1, +1] and survive reseeding, so a correction made once
// keeps applying as long as the tag exists in the dataset.
type AdjustmentStore struct {
	db *sql.DB
}

// Open opens or creates the adjustment database at path.
func Open(path string) (*AdjustmentStore, error) {
	const op = "store.open"

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, utils.NewAppError(op, fmt.Sprintf("open %s", path), err)
	}

	schema := `CREATE TABLE IF NOT EXISTS adjustments (
		tag_name TEXT PRIMARY KEY,
		delta REAL NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, utils.NewAppError(op, "create schema", err)
	}
	return &AdjustmentStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *AdjustmentStore) Close() error {
	return s.db.Close()
}

// Load returns every non-zero adjustment keyed by tag name. Deltas are
// clamped to [-1, +1] so a hand-edited row cannot exceed the bound.
func (s *AdjustmentStore) Load() (map[string]float64, error) {
	const op = "store.load"

	rows, err := s.db.Query(`SELECT tag_name, delta FROM adjustments WHERE delta != 0`)
	if err != nil {
		return nil, utils.NewAppError(op, "query adjustments", err)
	}
	defer rows.Close()

	adjustments := make(map[string]float64)
	for rows.Next() {
		var tag string
		var delta float64
		if err := rows.Scan(&tag, &delta); err != nil {
			return nil, utils.NewAppError(op, "scan row", err)
		}
		adjustments[tag] = clampDelta(delta)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewAppError(op, "iterate rows", err)
	}
	return adjustments, nil
}

// Set records an adjustment for a tag, clamped to [-1, +1]. A zero delta
// clears the adjustment but keeps the row.
func (s *AdjustmentStore) Set(tag string, delta float64) error {
	const op = "store.set"

	delta = clampDelta(delta)
	_, err := s.db.Exec(
		`INSERT INTO adjustments (tag_name, delta, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(tag_name) DO UPDATE SET delta = excluded.delta, updated_at = excluded.updated_at`,
		tag, delta,
	)
	if err != nil {
		return utils.NewAppError(op, fmt.Sprintf("upsert %s", tag), err)
	}
	return nil
}

func clampDelta(delta float64) float64 {
	if delta < -1 {
		return -1
	}
	if delta > 1 {
		return 1
	}
	return delta
}

// Reseed makes sure every current tag has a row, without touching existing
// deltas. Tags that vanished from the dataset keep their rows so a returning
// tag picks its adjustment back up.
func (s *AdjustmentStore) Reseed(tags []string) error {
	const op = "store.reseed"

	tx, err := s.db.Begin()
	if err != nil {
		return utils.NewAppError(op, "begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO adjustments (tag_name, delta) VALUES (?, 0)`)
	if err != nil {
		return utils.NewAppError(op, "prepare insert", err)
	}
	defer stmt.Close()

	for _, tag := range tags {
		if _, err := stmt.Exec(tag); err != nil {
			return utils.NewAppError(op, fmt.Sprintf("seed %s", tag), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return utils.NewAppError(op, "commit", err)
	}
	return nil
}
