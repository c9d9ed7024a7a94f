package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marquee/internal/dataset"
)

// LoadCatalog returns the snapshot saved under fingerprint when it is younger
// than maxAge. A missing or stale snapshot reports ok=false without error.
func (s *Store) LoadCatalog(ctx context.Context, fingerprint string, maxAge time.Duration) ([]dataset.Movie, bool, error) {
	var (
		payload   string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT movies_json, created_at FROM catalog_snapshots WHERE fingerprint = ?`,
		fingerprint,
	).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog snapshot: %w", err)
	}
	if expired(createdAt, maxAge) {
		return nil, false, nil
	}

	var movies []dataset.Movie
	if err := json.Unmarshal([]byte(payload), &movies); err != nil {
		return nil, false, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return movies, true, nil
}

// SaveCatalog replaces every stored snapshot with movies under fingerprint.
// Only one snapshot is kept because a new fingerprint means the sources changed.
func (s *Store) SaveCatalog(ctx context.Context, fingerprint string, movies []dataset.Movie) error {
	payload, err := json.Marshal(movies)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_snapshots`); err != nil {
		return fmt.Errorf("clear catalog snapshots: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_snapshots (fingerprint, movie_count, movies_json, created_at) VALUES (?, ?, ?, ?)`,
		fingerprint, len(movies), string(payload), now(),
	); err != nil {
		return fmt.Errorf("insert catalog snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog snapshot: %w", err)
	}
	return nil
}

// ClearCatalog removes stored snapshots so the next load parses the CSV sources.
func (s *Store) ClearCatalog(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM catalog_snapshots`); err != nil {
		return fmt.Errorf("clear catalog snapshots: %w", err)
	}
	return nil
}

var _ dataset.Snapshotter = (*Store)(nil)
