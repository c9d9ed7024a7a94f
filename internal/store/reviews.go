package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// LoadReviews returns the reviews fetched for imdbID when they are younger
// than maxAge. maxAge <= 0 disables reuse.
func (s *Store) LoadReviews(ctx context.Context, imdbID string, maxAge time.Duration) ([]string, bool, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" || maxAge <= 0 {
		return nil, false, nil
	}
	var (
		payload   string
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT reviews_json, fetched_at FROM review_cache WHERE imdb_id = ?`,
		imdbID,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read review cache: %w", err)
	}
	if expired(fetchedAt, maxAge) {
		return nil, false, nil
	}
	var reviews []string
	if err := json.Unmarshal([]byte(payload), &reviews); err != nil {
		return nil, false, fmt.Errorf("decode review cache: %w", err)
	}
	return reviews, true, nil
}

// SaveReviews upserts the fetched reviews for imdbID.
func (s *Store) SaveReviews(ctx context.Context, imdbID string, reviews []string) error {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return errors.New("imdb id required")
	}
	if reviews == nil {
		reviews = []string{}
	}
	payload, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("encode reviews: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO review_cache (imdb_id, review_count, reviews_json, fetched_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(imdb_id) DO UPDATE SET
             review_count = excluded.review_count,
             reviews_json = excluded.reviews_json,
             fetched_at = excluded.fetched_at`,
		imdbID, len(reviews), string(payload), now(),
	)
	if err != nil {
		return fmt.Errorf("upsert reviews: %w", err)
	}
	return nil
}

// PruneReviews deletes review sets older than maxAge and returns how many were removed.
func (s *Store) PruneReviews(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge).Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM review_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune reviews: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}
