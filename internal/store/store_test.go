package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"marquee/internal/dataset"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "marquee.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCatalogSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.LoadCatalog(ctx, "fp-1", time.Hour); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	movies := []dataset.Movie{
		{ID: 1, Title: "Inception", Genres: "Action", VoteAverage: 8.8, VoteCount: 100, Source: "tmdb"},
		{ID: 2, Title: "3 Idiots", Genres: "Comedy", VoteAverage: 8.4, VoteCount: 50, Source: "indian_movies", SourceKey: "indian_tt1187043"},
	}
	if err := s.SaveCatalog(ctx, "fp-1", movies); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}

	got, ok, err := s.LoadCatalog(ctx, "fp-1", time.Hour)
	if err != nil || !ok {
		t.Fatalf("expected snapshot hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1].SourceKey != "indian_tt1187043" || got[0].VoteAverage != 8.8 {
		t.Fatalf("unexpected snapshot contents %+v", got)
	}

	if _, ok, _ := s.LoadCatalog(ctx, "fp-2", time.Hour); ok {
		t.Fatal("expected fingerprint mismatch to miss")
	}
	if _, ok, _ := s.LoadCatalog(ctx, "fp-1", 0); ok {
		t.Fatal("expected zero max age to miss")
	}

	if err := s.SaveCatalog(ctx, "fp-2", movies[:1]); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}
	if _, ok, _ := s.LoadCatalog(ctx, "fp-1", time.Hour); ok {
		t.Fatal("expected older snapshot to be replaced")
	}

	if err := s.ClearCatalog(ctx); err != nil {
		t.Fatalf("ClearCatalog failed: %v", err)
	}
	if _, ok, _ := s.LoadCatalog(ctx, "fp-2", time.Hour); ok {
		t.Fatal("expected cleared snapshot to miss")
	}
}

func TestReviewCache(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveReviews(ctx, "", []string{"x"}); err == nil {
		t.Fatal("expected error for blank imdb id")
	}
	if err := s.SaveReviews(ctx, "tt1375666", []string{"first", "second"}); err != nil {
		t.Fatalf("SaveReviews failed: %v", err)
	}
	if err := s.SaveReviews(ctx, "tt1375666", []string{"replaced"}); err != nil {
		t.Fatalf("SaveReviews upsert failed: %v", err)
	}

	reviews, ok, err := s.LoadReviews(ctx, "tt1375666", time.Hour)
	if err != nil || !ok {
		t.Fatalf("expected review hit, got ok=%v err=%v", ok, err)
	}
	if len(reviews) != 1 || reviews[0] != "replaced" {
		t.Fatalf("unexpected reviews %v", reviews)
	}
	if _, ok, _ := s.LoadReviews(ctx, "tt0000000", time.Hour); ok {
		t.Fatal("expected miss for unknown id")
	}
	if _, ok, _ := s.LoadReviews(ctx, "tt1375666", 0); ok {
		t.Fatal("expected reuse disabled for zero ttl")
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE review_cache SET fetched_at = ?`,
		time.Now().UTC().Add(-48*time.Hour).Format(timeLayout)); err != nil {
		t.Fatalf("age review row: %v", err)
	}
	if _, ok, _ := s.LoadReviews(ctx, "tt1375666", 24*time.Hour); ok {
		t.Fatal("expected stale reviews to miss")
	}
	removed, err := s.PruneReviews(ctx, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("expected one pruned row, got %d err=%v", removed, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marquee.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = s.Close()

	if _, err := Open(context.Background(), path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
