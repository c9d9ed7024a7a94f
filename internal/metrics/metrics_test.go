package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"marquee/internal/services"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/genres", "200"))
	RecordAPIRequest("GET", "/api/genres", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/genres", "200"))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Fatalf("expected %v active requests, got %v", before+1, got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Fatalf("expected %v active requests, got %v", before, got)
	}
}

func TestRecordAnalysisOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		placeholder bool
		err         error
		want        string
	}{
		{name: "success", want: "success"},
		{name: "placeholder", placeholder: true, want: "placeholder"},
		{name: "timeout", err: context.DeadlineExceeded, want: "timeout"},
		{name: "upstream", err: services.Wrap(services.ErrUpstreamUnavailable, "llm", "complete", "down", nil), want: "upstream_unavailable"},
		{name: "unclassified", err: errors.New("boom"), want: "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := AnalysisResults.WithLabelValues("intensity", tt.want)
			before := testutil.ToFloat64(counter)
			RecordAnalysis("intensity", time.Second, tt.placeholder, tt.err)
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Fatalf("expected outcome %q to increase by 1, got %v", tt.want, got)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("miss"))
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("hit")) - hits; got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("miss")) - misses; got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
}

func TestRecordCatalogRefresh(t *testing.T) {
	RecordCatalogRefresh(42, nil)
	if got := testutil.ToFloat64(CatalogMovies); got != 42 {
		t.Fatalf("expected 42 movies, got %v", got)
	}
	failures := testutil.ToFloat64(CatalogRefreshes.WithLabelValues("error"))
	RecordCatalogRefresh(0, errors.New("missing file"))
	if got := testutil.ToFloat64(CatalogRefreshes.WithLabelValues("error")) - failures; got != 1 {
		t.Fatalf("expected one failed refresh, got %v", got)
	}
	if got := testutil.ToFloat64(CatalogMovies); got != 42 {
		t.Fatalf("failed refresh must not reset the movie gauge, got %v", got)
	}
}

func TestRecordReviewFetch(t *testing.T) {
	fetched := testutil.ToFloat64(ReviewsFetched)
	RecordReviewFetch(12, nil)
	if got := testutil.ToFloat64(ReviewsFetched) - fetched; got != 12 {
		t.Fatalf("expected 12 reviews recorded, got %v", got)
	}
	errs := testutil.ToFloat64(ReviewFetchErrors.WithLabelValues("not_found"))
	RecordReviewFetch(0, services.Wrap(services.ErrNotFound, "reviews", "fetch", "gone", nil))
	if got := testutil.ToFloat64(ReviewFetchErrors.WithLabelValues("not_found")) - errs; got != 1 {
		t.Fatalf("expected one not_found error, got %v", got)
	}
}
