package reviews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/services"
)

func review(text string, spoiler bool) string {
	marker := ""
	if spoiler {
		marker = `<div data-testid="review-spoiler-content">Spoiler</div>`
	}
	return fmt.Sprintf(`<article class="sc-1 user-review-item">%s<div class="ipc-html-content-inner-div">%s</div></article>`, marker, text)
}

func reviewsPage(items ...string) string {
	return "<html><body><section>" + strings.Join(items, "\n") + "</section></body></html>"
}

var (
	longA = strings.Repeat("A gripping film with layered dreams. ", 3)
	longB = strings.Repeat("The ending left the audience arguing. ", 3)
	longC = strings.Repeat("Overlong but visually stunning throughout. ", 3)
)

func TestExtractFiltersSpoilersDuplicatesAndShortReviews(t *testing.T) {
	page := reviewsPage(
		review(longA, false),
		review("too short", false),
		review(longB, true),
		review(longA, false),
		review(longC, false),
	)
	got, err := ExtractHTML(strings.NewReader(page), ExtractOptions{MinLength: 50})
	if err != nil {
		t.Fatalf("ExtractHTML failed: %v", err)
	}
	if len(got) != 2 || got[0] != strings.TrimSpace(longA) || got[1] != strings.TrimSpace(longC) {
		t.Fatalf("unexpected reviews %q", got)
	}

	got, _ = ExtractHTML(strings.NewReader(page), ExtractOptions{MinLength: 50, MaxReviews: 1})
	if len(got) != 1 {
		t.Fatalf("expected max reviews to apply, got %d", len(got))
	}
}

func TestExtractLegacyLayout(t *testing.T) {
	page := `<html><body>
<div class="review-container"><div class="content"><div class="text show-more__control">` + longB + `</div></div></div>
<div class="review-container"><div class="content">` + longC + `</div></div>
</body></html>`
	got, err := ExtractHTML(strings.NewReader(page), ExtractOptions{MinLength: 50})
	if err != nil {
		t.Fatalf("ExtractHTML failed: %v", err)
	}
	if len(got) != 2 || got[0] != strings.TrimSpace(longB) || got[1] != strings.TrimSpace(longC) {
		t.Fatalf("unexpected legacy reviews %q", got)
	}
}

type memoryCache struct {
	stored map[string][]string
	saves  int
}

func (m *memoryCache) LoadReviews(_ context.Context, imdbID string, _ time.Duration) ([]string, bool, error) {
	reviews, ok := m.stored[imdbID]
	return reviews, ok, nil
}

func (m *memoryCache) SaveReviews(_ context.Context, imdbID string, reviews []string) error {
	m.saves++
	m.stored[imdbID] = reviews
	return nil
}

func TestFetcherHTTPModeUsesCache(t *testing.T) {
	var (
		hits             atomic.Int32
		mu               sync.Mutex
		gotPath, gotAgent string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mu.Lock()
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		mu.Unlock()
		fmt.Fprint(w, reviewsPage(review(longA, false), review(longB, false)))
	}))
	defer srv.Close()

	cache := &memoryCache{stored: map[string][]string{}}
	fetcher := NewFetcher(Options{
		BaseURL:           srv.URL,
		UserAgent:         "marquee-test",
		MinLength:         50,
		MaxReviews:        35,
		RequestsPerSecond: 100,
		CacheTTL:          time.Hour,
	}, cache)

	got, err := fetcher.Fetch(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(got))
	}
	mu.Lock()
	path, agent := gotPath, gotAgent
	mu.Unlock()
	if path != "/title/tt1375666/reviews/" || agent != "marquee-test" {
		t.Fatalf("unexpected request path=%q agent=%q", path, agent)
	}
	if cache.saves != 1 {
		t.Fatalf("expected reviews saved, got %d saves", cache.saves)
	}

	if _, err := fetcher.Fetch(context.Background(), "tt1375666"); err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected cached reviews on second fetch, got %d requests", hits.Load())
	}
}

func TestFetcherSkipsMissingID(t *testing.T) {
	fetcher := NewFetcher(Options{BaseURL: "http://127.0.0.1:1"}, nil)
	got, err := fetcher.Fetch(context.Background(), "  ")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v %v", got, err)
	}
	if _, err := fetcher.Fetch(context.Background(), "indian_42"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetcherClassifiesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/title/tt0000404/reviews/":
			http.NotFound(w, r)
		case "/title/tt0000500/reviews/":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			time.Sleep(200 * time.Millisecond)
			fmt.Fprint(w, reviewsPage())
		}
	}))
	defer srv.Close()

	fetcher := NewFetcher(Options{BaseURL: srv.URL, RequestsPerSecond: 100, Timeout: 50 * time.Millisecond}, nil)
	if _, err := fetcher.Fetch(context.Background(), "tt0000404"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := fetcher.Fetch(context.Background(), "tt0000500"); !errors.Is(err, services.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, err := fetcher.Fetch(context.Background(), "tt0000001"); services.Kind(err) != "timeout" {
		t.Fatalf("expected timeout, got %v", err)
	}
}
