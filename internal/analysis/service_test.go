package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/dataset"
	"marquee/internal/intensity"
	"marquee/internal/sentiment"
	"marquee/internal/services"
	"marquee/internal/services/tmdb"
)

const modelResponse = `Beginning: 6/10
Description: A heist inside a dream.

First Half: 7/10
Description: The team assembles.

Interval: 8/10
Description: The van falls.

Second Half: 9/10
Description: Layers collapse.

Climax: 10/10
Description: Limbo.

Overall Intensity Arc: Steady escalation
Peak Moments: The hallway fight
Pacing Assessment: Relentless`

type stubCompleter struct {
	response string
	err      error
	calls    atomic.Int32
	block    bool
}

func (s *stubCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	s.calls.Add(1)
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.response, s.err
}

type stubReviews struct {
	reviews []string
	err     error
	ids     []string
}

func (s *stubReviews) Fetch(_ context.Context, imdbID string) ([]string, error) {
	s.ids = append(s.ids, imdbID)
	return s.reviews, s.err
}

type stubEnricher struct {
	details *tmdb.MovieDetails
	err     error
	calls   int
}

func (s *stubEnricher) GetMovieDetails(context.Context, int64) (*tmdb.MovieDetails, error) {
	s.calls++
	return s.details, s.err
}

func testCatalog() *dataset.Catalog {
	return dataset.NewCatalog([]dataset.Movie{
		{ID: 1, Title: "Inception", Genres: "Action, Science Fiction", ReleaseDate: "2010-07-15", OriginalLanguage: "en", VoteAverage: 8.4, VoteCount: 34000, IMDbID: "tt1375666", Source: "tmdb"},
		{ID: 2, Title: "Dangal", Genres: "Drama", ReleaseDate: "2016-12-21", OriginalLanguage: "hi", VoteAverage: 8.3, VoteCount: 2000, Source: "indian_movies", SourceKey: "indian_tt5074352"},
		{ID: 3, Title: "Heat", Genres: "Crime", ReleaseDate: "1995-12-15", OriginalLanguage: "en", VoteAverage: 7.9, VoteCount: 6000, Source: "tmdb"},
	})
}

type fixture struct {
	service   *Service
	cache     *intensity.Cache
	completer *stubCompleter
	reviews   *stubReviews
	chartsDir string
}

func newFixture(t *testing.T, completer *stubCompleter, mutate func(*Deps)) fixture {
	t.Helper()
	dir := t.TempDir()
	cache := intensity.NewCache(filepath.Join(dir, "intensity_cache.json"), nil)
	var llm intensity.Completer
	if completer != nil {
		llm = completer
	}
	chartsDir := filepath.Join(dir, "charts")
	reviews := &stubReviews{reviews: []string{"A thrilling ride from start to finish, great cast."}}
	deps := Deps{
		Catalogs:  dataset.NewStaticProvider(testCatalog()),
		Cache:     cache,
		Analyzer:  intensity.NewAnalyzer(llm, intensity.AnalyzerOptions{ChartsDir: chartsDir, Charts: true}),
		Sentiment: sentiment.NewSummarizer(nil, sentiment.Options{}),
		Reviews:   reviews,
		Timeout:   time.Second,
	}
	if mutate != nil {
		mutate(&deps)
	}
	svc, err := NewService(deps)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return fixture{service: svc, cache: cache, completer: completer, reviews: reviews, chartsDir: chartsDir}
}

func TestResolveAndAnalyzeFreshThenCached(t *testing.T) {
	f := newFixture(t, &stubCompleter{response: modelResponse}, nil)

	first, err := f.service.ResolveAndAnalyze(context.Background(), "inception")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	if first.Movie.ID != 1 || !first.Intensity.Success || first.Intensity.Cached {
		t.Fatalf("unexpected fresh result: %+v", first)
	}
	if first.Intensity.CacheKey != "id_1" {
		t.Fatalf("expected id cache key, got %q", first.Intensity.CacheKey)
	}
	if first.Intensity.ReviewCount != 1 || len(f.reviews.ids) != 1 || f.reviews.ids[0] != "tt1375666" {
		t.Fatalf("expected reviews fetched by imdb id, got count=%d ids=%v", first.Intensity.ReviewCount, f.reviews.ids)
	}
	if _, err := os.Stat(first.Intensity.ChartPath); err != nil {
		t.Fatalf("expected chart on disk: %v", err)
	}

	second, err := f.service.ResolveAndAnalyze(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	if !second.Intensity.Cached || !second.Intensity.Success {
		t.Fatalf("expected cached hit, got %+v", second.Intensity)
	}
	if second.Intensity.Ratings.Climax.Score != 10 {
		t.Fatalf("expected cached ratings, got %+v", second.Intensity.Ratings)
	}
	if calls := f.completer.calls.Load(); calls != 1 {
		t.Fatalf("expected model called once, got %d", calls)
	}
}

func TestResolveAndAnalyzeFailingModelIsUnsuccessfulPayload(t *testing.T) {
	upstream := services.Wrap(services.ErrUpstreamUnavailable, "llm", "complete", "provider returned 503", nil)
	f := newFixture(t, &stubCompleter{err: upstream}, nil)

	got, err := f.service.ResolveAndAnalyze(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("expected payload, got error %v", err)
	}
	if got.Intensity.Success {
		t.Fatal("expected success=false")
	}
	if got.Intensity.Error == "" || got.Intensity.ErrorKind != services.KindUpstreamUnavailable {
		t.Fatalf("expected upstream error detail, got %+v", got.Intensity)
	}
	if got.Movie.ID != 1 {
		t.Fatalf("expected resolved movie alongside failure, got %+v", got.Movie)
	}
	if f.cache.Count() != 0 {
		t.Fatal("failed analysis must not be cached")
	}

	f.completer.err = nil
	f.completer.response = modelResponse
	retry, err := f.service.ResolveAndAnalyze(context.Background(), "Inception")
	if err != nil || !retry.Intensity.Success || retry.Intensity.Cached {
		t.Fatalf("expected fresh retry after failure, got %+v err=%v", retry.Intensity, err)
	}
}

func TestResolveAndAnalyzeTimeout(t *testing.T) {
	f := newFixture(t, &stubCompleter{block: true}, func(d *Deps) { d.Timeout = 20 * time.Millisecond })
	got, err := f.service.ResolveAndAnalyze(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	if got.Intensity.Success || got.Intensity.ErrorKind != services.KindTimeout {
		t.Fatalf("expected timeout payload, got %+v", got.Intensity)
	}
}

func TestResolveAndAnalyzeUnknownTitle(t *testing.T) {
	f := newFixture(t, &stubCompleter{response: modelResponse}, nil)
	_, err := f.service.ResolveAndAnalyze(context.Background(), "Nonexistent Film")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.service.ResolveAndAnalyze(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveAndAnalyzeLegacyIDEntryHitByTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intensity_cache.json")
	if err := os.WriteFile(path, []byte(`{"id_1": {"movie_title": "Inception", "success": true}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	completer := &stubCompleter{response: modelResponse}
	f := newFixture(t, completer, func(d *Deps) {
		d.Cache = intensity.NewCache(path, nil)
		d.Analyzer = intensity.NewAnalyzer(completer, intensity.AnalyzerOptions{})
	})

	got, err := f.service.ResolveAndAnalyze(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	if !got.Intensity.Cached || got.Intensity.CacheKey != "id_1" {
		t.Fatalf("expected hit on id_1, got %+v", got.Intensity)
	}
	if got.Movie.ID != 1 || got.Movie.VoteCount != 34000 {
		t.Fatalf("expected catalog row for display, got %+v", got.Movie)
	}
	if completer.calls.Load() != 0 {
		t.Fatal("model must not be called on a cache hit")
	}
}

func TestResolveAndAnalyzeHitForMovieMissingFromCatalog(t *testing.T) {
	f := newFixture(t, nil, nil)
	stored := intensity.Analysis{MovieTitle: "Memento", MovieID: intensity.IDPtr(77), Genres: "Mystery", ReleaseDate: "2000-10-11", Success: true}
	stored.Ratings.Climax = intensity.Segment{Score: 9}
	if _, err := f.cache.Store(stored); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := f.service.ResolveAndAnalyze(context.Background(), "Memento")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	want := dataset.Movie{ID: 77, Title: "Memento", Genres: "Mystery", ReleaseDate: "2000-10-11"}
	if got.Movie != want {
		t.Fatalf("expected synthesized movie %+v, got %+v", want, got.Movie)
	}
	if got.Intensity.ChartPath == "" {
		t.Fatal("expected missing chart to be regenerated")
	}
	if reread, ok := intensity.NewCache(f.cache.Path(), nil).LookupID(77); !ok || reread.ChartPath != got.Intensity.ChartPath {
		t.Fatalf("expected regenerated chart path persisted, got %+v", reread)
	}
}

func TestResolveAndAnalyzePlaceholderNotCached(t *testing.T) {
	f := newFixture(t, nil, nil)
	got, err := f.service.ResolveAndAnalyze(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	if !got.Intensity.Success || !got.Intensity.Placeholder || got.Intensity.Cached {
		t.Fatalf("expected uncached placeholder, got %+v", got.Intensity)
	}
	if f.cache.Count() != 0 {
		t.Fatal("placeholder analyses must not be cached")
	}
	if len(f.reviews.ids) != 0 {
		t.Fatal("movies without an imdb id must not trigger a review fetch")
	}
}

func TestResolveAndAnalyzeReviewFailureIsIgnored(t *testing.T) {
	f := newFixture(t, &stubCompleter{response: modelResponse}, nil)
	f.reviews.err = services.Wrap(services.ErrUpstreamUnavailable, "reviews", "fetch", "blocked", nil)
	got, err := f.service.ResolveAndAnalyze(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	if !got.Intensity.Success || got.Intensity.ReviewCount != 0 {
		t.Fatalf("expected analysis without reviews, got %+v", got.Intensity)
	}
}

func TestResolveAndAnalyzeEnrichesTMDBRows(t *testing.T) {
	enricher := &stubEnricher{details: &tmdb.MovieDetails{PosterPath: "/heat.jpg", Overview: "A heist.", Runtime: 170, IMDbID: "tt0113277"}}
	f := newFixture(t, &stubCompleter{response: modelResponse}, func(d *Deps) { d.Enricher = enricher })
	got, err := f.service.ResolveAndAnalyze(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("ResolveAndAnalyze: %v", err)
	}
	if got.Movie.PosterPath != "/heat.jpg" || got.Movie.Runtime != 170 || got.Movie.IMDbID != "tt0113277" {
		t.Fatalf("expected enriched movie, got %+v", got.Movie)
	}
	if len(f.reviews.ids) != 1 || f.reviews.ids[0] != "tt0113277" {
		t.Fatalf("expected reviews fetched with enriched id, got %v", f.reviews.ids)
	}

	enricher.err = errors.New("tmdb down")
	f2 := newFixture(t, nil, func(d *Deps) { d.Enricher = enricher })
	got, err = f2.service.ResolveAndAnalyze(context.Background(), "Heat")
	if err != nil || got.Movie.PosterPath != "" {
		t.Fatalf("expected enrichment failure to be ignored, got %+v err=%v", got.Movie, err)
	}
}

func TestSearchSentimentCandidates(t *testing.T) {
	f := newFixture(t, nil, nil)
	got, err := f.service.SearchSentimentCandidates(context.Background(), "e", 2)
	if err != nil {
		t.Fatalf("SearchSentimentCandidates: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Inception" || got[0].ExternalID != "tt1375666" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
	if _, err := f.service.SearchSentimentCandidates(context.Background(), " ", 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzeSentimentResolvesExternalID(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.reviews.reviews = []string{
		"A brilliant, gripping masterpiece.",
		"Great performances and a wonderful score.",
		"Boring and confusing in the middle.",
	}
	got, err := f.service.AnalyzeSentiment(context.Background(), "Inception", "")
	if err != nil {
		t.Fatalf("AnalyzeSentiment: %v", err)
	}
	if !got.Success || got.ExternalID != "tt1375666" || got.ReviewCount != 3 {
		t.Fatalf("unexpected sentiment: %+v", got)
	}
	if got.Overall != sentiment.LabelPositive {
		t.Fatalf("expected positive overall, got %q", got.Overall)
	}
}

func TestAnalyzeSentimentFailures(t *testing.T) {
	f := newFixture(t, nil, nil)

	got, err := f.service.AnalyzeSentiment(context.Background(), "Heat", "")
	if err != nil {
		t.Fatalf("AnalyzeSentiment: %v", err)
	}
	if got.Success || got.ErrorKind != services.KindNotFound {
		t.Fatalf("expected missing imdb id payload, got %+v", got)
	}

	f.reviews.err = services.Wrap(services.ErrUpstreamUnavailable, "reviews", "fetch", "status 503", nil)
	got, err = f.service.AnalyzeSentiment(context.Background(), "Inception", "tt1375666")
	if err != nil {
		t.Fatalf("AnalyzeSentiment: %v", err)
	}
	if got.Success || got.ErrorKind != services.KindUpstreamUnavailable || !strings.Contains(got.Error, "503") {
		t.Fatalf("expected upstream payload, got %+v", got)
	}

	f.reviews.err = nil
	f.reviews.reviews = nil
	got, _ = f.service.AnalyzeSentiment(context.Background(), "Inception", "tt1375666")
	if got.Success || got.Error == "" {
		t.Fatalf("expected no-reviews payload, got %+v", got)
	}

	if _, err := f.service.AnalyzeSentiment(context.Background(), "", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := NewService(Deps{}); err == nil {
		t.Fatal("expected error for missing collaborators")
	}
}
