package analysis

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"marquee/internal/dataset"
	"marquee/internal/intensity"
	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/services"
)

// Result is the resolve_and_analyze response.
type Result struct {
	Movie     dataset.Movie      `json:"movie"`
	Intensity intensity.Analysis `json:"intensity"`
}

// ResolveAndAnalyze returns the intensity breakdown for title, served from
// the cache when possible.
//
// The cache is consulted by title before the catalog is touched. On a miss
// the title is resolved (services.ErrNotFound propagates) and the cache is
// consulted again by the resolved id. Only then is a fresh analysis run,
// under the service timeout. Analyzer failures never fail the call: they
// come back as an intensity payload with success false and the error kind.
func (s *Service) ResolveAndAnalyze(ctx context.Context, title string) (Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, services.Wrap(services.ErrValidation, "analysis", "resolve and analyze", "title required", nil)
	}
	ctx = services.WithOperation(ctx, "analyze")
	logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldTitle, title))

	if hit, ok := s.cache.Lookup(title, 0); ok {
		metrics.RecordCacheLookup(true)
		movie := s.movieForHit(ctx, title, hit)
		hit = s.ensureChart(logger, movie, hit)
		logger.Info("intensity served from cache", logging.String("cache_key", hit.CacheKey))
		return Result{Movie: movie, Intensity: hit}, nil
	}

	catalog, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return Result{}, err
	}
	movie, err := catalog.Resolve(title)
	if err != nil {
		return Result{}, err
	}
	logger = logger.With(logging.Int64(logging.FieldMovieID, movie.ID))

	if hit, ok := s.cache.LookupID(movie.ID); ok {
		metrics.RecordCacheLookup(true)
		hit = s.ensureChart(logger, movie, hit)
		logger.Info("intensity served from cache", logging.String("cache_key", hit.CacheKey))
		return Result{Movie: movie, Intensity: hit}, nil
	}
	metrics.RecordCacheLookup(false)

	movie = s.enrich(ctx, logger, movie)
	return Result{Movie: movie, Intensity: s.analyzeFresh(ctx, logger, movie)}, nil
}

func (s *Service) analyzeFresh(ctx context.Context, logger *slog.Logger, movie dataset.Movie) intensity.Analysis {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	reviews := s.fetchReviewsBestEffort(ctx, movie)
	result, err := s.analyzer.Analyze(ctx, movie, reviews)
	if err != nil {
		err = s.timeoutAware(ctx, "analyze intensity", err)
	}
	metrics.RecordAnalysis("intensity", time.Since(started), result.Placeholder, err)
	if err != nil {
		kind := services.Kind(err)
		logging.WarnWithContext(logger, "intensity analysis failed", "intensity_analysis_failed",
			logging.String("error_kind", kind),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(kind)),
			logging.String(logging.FieldImpact, "response carries success false"),
		)
		return failedIntensity(movie, err)
	}
	result.Cached = false

	if !result.Placeholder {
		key, err := s.cache.Store(result)
		if err != nil {
			logging.WarnWithContext(logger, "intensity analysis not cached", "intensity_cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.cache_path permissions"),
				logging.String(logging.FieldImpact, "the analysis is recomputed next time"),
			)
		} else {
			result.CacheKey = key
			metrics.SetCacheEntries(s.cache.Count())
		}
	}
	logger.Info("intensity analyzed",
		logging.Bool("placeholder", result.Placeholder),
		logging.Int("reviews", result.ReviewCount),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result
}

// fetchReviewsBestEffort returns reviews for movie, or none when the fetcher
// is disabled, the movie has no IMDb id, or the fetch fails.
func (s *Service) fetchReviewsBestEffort(ctx context.Context, movie dataset.Movie) []string {
	if s.reviews == nil || movie.IMDbID == "" {
		return nil
	}
	reviews, err := s.reviews.Fetch(ctx, movie.IMDbID)
	metrics.RecordReviewFetch(len(reviews), err)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "reviews unavailable for intensity analysis", "reviews_fetch_failed",
			logging.String("imdb_id", movie.IMDbID),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "analysis continues without reviews"),
		)
		return nil
	}
	return reviews
}

// movieForHit resolves the catalog row for a cache hit, or synthesizes one
// from the cached entry when resolution fails.
func (s *Service) movieForHit(ctx context.Context, title string, hit intensity.Analysis) dataset.Movie {
	if catalog, err := s.catalogs.Catalog(ctx); err == nil {
		if id := hit.ID(); id > 0 {
			if movie, ok := catalog.ByID(id); ok {
				return movie
			}
		}
		if movie, err := catalog.Resolve(title); err == nil {
			return movie
		}
	}
	return dataset.Movie{
		ID:          hit.ID(),
		Title:       hit.MovieTitle,
		Genres:      hit.Genres,
		ReleaseDate: hit.ReleaseDate,
	}
}

// ensureChart regenerates a chart that was never written or has since been
// deleted. Failures are logged and the hit is returned unchanged.
func (s *Service) ensureChart(logger *slog.Logger, movie dataset.Movie, hit intensity.Analysis) intensity.Analysis {
	if !s.analyzer.ChartsEnabled() {
		return hit
	}
	if hit.ChartPath != "" {
		if _, err := os.Stat(hit.ChartPath); err == nil {
			return hit
		}
	}
	id := hit.ID()
	if id <= 0 {
		id = movie.ID
	}
	title := hit.MovieTitle
	if title == "" {
		title = movie.Title
	}
	path, err := s.analyzer.Chart(id, title, hit.Ratings)
	if err != nil {
		logging.WarnWithContext(logger, "intensity chart not regenerated", "intensity_chart_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.charts_dir permissions"),
			logging.String(logging.FieldImpact, "cached analysis returned without a chart"),
		)
		return hit
	}
	hit.ChartPath = path
	if err := s.cache.SetChartPath(hit.CacheKey, path); err != nil {
		logging.WarnWithContext(logger, "chart path not recorded in cache", "intensity_cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "chart is regenerated on the next hit"),
		)
	}
	return hit
}

// enrich fills empty poster, overview, runtime, and IMDb id fields from TMDB
// for movies whose id is a TMDB id. Failures are logged and ignored.
func (s *Service) enrich(ctx context.Context, logger *slog.Logger, movie dataset.Movie) dataset.Movie {
	if s.enricher == nil || !movie.FromTMDB() {
		return movie
	}
	if movie.PosterPath != "" && movie.Overview != "" && movie.Runtime > 0 && movie.IMDbID != "" {
		return movie
	}
	details, err := s.enricher.GetMovieDetails(ctx, movie.ID)
	if err != nil {
		logging.WarnWithContext(logger, "tmdb enrichment failed", "tmdb_enrich_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check tmdb.api_key"),
			logging.String(logging.FieldImpact, "movie returned with catalog fields only"),
		)
		return movie
	}
	if movie.PosterPath == "" {
		movie.PosterPath = details.PosterPath
	}
	if movie.Overview == "" {
		movie.Overview = details.Overview
	}
	if movie.Runtime == 0 {
		movie.Runtime = details.Runtime
	}
	if movie.IMDbID == "" {
		movie.IMDbID = details.IMDbID
	}
	return movie
}

func failedIntensity(movie dataset.Movie, err error) intensity.Analysis {
	return intensity.Analysis{
		MovieTitle:  movie.Title,
		MovieID:     intensity.IDPtr(movie.ID),
		Genres:      movie.Genres,
		ReleaseDate: movie.ReleaseDate,
		Success:     false,
		Error:       err.Error(),
		ErrorKind:   services.Kind(err),
	}
}

func hintFor(kind string) string {
	switch kind {
	case services.KindTimeout:
		return "raise analysis.timeout_seconds or llm.timeout_seconds"
	case services.KindUpstreamUnavailable:
		return "check llm.api_key and the provider status"
	case services.KindParseFailure:
		return "the model answered in an unexpected format; retry or change llm.model"
	default:
		return "see error detail"
	}
}
