package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marquee/internal/dataset"
	"marquee/internal/intensity"
	"marquee/internal/logging"
	"marquee/internal/sentiment"
	"marquee/internal/services/tmdb"
)

const defaultTimeout = 90 * time.Second

// CatalogSource yields the current catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) (*dataset.Catalog, error)
}

// IntensityAnalyzer rates a film's pacing and renders its chart.
type IntensityAnalyzer interface {
	Analyze(ctx context.Context, movie dataset.Movie, reviews []string) (intensity.Analysis, error)
	Chart(id int64, title string, ratings intensity.Ratings) (string, error)
	ChartsEnabled() bool
}

// ReviewSource fetches user reviews by IMDb id.
type ReviewSource interface {
	Fetch(ctx context.Context, imdbID string) ([]string, error)
}

// SentimentSummarizer classifies a set of reviews.
type SentimentSummarizer interface {
	Summarize(ctx context.Context, title string, reviews []string) (sentiment.Analysis, error)
}

// MovieEnricher looks up extra movie details by TMDB id.
type MovieEnricher interface {
	GetMovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error)
}

// Deps wires a Service. Reviews and Enricher are optional.
type Deps struct {
	Catalogs  CatalogSource
	Cache     *intensity.Cache
	Analyzer  IntensityAnalyzer
	Sentiment SentimentSummarizer
	Reviews   ReviewSource
	Enricher  MovieEnricher
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Service orchestrates resolution, caching, and analysis.
type Service struct {
	catalogs  CatalogSource
	cache     *intensity.Cache
	analyzer  IntensityAnalyzer
	sentiment SentimentSummarizer
	reviews   ReviewSource
	enricher  MovieEnricher
	timeout   time.Duration
	logger    *slog.Logger
}

// NewService validates deps and constructs a Service.
func NewService(deps Deps) (*Service, error) {
	switch {
	case deps.Catalogs == nil:
		return nil, errors.New("analysis service requires a catalog source")
	case deps.Cache == nil:
		return nil, errors.New("analysis service requires an intensity cache")
	case deps.Analyzer == nil:
		return nil, errors.New("analysis service requires an intensity analyzer")
	case deps.Sentiment == nil:
		return nil, errors.New("analysis service requires a sentiment summarizer")
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		catalogs:  deps.Catalogs,
		cache:     deps.Cache,
		analyzer:  deps.Analyzer,
		sentiment: deps.Sentiment,
		reviews:   deps.Reviews,
		enricher:  deps.Enricher,
		timeout:   timeout,
		logger:    logging.NewComponentLogger(deps.Logger, "analysis"),
	}, nil
}

// Cache exposes the intensity cache for inspection endpoints.
func (s *Service) Cache() *intensity.Cache {
	return s.cache
}

// Timeout returns the per-operation time limit.
func (s *Service) Timeout() time.Duration {
	return s.timeout
}
