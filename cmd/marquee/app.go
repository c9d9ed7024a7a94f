package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marquee/internal/analysis"
	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/intensity"
	"marquee/internal/logging"
	"marquee/internal/recommend"
	"marquee/internal/reviews"
	"marquee/internal/sentiment"
	"marquee/internal/services"
	"marquee/internal/services/llm"
	"marquee/internal/services/tmdb"
	"marquee/internal/store"
)

// app holds the wired services shared by the CLI commands and the server.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	store    *store.Store
	catalogs *dataset.Provider
	cache    *intensity.Cache
	llm      *llm.Client
	service  *analysis.Service
	selector *recommend.Selector
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := store.Open(ctx, cfg.Paths.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, store: db}

	sources := make([]dataset.SourceFile, 0, len(cfg.Dataset.Sources))
	for _, src := range cfg.Dataset.Sources {
		sources = append(sources, dataset.SourceFile{Path: src.Path, Format: src.Format})
	}
	a.catalogs = dataset.NewProvider(dataset.LoadOptions{
		Sources: sources,
		Filters: dataset.Filters{
			MinVoteAverage: cfg.Dataset.MinVoteAverage,
			MinVoteCount:   int64(cfg.Dataset.MinVoteCount),
			MinYear:        cfg.Dataset.MinYear,
			Languages:      cfg.Dataset.Languages,
		},
		Logger: logger,
	}, db, time.Duration(cfg.Dataset.SnapshotTTLHours)*time.Hour)

	a.cache = intensity.NewCache(cfg.Paths.CachePath, logger)

	// A nil interface selects the deterministic placeholders.
	var (
		completer     intensity.Completer
		jsonCompleter sentiment.JSONCompleter
	)
	if cfg.LLMEnabled() {
		breakerLogger := logging.NewComponentLogger(logger, "llm")
		a.llm = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}, llm.WithBreaker(services.NewBreaker(services.BreakerSettings{
			Name:             "llm",
			FailureThreshold: cfg.LLM.FailureThreshold,
			OpenTimeout:      time.Duration(cfg.LLM.OpenSeconds) * time.Second,
			OnStateChange: func(name, from, to string) {
				logging.WarnWithContext(breakerLogger, "llm circuit breaker changed state", "llm_breaker_state",
					logging.String("breaker", name),
					logging.String("from", from),
					logging.String("to", to),
					logging.String(logging.FieldImpact, "analyses fail fast while the breaker is open"),
				)
			},
		})))
		completer = a.llm
		jsonCompleter = a.llm
	} else {
		logger.Info("no llm api key configured; analyses use placeholders")
	}

	var fetcher analysis.ReviewSource
	if cfg.Reviews.Enabled {
		fetcher = reviews.NewFetcher(reviews.Options{
			Mode:              cfg.Reviews.Mode,
			BaseURL:           cfg.Reviews.BaseURL,
			UserAgent:         cfg.Reviews.UserAgent,
			MinReviews:        cfg.Reviews.MinReviews,
			MaxReviews:        cfg.Reviews.MaxReviews,
			MinLength:         cfg.Reviews.MinLength,
			RequestsPerSecond: cfg.Reviews.RequestsPerSecond,
			CacheTTL:          time.Duration(cfg.Reviews.CacheTTLHours) * time.Hour,
			Timeout:           time.Duration(cfg.Reviews.TimeoutSeconds) * time.Second,
			Logger:            logger,
		}, db)
	}

	var enricher analysis.MovieEnricher
	if cfg.TMDBEnabled() {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("tmdb client: %w", err)
		}
		enricher = client
	}

	a.service, err = analysis.NewService(analysis.Deps{
		Catalogs: a.catalogs,
		Cache:    a.cache,
		Analyzer: intensity.NewAnalyzer(completer, intensity.AnalyzerOptions{
			ChartsDir:     cfg.Paths.ChartsDir,
			Charts:        cfg.Analysis.Charts,
			PromptReviews: cfg.Analysis.PromptReviews,
			ReviewChars:   cfg.Analysis.ReviewChars,
			Logger:        logger,
		}),
		Sentiment: sentiment.NewSummarizer(jsonCompleter, sentiment.Options{
			MaxReviews: cfg.Reviews.MaxReviews,
			Logger:     logger,
		}),
		Reviews:  fetcher,
		Enricher: enricher,
		Timeout:  time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second,
		Logger:   logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	a.selector = recommend.NewSelector(a.catalogs, recommend.Options{
		Languages: cfg.Dataset.Languages,
		Logger:    logger,
	})
	return a, nil
}

// Close releases the database.
func (a *app) Close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close database", logging.Error(err))
	}
	a.store = nil
}
