package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"marquee/internal/dataset"
	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/sentiment"
	"marquee/internal/services"
)

// SearchSentimentCandidates lists catalog titles containing query so a
// caller can pick one for sentiment analysis. limit <= 0 means 10; at most 50.
func (s *Service) SearchSentimentCandidates(ctx context.Context, query string, limit int) ([]dataset.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, services.Wrap(services.ErrValidation, "analysis", "search sentiment candidates", "query required", nil)
	}
	catalog, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Search(query, limit), nil
}

// AnalyzeSentiment fetches reviews for a title and summarizes them. When
// externalID is empty it is looked up in the catalog, exact title first.
// Fetch and model failures, and titles without reviews, come back as
// success false; only an empty title is an error.
func (s *Service) AnalyzeSentiment(ctx context.Context, title, externalID string) (sentiment.Analysis, error) {
	title = strings.TrimSpace(title)
	externalID = strings.TrimSpace(externalID)
	if title == "" && externalID == "" {
		return sentiment.Analysis{}, services.Wrap(services.ErrValidation, "analysis", "analyze sentiment", "title or external id required", nil)
	}
	if title == "" {
		title = externalID
	}
	ctx = services.WithOperation(ctx, "sentiment")
	logger := logging.WithContext(ctx, s.logger).With(
		logging.String(logging.FieldTitle, title),
		logging.String("imdb_id", externalID),
	)

	if externalID == "" {
		externalID = s.lookupExternalID(ctx, title)
		if externalID == "" {
			return sentiment.Failed(title, "", "no IMDb id is known for "+quote(title), services.KindNotFound), nil
		}
		logger = logger.With(logging.String("imdb_id", externalID))
	}
	if s.reviews == nil {
		return sentiment.Failed(title, externalID, "review fetching is disabled", services.KindConfiguration), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	started := time.Now()

	reviews, err := s.reviews.Fetch(ctx, externalID)
	metrics.RecordReviewFetch(len(reviews), err)
	if err != nil {
		err = s.timeoutAware(ctx, "fetch reviews", err)
		metrics.RecordAnalysis("sentiment", time.Since(started), false, err)
		logging.WarnWithContext(logger, "sentiment reviews unavailable", "reviews_fetch_failed",
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "response carries success false"),
		)
		return sentiment.Failed(title, externalID, err.Error(), services.Kind(err)), nil
	}
	if len(reviews) == 0 {
		return sentiment.Failed(title, externalID, "no reviews found for "+quote(title), services.KindNotFound), nil
	}

	result, err := s.sentiment.Summarize(ctx, title, reviews)
	if err != nil {
		err = s.timeoutAware(ctx, "summarize reviews", err)
		metrics.RecordAnalysis("sentiment", time.Since(started), false, err)
		logging.WarnWithContext(logger, "sentiment summary failed", "sentiment_failed",
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(services.Kind(err))),
			logging.String(logging.FieldImpact, "response carries success false"),
		)
		return sentiment.Failed(title, externalID, err.Error(), services.Kind(err)), nil
	}
	metrics.RecordAnalysis("sentiment", time.Since(started), result.Placeholder, nil)
	result.ExternalID = externalID
	logger.Info("sentiment analyzed",
		logging.String("overall", result.Overall),
		logging.Int("reviews", result.ReviewCount),
		logging.Bool("placeholder", result.Placeholder),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// lookupExternalID finds the IMDb id for title: exact title first, then the
// resolver. Movies from TMDB without an id in the catalog are enriched.
func (s *Service) lookupExternalID(ctx context.Context, title string) string {
	catalog, err := s.catalogs.Catalog(ctx)
	if err != nil || title == "" {
		return ""
	}
	movie, ok := catalog.FindExact(title)
	if !ok {
		if movie, err = catalog.Resolve(title); err != nil {
			return ""
		}
	}
	if movie.IMDbID == "" {
		movie = s.enrich(ctx, logging.WithContext(ctx, s.logger), movie)
	}
	return movie.IMDbID
}

func (s *Service) timeoutAware(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, services.ErrTimeout) {
		return services.Wrap(services.ErrTimeout, "analysis", op, "exceeded "+s.timeout.String(), err)
	}
	return err
}

func quote(title string) string {
	return "\"" + title + "\""
}
