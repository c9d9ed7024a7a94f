package reviews

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"marquee/internal/logging"
	"marquee/internal/services"
)

// Fetch modes.
const (
	ModeHTTP    = "http"
	ModeBrowser = "browser"
)

var imdbIDPattern = regexp.MustCompile(`^tt\d{5,}$`)

// Cache persists fetched reviews between runs.
type Cache interface {
	LoadReviews(ctx context.Context, imdbID string, maxAge time.Duration) ([]string, bool, error)
	SaveReviews(ctx context.Context, imdbID string, reviews []string) error
}

// Options configures a Fetcher.
type Options struct {
	Mode              string
	BaseURL           string
	UserAgent         string
	MinReviews        int
	MaxReviews        int
	MinLength         int
	RequestsPerSecond float64
	CacheTTL          time.Duration
	Timeout           time.Duration
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// pageSource returns the HTML of a reviews page holding up to want reviews.
type pageSource interface {
	Page(ctx context.Context, pageURL string, want int) (string, error)
}

// Fetcher loads user reviews for IMDb titles.
type Fetcher struct {
	opts    Options
	source  pageSource
	cache   Cache
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFetcher builds a Fetcher. cache may be nil.
func NewFetcher(opts Options, cache Cache) *Fetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.imdb.com"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.MaxReviews <= 0 {
		opts.MaxReviews = 35
	}
	if opts.MinLength < 0 {
		opts.MinLength = 0
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	logger := logging.NewComponentLogger(opts.Logger, "reviews")

	f := &Fetcher{
		opts:    opts,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:  logger,
	}
	switch strings.ToLower(opts.Mode) {
	case ModeBrowser:
		f.source = &browserSource{userAgent: opts.UserAgent, logger: logger}
	default:
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: opts.Timeout}
		}
		f.source = &httpSource{client: client, userAgent: opts.UserAgent}
	}
	return f
}

// ReviewsURL returns the reviews page for an IMDb id.
func (f *Fetcher) ReviewsURL(imdbID string) string {
	return fmt.Sprintf("%s/title/%s/reviews/", f.opts.BaseURL, imdbID)
}

// Fetch returns up to MaxReviews reviews for imdbID. An empty id returns no
// reviews and no error. Stored reviews younger than CacheTTL are reused.
func (f *Fetcher) Fetch(ctx context.Context, imdbID string) ([]string, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return []string{}, nil
	}
	if !imdbIDPattern.MatchString(imdbID) {
		return nil, services.Wrap(services.ErrValidation, "reviews", "fetch", "invalid imdb id "+imdbID, nil)
	}
	logger := logging.WithContext(ctx, f.logger).With(logging.String("imdb_id", imdbID))

	if f.cache != nil {
		cached, ok, err := f.cache.LoadReviews(ctx, imdbID, f.opts.CacheTTL)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "review cache read failed", "review_cache_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "reviews are fetched again"),
			)
		case ok:
			logger.Debug("reviews loaded from cache", logging.Int("count", len(cached)))
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, classify("wait for rate limiter", err)
	}

	started := time.Now()
	html, err := f.source.Page(ctx, f.ReviewsURL(imdbID), f.opts.MaxReviews)
	if err != nil {
		return nil, classify("load reviews page", err)
	}
	reviews, err := ExtractHTML(strings.NewReader(html), ExtractOptions{MinLength: f.opts.MinLength, MaxReviews: f.opts.MaxReviews})
	if err != nil {
		return nil, services.Wrap(services.ErrParseFailure, "reviews", "fetch", "parse reviews page", err)
	}

	logger.Info("reviews fetched",
		logging.Int("count", len(reviews)),
		logging.String("mode", f.mode()),
		logging.Duration("elapsed", time.Since(started)),
	)
	if len(reviews) < f.opts.MinReviews {
		logging.WarnWithContext(logger, "fewer reviews than requested", "reviews_below_minimum",
			logging.Int("count", len(reviews)),
			logging.Int("min_reviews", f.opts.MinReviews),
			logging.String(logging.FieldErrorHint, "try reviews.mode = \"browser\" to load more"),
			logging.String(logging.FieldImpact, "analysis uses fewer audience opinions"),
		)
	}

	if f.cache != nil && len(reviews) > 0 {
		if err := f.cache.SaveReviews(context.WithoutCancel(ctx), imdbID, reviews); err != nil {
			logging.WarnWithContext(logger, "review cache write failed", "review_cache_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "reviews are fetched again next time"),
			)
		}
	}
	return reviews, nil
}

func (f *Fetcher) mode() string {
	if _, ok := f.source.(*browserSource); ok {
		return ModeBrowser
	}
	return ModeHTTP
}

func classify(msg string, err error) error {
	switch {
	case services.Kind(err) == "timeout":
		return services.Wrap(services.ErrTimeout, "reviews", "fetch", msg, err)
	case services.Kind(err) != "internal":
		return err
	default:
		return services.Wrap(services.ErrUpstreamUnavailable, "reviews", "fetch", msg, err)
	}
}
