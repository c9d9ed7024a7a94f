package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"marquee/internal/analysis"
	"marquee/internal/dataset"
	"marquee/internal/intensity"
	"marquee/internal/logging"
	"marquee/internal/recommend"
	"marquee/internal/sentiment"
)

// Analyzer serves the analysis operations.
type Analyzer interface {
	ResolveAndAnalyze(ctx context.Context, title string) (analysis.Result, error)
	SearchSentimentCandidates(ctx context.Context, query string, limit int) ([]dataset.Candidate, error)
	AnalyzeSentiment(ctx context.Context, title, externalID string) (sentiment.Analysis, error)
}

// Recommender serves recommendations.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (recommend.Result, error)
}

// CatalogSource yields the current catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) (*dataset.Catalog, error)
}

// CacheViewer exposes intensity cache contents.
type CacheViewer interface {
	List() []intensity.Entry
	Count() int
}

// Options configures the HTTP API.
type Options struct {
	Bind              string
	Token             string
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Languages         []string

	Analyzer    Analyzer
	Recommender Recommender
	Catalogs    CatalogSource
	Cache       CacheViewer
	Logger      *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	opts    Options
	logger  *slog.Logger
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

// New validates opts and builds the router.
func New(opts Options) (*Server, error) {
	switch {
	case opts.Analyzer == nil:
		return nil, errors.New("server requires an analyzer")
	case opts.Recommender == nil:
		return nil, errors.New("server requires a recommender")
	case opts.Catalogs == nil:
		return nil, errors.New("server requires a catalog source")
	}
	opts.Token = strings.TrimSpace(opts.Token)
	s := &Server{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "api-server"),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured bind address and serves until ctx is
// cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.opts.Bind)
	if bind == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "API requests are no longer served"),
			)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for in-flight
// requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}
