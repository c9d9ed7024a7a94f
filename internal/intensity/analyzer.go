package intensity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/dataset"
	"marquee/internal/logging"
	"marquee/internal/services"
)

// Completer is the chat completion surface the analyzer needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AnalyzerOptions configures an Analyzer.
type AnalyzerOptions struct {
	ChartsDir     string
	Charts        bool
	PromptReviews int
	ReviewChars   int
	Logger        *slog.Logger
	Now           func() time.Time
}

// Analyzer produces intensity analyses with a language model, or
// deterministic placeholders when no model is configured.
type Analyzer struct {
	llm  Completer
	opts AnalyzerOptions
	log  *slog.Logger
}

// NewAnalyzer builds an Analyzer. A nil llm selects placeholder mode.
func NewAnalyzer(llm Completer, opts AnalyzerOptions) *Analyzer {
	if opts.PromptReviews < 0 {
		opts.PromptReviews = 0
	}
	if opts.ReviewChars <= 0 {
		opts.ReviewChars = 500
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Analyzer{
		llm:  llm,
		opts: opts,
		log:  logging.NewComponentLogger(opts.Logger, "intensity"),
	}
}

// UsesModel reports whether analyses come from a language model.
func (a *Analyzer) UsesModel() bool {
	return a != nil && a.llm != nil
}

// Analyze rates movie's intensity. Model failures are returned as classified
// errors (upstream, timeout, parse); the caller decides how to surface them.
func (a *Analyzer) Analyze(ctx context.Context, movie dataset.Movie, reviews []string) (Analysis, error) {
	logger := logging.WithContext(ctx, a.log).With(
		logging.Int64(logging.FieldMovieID, movie.ID),
		logging.String(logging.FieldTitle, movie.Title),
	)

	var (
		text        string
		placeholder bool
	)
	if a.llm == nil {
		text = PlaceholderText(movie)
		placeholder = true
		logger.Debug("no model configured, using placeholder analysis")
	} else {
		prompt := BuildPrompt(movie, reviews, a.opts.PromptReviews, a.opts.ReviewChars)
		started := time.Now()
		response, err := a.llm.Complete(ctx, systemPrompt, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return Analysis{}, services.Wrap(services.ErrTimeout, "intensity", "analyze", "analysis timed out", ctx.Err())
			}
			return Analysis{}, err
		}
		logger.Debug("model response received",
			logging.Duration("elapsed", time.Since(started)),
			logging.Int("chars", len(response)),
		)
		text = response
	}

	analysis, err := Parse(text)
	if err != nil {
		return Analysis{}, err
	}
	analysis.MovieTitle = movie.Title
	analysis.MovieID = IDPtr(movie.ID)
	analysis.Genres = movie.Genres
	analysis.ReleaseDate = movie.ReleaseDate
	analysis.ReviewCount = len(reviews)
	analysis.AnalyzedAt = a.opts.Now().UTC()
	analysis.Placeholder = placeholder
	analysis.Success = true

	if path, err := a.Chart(movie.ID, movie.Title, analysis.Ratings); err == nil {
		analysis.ChartPath = path
	} else if a.opts.Charts {
		logging.WarnWithContext(logger, "intensity chart not written", "intensity_chart_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.charts_dir permissions"),
			logging.String(logging.FieldImpact, "analysis returned without a chart"),
		)
	}
	return analysis, nil
}

// Chart writes the chart for ratings when charts are enabled.
func (a *Analyzer) Chart(id int64, title string, ratings Ratings) (string, error) {
	if !a.opts.Charts || strings.TrimSpace(a.opts.ChartsDir) == "" {
		return "", errChartsDisabled
	}
	return WriteChart(a.opts.ChartsDir, id, title, ratings)
}

// ChartsEnabled reports whether charts are rendered.
func (a *Analyzer) ChartsEnabled() bool {
	return a != nil && a.opts.Charts && strings.TrimSpace(a.opts.ChartsDir) != ""
}

var errChartsDisabled = services.Wrap(services.ErrConfiguration, "intensity", "chart", "charts disabled", nil)
