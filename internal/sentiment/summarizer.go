package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/services/llm"
)

const systemPrompt = `You analyze movie reviews. Respond with JSON only, using this shape:
{"overall_sentiment":"positive|negative|neutral|mixed","positive_count":0,"negative_count":0,"neutral_count":0,"themes":["short theme"],"summary":"two or three sentences"}
Counts must add up to the number of reviews you were given.`

// JSONCompleter is the chat completion surface the summarizer needs.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options configures a Summarizer.
type Options struct {
	MaxReviews  int
	ReviewChars int
	Logger      *slog.Logger
}

// Summarizer classifies review sentiment with a language model, or with the
// lexicon when no model is configured.
type Summarizer struct {
	llm    JSONCompleter
	opts   Options
	logger *slog.Logger
}

// NewSummarizer builds a Summarizer. A nil llm selects lexicon mode.
func NewSummarizer(llm JSONCompleter, opts Options) *Summarizer {
	if opts.MaxReviews <= 0 {
		opts.MaxReviews = 35
	}
	if opts.ReviewChars <= 0 {
		opts.ReviewChars = 800
	}
	return &Summarizer{llm: llm, opts: opts, logger: logging.NewComponentLogger(opts.Logger, "sentiment")}
}

type modelResponse struct {
	Overall  string   `json:"overall_sentiment"`
	Positive int      `json:"positive_count"`
	Negative int      `json:"negative_count"`
	Neutral  int      `json:"neutral_count"`
	Themes   []string `json:"themes"`
	Summary  string   `json:"summary"`
}

// Summarize classifies reviews for title.
func (s *Summarizer) Summarize(ctx context.Context, title string, reviews []string) (Analysis, error) {
	if len(reviews) > s.opts.MaxReviews {
		reviews = reviews[:s.opts.MaxReviews]
	}
	if s.llm == nil {
		return LexiconSummary(title, reviews), nil
	}
	if len(reviews) == 0 {
		return LexiconSummary(title, nil), nil
	}

	content, err := s.llm.CompleteJSON(ctx, systemPrompt, s.prompt(title, reviews))
	if err != nil {
		return Analysis{}, err
	}
	var parsed modelResponse
	if err := llm.DecodeLLMJSON(content, &parsed); err != nil {
		return Analysis{}, services.Wrap(services.ErrParseFailure, "sentiment", "summarize", "decode model response", err)
	}
	out := Analysis{
		Title:       title,
		Positive:    nonNegative(parsed.Positive),
		Negative:    nonNegative(parsed.Negative),
		Neutral:     nonNegative(parsed.Neutral),
		Summary:     strings.TrimSpace(parsed.Summary),
		ReviewCount: len(reviews),
		Success:     true,
	}
	out.Overall = normalizeLabel(parsed.Overall, out.Positive, out.Negative, out.Neutral)
	out.Themes = cleanThemes(parsed.Themes)
	if out.Summary == "" {
		return Analysis{}, services.Wrap(services.ErrParseFailure, "sentiment", "summarize", "model response has no summary", nil)
	}
	s.logger.Debug("sentiment summarized",
		logging.String(logging.FieldTitle, title),
		logging.String("overall", out.Overall),
		logging.Int("reviews", len(reviews)),
	)
	return out, nil
}

// UsesModel reports whether summaries come from a language model.
func (s *Summarizer) UsesModel() bool {
	return s != nil && s.llm != nil
}

func (s *Summarizer) prompt(title string, reviews []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Movie: %s\nNumber of reviews: %d\n\n", title, len(reviews))
	for i, review := range reviews {
		review = strings.TrimSpace(review)
		if utf8.RuneCountInString(review) > s.opts.ReviewChars {
			review = string([]rune(review)[:s.opts.ReviewChars]) + "..."
		}
		fmt.Fprintf(&b, "Review %d: %s\n\n", i+1, review)
	}
	return b.String()
}

func cleanThemes(themes []string) []string {
	out := make([]string, 0, len(themes))
	seen := make(map[string]struct{}, len(themes))
	for _, theme := range themes {
		theme = strings.TrimSpace(theme)
		key := strings.ToLower(theme)
		if theme == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, theme)
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
