package recommend

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"marquee/internal/dataset"
	"marquee/internal/logging"
	"marquee/internal/metrics"
)

const (
	defaultMinVoteAverage = 6.0
	maxLimit              = 50
	noMatchMessage        = "No more movies match these filters. Try another genre or language, or clear the movies you have already seen."
)

// CatalogSource yields the current catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) (*dataset.Catalog, error)
}

// Request selects recommendations.
type Request struct {
	Genre       string  `json:"genre"`
	Language    string  `json:"language"`
	ExcludedIDs []int64 `json:"excluded_ids"`
	Limit       int     `json:"limit,omitempty"`
}

// Recommendation is one suggested movie.
type Recommendation struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	ReleaseDate      string  `json:"release_date"`
	Overview         string  `json:"overview"`
	Genres           string  `json:"genres"`
	OriginalLanguage string  `json:"original_language"`
	PosterPath       string  `json:"poster_path"`
}

// Filters echoes the filters that were applied.
type Filters struct {
	Genre    string `json:"genre"`
	Language string `json:"language"`
}

// Result is the recommendation response.
type Result struct {
	Success         bool             `json:"success"`
	Recommendations []Recommendation `json:"recommendations"`
	Total           int              `json:"total"`
	Filters         Filters          `json:"filters"`
	Message         string           `json:"message,omitempty"`
}

// Options configures a Selector.
type Options struct {
	Languages      []string
	MinVoteAverage float64
	Logger         *slog.Logger
}

// Selector picks highly rated movies matching a genre and language.
type Selector struct {
	catalogs       CatalogSource
	languages      []string
	minVoteAverage float64
	logger         *slog.Logger
}

// NewSelector constructs a Selector over catalogs.
func NewSelector(catalogs CatalogSource, opts Options) *Selector {
	minAvg := opts.MinVoteAverage
	if minAvg <= 0 {
		minAvg = defaultMinVoteAverage
	}
	return &Selector{
		catalogs:       catalogs,
		languages:      append([]string(nil), opts.Languages...),
		minVoteAverage: minAvg,
		logger:         logging.NewComponentLogger(opts.Logger, "recommend"),
	}
}

// Recommend returns up to req.Limit movies (default 1) that pass the genre
// and language filters, have a vote average of at least the configured
// minimum, and are neither excluded by id nor share a title with an excluded
// movie. Results are ordered by vote average, then vote count, then id, with
// duplicate titles collapsed. An empty result is still a success and carries
// a message.
func (s *Selector) Recommend(ctx context.Context, req Request) (Result, error) {
	catalog, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return Result{}, err
	}

	genre := strings.TrimSpace(req.Genre)
	language := s.languageCode(req.Language)
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}

	excluded := make(map[int64]struct{}, len(req.ExcludedIDs))
	excludedTitles := make(map[string]struct{}, len(req.ExcludedIDs))
	for _, id := range req.ExcludedIDs {
		excluded[id] = struct{}{}
		if m, ok := catalog.ByID(id); ok {
			if key := dataset.NormalizeTitle(m.Title); key != "" {
				excludedTitles[key] = struct{}{}
			}
		}
	}

	matchGenre := genreMatcher(catalog, genre)
	candidates := make([]dataset.Movie, 0)
	for _, m := range catalog.Movies() {
		if m.VoteAverage < s.minVoteAverage {
			continue
		}
		if language != "" && !strings.EqualFold(m.OriginalLanguage, language) {
			continue
		}
		if !matchGenre(m) {
			continue
		}
		if _, skip := excluded[m.ID]; skip {
			continue
		}
		candidates = append(candidates, m)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.VoteAverage != b.VoteAverage {
			return a.VoteAverage > b.VoteAverage
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.ID < b.ID
	})

	result := Result{
		Success:         true,
		Recommendations: make([]Recommendation, 0, limit),
		Filters:         Filters{Genre: genre, Language: language},
	}
	seen := make(map[string]struct{})
	for _, m := range candidates {
		key := dataset.NormalizeTitle(m.Title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if _, skip := excludedTitles[key]; skip {
			continue
		}
		seen[key] = struct{}{}
		result.Recommendations = append(result.Recommendations, fromMovie(m))
		if len(result.Recommendations) >= limit {
			break
		}
	}
	result.Total = len(result.Recommendations)
	if result.Total == 0 {
		result.Message = noMatchMessage
	}
	metrics.RecordRecommendation(result.Total > 0)
	s.logger.Debug("recommendation selected",
		logging.String("genre", genre),
		logging.String("language", language),
		logging.Int("excluded", len(req.ExcludedIDs)),
		logging.Int("returned", result.Total),
	)
	return result, nil
}

// genreMatcher matches whole genre tokens when genre names a catalog genre.
// Otherwise it falls back to a case-insensitive substring of the genre
// field, so "sci" still finds "Science Fiction".
func genreMatcher(catalog *dataset.Catalog, genre string) func(dataset.Movie) bool {
	if genre == "" {
		return func(dataset.Movie) bool { return true }
	}
	for _, known := range catalog.Genres() {
		if strings.EqualFold(known, genre) {
			return func(m dataset.Movie) bool { return m.HasGenre(genre) }
		}
	}
	needle := strings.ToLower(genre)
	return func(m dataset.Movie) bool {
		return strings.Contains(strings.ToLower(m.Genres), needle)
	}
}

// languageCode maps a configured code or display name onto its code. Other
// non-empty values are treated as raw language codes.
func (s *Selector) languageCode(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if code, ok := dataset.LanguageCode(input, s.languages); ok {
		return code
	}
	return strings.ToLower(input)
}

func fromMovie(m dataset.Movie) Recommendation {
	return Recommendation{
		ID:               m.ID,
		Title:            m.Title,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		ReleaseDate:      m.ReleaseDate,
		Overview:         m.Overview,
		Genres:           m.Genres,
		OriginalLanguage: m.OriginalLanguage,
		PosterPath:       m.PosterPath,
	}
}
