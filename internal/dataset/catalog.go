package dataset

import (
	"sort"
	"strings"

	"marquee/internal/services"
)

// Catalog is an immutable, indexed snapshot of the merged movie rows.
// It is safe for concurrent readers.
type Catalog struct {
	movies  []Movie
	lowered []string
	folded  []string
	byID    map[int64]int
}

// Candidate is a compact search hit used to pick a title for sentiment analysis.
type Candidate struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ExternalID  string `json:"external_id"`
	ReleaseDate string `json:"release_date"`
}

// Stats summarizes catalog contents.
type Stats struct {
	Movies    int            `json:"movies"`
	Languages map[string]int `json:"languages"`
	Sources   map[string]int `json:"sources"`
	Genres    int            `json:"genres"`
	WithIMDb  int            `json:"with_imdb_id"`
}

// NewCatalog indexes movies in the order given. The slice is copied.
func NewCatalog(movies []Movie) *Catalog {
	c := &Catalog{
		movies:  append([]Movie(nil), movies...),
		lowered: make([]string, len(movies)),
		folded:  make([]string, len(movies)),
		byID:    make(map[int64]int, len(movies)),
	}
	for i, m := range c.movies {
		c.lowered[i] = strings.ToLower(m.Title)
		c.folded[i] = FoldTitle(m.Title)
		if _, exists := c.byID[m.ID]; !exists {
			c.byID[m.ID] = i
		}
	}
	return c
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.movies)
}

// Movies returns a copy of every row in catalog order.
func (c *Catalog) Movies() []Movie {
	if c == nil {
		return nil
	}
	return append([]Movie(nil), c.movies...)
}

// ByID looks up a movie by id.
func (c *Catalog) ByID(id int64) (Movie, bool) {
	if c == nil {
		return Movie{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Movie{}, false
	}
	return c.movies[i], true
}

// Resolve maps a free-text title onto a catalog row.
//
// The lower-cased query is matched as a literal substring of every title.
// Among the matches an exact case-insensitive title wins, otherwise the first
// match in catalog order. When nothing contains the query the folded forms
// (diacritics and punctuation removed) are compared for equality, so
// "amelie" finds "Amélie". No match is services.ErrNotFound.
func (c *Catalog) Resolve(title string) (Movie, error) {
	query := strings.ToLower(strings.TrimSpace(title))
	if query == "" {
		return Movie{}, services.Wrap(services.ErrValidation, "resolver", "resolve", "title required", nil)
	}
	if c != nil {
		first := -1
		for i, lowered := range c.lowered {
			if !strings.Contains(lowered, query) {
				continue
			}
			if lowered == query {
				return c.movies[i], nil
			}
			if first < 0 {
				first = i
			}
		}
		if first >= 0 {
			return c.movies[first], nil
		}
		if folded := FoldTitle(query); folded != "" {
			for i, candidate := range c.folded {
				if candidate == folded {
					return c.movies[i], nil
				}
			}
		}
	}
	return Movie{}, services.Wrap(services.ErrNotFound, "resolver", "resolve", "no movie matches "+strings.TrimSpace(title), nil)
}

// FindExact returns the first movie whose title equals title ignoring case.
func (c *Catalog) FindExact(title string) (Movie, bool) {
	query := strings.ToLower(strings.TrimSpace(title))
	if c == nil || query == "" {
		return Movie{}, false
	}
	for i, lowered := range c.lowered {
		if lowered == query {
			return c.movies[i], true
		}
	}
	return Movie{}, false
}

// Search returns titles containing query, ranked exact match first, then
// prefix matches, then other substrings; ties break on vote count
// (descending) and catalog order. limit <= 0 means 10; at most 50.
func (c *Catalog) Search(query string, limit int) []Candidate {
	query = strings.ToLower(strings.TrimSpace(query))
	if c == nil || query == "" {
		return []Candidate{}
	}
	switch {
	case limit <= 0:
		limit = 10
	case limit > 50:
		limit = 50
	}

	type hit struct {
		index int
		rank  int
	}
	var hits []hit
	for i, lowered := range c.lowered {
		switch {
		case lowered == query:
			hits = append(hits, hit{i, 0})
		case strings.HasPrefix(lowered, query):
			hits = append(hits, hit{i, 1})
		case strings.Contains(lowered, query):
			hits = append(hits, hit{i, 2})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		return c.movies[hits[a].index].VoteCount > c.movies[hits[b].index].VoteCount
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		m := c.movies[h.index]
		out = append(out, Candidate{ID: m.ID, Title: m.Title, ExternalID: m.IMDbID, ReleaseDate: m.ReleaseDate})
	}
	return out
}

// Genres returns the sorted set of genre tokens across the catalog.
func (c *Catalog) Genres() []string {
	if c == nil {
		return []string{}
	}
	set := make(map[string]struct{})
	for _, m := range c.movies {
		for _, g := range m.GenreList() {
			set[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Stats returns per-language and per-source row counts.
func (c *Catalog) Stats() Stats {
	stats := Stats{Languages: map[string]int{}, Sources: map[string]int{}}
	if c == nil {
		return stats
	}
	stats.Movies = len(c.movies)
	stats.Genres = len(c.Genres())
	for _, m := range c.movies {
		stats.Languages[m.OriginalLanguage]++
		for _, src := range strings.Split(m.Source, ",") {
			if src = strings.TrimSpace(src); src != "" {
				stats.Sources[src]++
			}
		}
		if m.IMDbID != "" {
			stats.WithIMDb++
		}
	}
	return stats
}
