package dataset

import (
	"strconv"
	"strings"
)

// Source tags recorded on merged rows.
const (
	SourceTMDB        = "tmdb"
	SourceIndian      = "indian_movies"
	SourceIMDbTop1000 = "imdb_top1000"
)

// Movie is one catalog row. Rows are immutable once the catalog is built;
// callers receive copies.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	ReleaseDate      string  `json:"release_date"`
	Genres           string  `json:"genres"`
	OriginalLanguage string  `json:"original_language"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
	IMDbID           string  `json:"imdb_id,omitempty"`
	Source           string  `json:"source,omitempty"`
	SourceKey        string  `json:"source_key,omitempty"`
}

// GenreList splits the comma-separated genre string into trimmed tokens.
func (m Movie) GenreList() []string {
	return splitGenres(m.Genres)
}

// HasGenre reports whether any genre token equals genre, ignoring case.
func (m Movie) HasGenre(genre string) bool {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return true
	}
	for _, token := range m.GenreList() {
		if strings.EqualFold(token, genre) {
			return true
		}
	}
	return false
}

// Year returns the four digit release year or 0 when the date is unknown.
func (m Movie) Year() int {
	return yearFromDate(m.ReleaseDate)
}

// FromTMDB reports whether the row id is a real TMDB id rather than a
// synthetic one.
func (m Movie) FromTMDB() bool {
	if m.SourceKey != "" {
		return false
	}
	for _, src := range strings.Split(m.Source, ",") {
		if strings.TrimSpace(src) == SourceTMDB {
			return true
		}
	}
	return false
}

func splitGenres(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func yearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
