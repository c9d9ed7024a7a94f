package intensity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Segment names in runtime order.
const (
	SegmentBeginning  = "beginning"
	SegmentFirstHalf  = "first_half"
	SegmentInterval   = "interval"
	SegmentSecondHalf = "second_half"
	SegmentClimax     = "climax"
)

// Segment is one intensity rating.
type Segment struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Ratings holds the five runtime segments.
type Ratings struct {
	Beginning  Segment `json:"beginning"`
	FirstHalf  Segment `json:"first_half"`
	Interval   Segment `json:"interval"`
	SecondHalf Segment `json:"second_half"`
	Climax     Segment `json:"climax"`
}

// Segments returns pointers to the ratings in runtime order, paired with
// their display labels.
func (r *Ratings) Segments() []NamedSegment {
	return []NamedSegment{
		{Name: SegmentBeginning, Label: "Beginning", Segment: &r.Beginning},
		{Name: SegmentFirstHalf, Label: "First Half", Segment: &r.FirstHalf},
		{Name: SegmentInterval, Label: "Interval", Segment: &r.Interval},
		{Name: SegmentSecondHalf, Label: "Second Half", Segment: &r.SecondHalf},
		{Name: SegmentClimax, Label: "Climax", Segment: &r.Climax},
	}
}

// Scores returns the five scores in runtime order.
func (r Ratings) Scores() []int {
	return []int{r.Beginning.Score, r.FirstHalf.Score, r.Interval.Score, r.SecondHalf.Score, r.Climax.Score}
}

// NamedSegment pairs a segment with its identifiers.
type NamedSegment struct {
	Name    string
	Label   string
	Segment *Segment
}

// Analysis is an intensity breakdown of one film. The same shape is stored in
// the cache file and returned to callers; the response flags are annotated on
// read.
type Analysis struct {
	MovieTitle       string    `json:"movie_title"`
	MovieID          *int64    `json:"movie_id"`
	Genres           string    `json:"genres,omitempty"`
	ReleaseDate      string    `json:"release_date,omitempty"`
	Ratings          Ratings   `json:"intensity_ratings"`
	OverallArc       string    `json:"overall_arc"`
	PeakMoments      string    `json:"peak_moments"`
	PacingAssessment string    `json:"pacing_assessment"`
	FullAnalysis     string    `json:"full_analysis"`
	ChartPath        string    `json:"plot_path,omitempty"`
	ReviewCount      int       `json:"review_count,omitempty"`
	AnalyzedAt       time.Time `json:"analyzed_at,omitzero"`

	Success     bool   `json:"success"`
	Cached      bool   `json:"cached"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	CacheKey    string `json:"-"`

	// legacyMovieID keeps a non-numeric movie_id (e.g. "indian_tt0169102")
	// written by older analyzers so a rewrite stores it unchanged.
	legacyMovieID json.RawMessage
}

type analysisFields Analysis

// UnmarshalJSON accepts movie_id as a number, a numeric string, or any other
// string. Non-numeric strings leave MovieID unknown.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	aux := struct {
		*analysisFields
		MovieID json.RawMessage `json:"movie_id"`
	}{analysisFields: (*analysisFields)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.MovieID = nil
	a.legacyMovieID = nil

	raw := bytes.TrimSpace(aux.MovieID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var number int64
	if err := json.Unmarshal(raw, &number); err == nil {
		a.MovieID = IDPtr(number)
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		// Floats and other shapes are kept as written.
		a.legacyMovieID = append(json.RawMessage(nil), raw...)
		return nil
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil && id > 0 {
		a.MovieID = &id
		return nil
	}
	if strings.TrimSpace(text) != "" {
		a.legacyMovieID = append(json.RawMessage(nil), raw...)
	}
	return nil
}

// MarshalJSON writes a preserved legacy movie_id when no numeric id is set.
func (a Analysis) MarshalJSON() ([]byte, error) {
	if a.MovieID != nil || len(a.legacyMovieID) == 0 {
		return json.Marshal(analysisFields(a))
	}
	return json.Marshal(struct {
		analysisFields
		MovieID json.RawMessage `json:"movie_id"`
	}{analysisFields: analysisFields(a), MovieID: a.legacyMovieID})
}

// ID returns the movie id or 0 when unknown.
func (a Analysis) ID() int64 {
	if a.MovieID == nil {
		return 0
	}
	return *a.MovieID
}

// IDPtr returns a pointer suitable for Analysis.MovieID; ids <= 0 are unknown.
func IDPtr(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

// IDKey is the cache key for a numeric movie id.
func IDKey(id int64) string {
	return "id_" + strconv.FormatInt(id, 10)
}
