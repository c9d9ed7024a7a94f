package recommend

import (
	"context"
	"errors"
	"testing"

	"marquee/internal/dataset"
)

func newSelector(movies ...dataset.Movie) *Selector {
	return NewSelector(dataset.NewStaticProvider(dataset.NewCatalog(movies)), Options{Languages: []string{"en", "hi"}})
}

func TestRecommendInceptionScenario(t *testing.T) {
	s := newSelector(dataset.Movie{ID: 1, Title: "Inception", Genres: "Action, Science Fiction", OriginalLanguage: "en", VoteAverage: 8.4, VoteCount: 34000})

	got, err := s.Recommend(context.Background(), Request{Genre: "Action", Language: "en"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !got.Success || got.Total != 1 || got.Recommendations[0].ID != 1 {
		t.Fatalf("expected Inception, got %+v", got)
	}
	if got.Message != "" {
		t.Fatalf("unexpected message %q", got.Message)
	}

	got, err = s.Recommend(context.Background(), Request{Genre: "Action", Language: "en", ExcludedIDs: []int64{1}})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !got.Success || got.Total != 0 || len(got.Recommendations) != 0 {
		t.Fatalf("expected empty success, got %+v", got)
	}
	if got.Message == "" {
		t.Fatal("expected explanatory message on empty result")
	}
}

func TestRecommendNeverRepeatsExcluded(t *testing.T) {
	s := newSelector(
		dataset.Movie{ID: 10, Title: "Heat", Genres: "Action, Crime", OriginalLanguage: "en", VoteAverage: 7.9, VoteCount: 6000},
		dataset.Movie{ID: 11, Title: "Speed", Genres: "Action", OriginalLanguage: "en", VoteAverage: 7.1, VoteCount: 5000},
		dataset.Movie{ID: 12, Title: "Die Hard", Genres: "Action", OriginalLanguage: "en", VoteAverage: 7.9, VoteCount: 9000},
		dataset.Movie{ID: 13, Title: "Ronin", Genres: "Action", OriginalLanguage: "en", VoteAverage: 7.1, VoteCount: 5000},
		dataset.Movie{ID: 14, Title: "Cheap Sequel", Genres: "Action", OriginalLanguage: "en", VoteAverage: 5.9, VoteCount: 90000},
	)
	want := []int64{12, 10, 11, 13}
	var excluded []int64
	for i, id := range want {
		got, err := s.Recommend(context.Background(), Request{Genre: "action", Language: "English", ExcludedIDs: excluded})
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if got.Total != 1 {
			t.Fatalf("round %d: expected one recommendation, got %+v", i, got)
		}
		pick := got.Recommendations[0].ID
		for _, ex := range excluded {
			if pick == ex {
				t.Fatalf("round %d: excluded id %d returned", i, pick)
			}
		}
		if pick != id {
			t.Fatalf("round %d: expected %d, got %d", i, id, pick)
		}
		excluded = append(excluded, pick)
	}
	got, err := s.Recommend(context.Background(), Request{Genre: "Action", Language: "en", ExcludedIDs: excluded})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.Total != 0 {
		t.Fatalf("expected low-rated movie to stay filtered, got %+v", got.Recommendations)
	}
}

func TestRecommendFiltersAndDedupes(t *testing.T) {
	s := newSelector(
		dataset.Movie{ID: 1, Title: "Dangal", Genres: "Drama, Sport", OriginalLanguage: "hi", VoteAverage: 8.3, VoteCount: 2000},
		dataset.Movie{ID: 2, Title: "Dangal", Genres: "Drama", OriginalLanguage: "hi", VoteAverage: 8.3, VoteCount: 1500},
		dataset.Movie{ID: 3, Title: "Lagaan", Genres: "Drama, Musical", OriginalLanguage: "hi", VoteAverage: 8.1, VoteCount: 1200},
		dataset.Movie{ID: 4, Title: "Dramatics", Genres: "Dramatic Comedy", OriginalLanguage: "hi", VoteAverage: 9.0, VoteCount: 100},
		dataset.Movie{ID: 5, Title: "Whiplash", Genres: "Drama", OriginalLanguage: "en", VoteAverage: 8.4, VoteCount: 9000},
	)

	got, err := s.Recommend(context.Background(), Request{Genre: "Drama", Language: "Hindi", Limit: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.Total != 2 || got.Recommendations[0].ID != 1 || got.Recommendations[1].ID != 3 {
		t.Fatalf("unexpected recommendations: %+v", got.Recommendations)
	}
	if got.Filters.Language != "hi" || got.Filters.Genre != "Drama" {
		t.Fatalf("unexpected filters echo: %+v", got.Filters)
	}

	got, err = s.Recommend(context.Background(), Request{Genre: "Drama", Language: "hi", ExcludedIDs: []int64{1}, Limit: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.Total != 1 || got.Recommendations[0].ID != 3 {
		t.Fatalf("expected title of excluded id to be skipped, got %+v", got.Recommendations)
	}

	got, err = s.Recommend(context.Background(), Request{Limit: 10})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.Total != 4 {
		t.Fatalf("expected empty filters to match all distinct titles, got %d", got.Total)
	}
}

func TestRecommendGenreSubstringFallback(t *testing.T) {
	s := newSelector(
		dataset.Movie{ID: 1, Title: "Inception", Genres: "Action, Science Fiction", OriginalLanguage: "en", VoteAverage: 8.4, VoteCount: 34000},
		dataset.Movie{ID: 2, Title: "Arrival", Genres: "Sci-Fi, Drama", OriginalLanguage: "en", VoteAverage: 7.9, VoteCount: 18000},
		dataset.Movie{ID: 3, Title: "Heat", Genres: "Action, Crime", OriginalLanguage: "en", VoteAverage: 7.9, VoteCount: 6000},
	)

	got, err := s.Recommend(context.Background(), Request{Genre: "sci", Limit: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.Total != 2 || got.Recommendations[0].ID != 1 || got.Recommendations[1].ID != 2 {
		t.Fatalf("expected substring matches for unknown genre, got %+v", got.Recommendations)
	}

	// A known genre still matches whole tokens only.
	got, err = s.Recommend(context.Background(), Request{Genre: "Sci-Fi", Limit: 5})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got.Total != 1 || got.Recommendations[0].ID != 2 {
		t.Fatalf("expected token match for known genre, got %+v", got.Recommendations)
	}
}

type failingSource struct{}

func (failingSource) Catalog(context.Context) (*dataset.Catalog, error) {
	return nil, errors.New("catalog unavailable")
}

func TestRecommendPropagatesCatalogError(t *testing.T) {
	s := NewSelector(failingSource{}, Options{})
	if _, err := s.Recommend(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
}
