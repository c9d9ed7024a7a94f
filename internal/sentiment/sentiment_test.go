package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"marquee/internal/services"
)

type fakeJSON struct {
	content string
	err     error
	prompt  string
}

func (f *fakeJSON) CompleteJSON(_ context.Context, _, user string) (string, error) {
	f.prompt = user
	return f.content, f.err
}

func TestLexiconSummaryCountsAndThemes(t *testing.T) {
	reviews := []string{
		"An amazing film with a brilliant performance from the cast.",
		"The story was great and the soundtrack is wonderful.",
		"Boring and predictable plot, a waste of time.",
		"It exists. I watched it on a Tuesday.",
	}
	got := LexiconSummary("Inception", reviews)
	if !got.Success || !got.Placeholder {
		t.Fatalf("expected successful placeholder, got %+v", got)
	}
	if got.Positive != 2 || got.Negative != 1 || got.Neutral != 1 {
		t.Fatalf("unexpected counts: +%d -%d =%d", got.Positive, got.Negative, got.Neutral)
	}
	if got.Overall != LabelPositive {
		t.Fatalf("expected positive overall, got %q", got.Overall)
	}
	if len(got.Themes) == 0 || got.Themes[0] != "story" {
		t.Fatalf("expected story as the leading theme, got %v", got.Themes)
	}
	if got.ReviewCount != 4 {
		t.Fatalf("expected 4 reviews, got %d", got.ReviewCount)
	}
}

func TestLexiconNegation(t *testing.T) {
	if score := scoreReview("This was not good at all"); score >= 0 {
		t.Fatalf("expected negated praise to score negative, got %d", score)
	}
}

func TestLabelFromCounts(t *testing.T) {
	cases := []struct {
		pos, neg, neu int
		want          string
	}{
		{0, 0, 0, LabelNeutral},
		{5, 1, 0, LabelPositive},
		{1, 5, 1, LabelNegative},
		{3, 3, 1, LabelMixed},
		{1, 1, 8, LabelMixed},
		{0, 0, 4, LabelNeutral},
	}
	for _, tc := range cases {
		if got := labelFromCounts(tc.pos, tc.neg, tc.neu); got != tc.want {
			t.Errorf("labelFromCounts(%d,%d,%d) = %q, want %q", tc.pos, tc.neg, tc.neu, got, tc.want)
		}
	}
}

func TestSummarizeUsesModelResponse(t *testing.T) {
	fake := &fakeJSON{content: "```json\n{\"overall_sentiment\":\"Mixed\",\"positive_count\":2,\"negative_count\":2,\"neutral_count\":-1,\"themes\":[\"Visuals\",\"visuals\",\" \",\"Ending\"],\"summary\":\"Divided audience.\"}\n```"}
	s := NewSummarizer(fake, Options{ReviewChars: 10})
	got, err := s.Summarize(context.Background(), "Tenet", []string{"a very long review that should be cut", "short"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.Overall != LabelMixed || got.Placeholder || !got.Success {
		t.Fatalf("unexpected analysis: %+v", got)
	}
	if got.Neutral != 0 {
		t.Fatalf("expected negative counts clamped, got %d", got.Neutral)
	}
	if len(got.Themes) != 2 || got.Themes[0] != "Visuals" || got.Themes[1] != "Ending" {
		t.Fatalf("unexpected themes: %v", got.Themes)
	}
	if !strings.Contains(fake.prompt, "a very lon...") {
		t.Fatalf("expected truncated review in prompt, got %q", fake.prompt)
	}
	if !strings.Contains(fake.prompt, "Number of reviews: 2") {
		t.Fatalf("prompt missing review count: %q", fake.prompt)
	}
}

func TestSummarizeUnknownLabelFallsBackToCounts(t *testing.T) {
	fake := &fakeJSON{content: `{"overall_sentiment":"glowing","positive_count":4,"negative_count":0,"neutral_count":1,"themes":[],"summary":"Loved."}`}
	got, err := NewSummarizer(fake, Options{}).Summarize(context.Background(), "Up", []string{"x"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.Overall != LabelPositive {
		t.Fatalf("expected positive, got %q", got.Overall)
	}
}

func TestSummarizeErrors(t *testing.T) {
	upstream := services.Wrap(services.ErrUpstreamUnavailable, "llm", "complete", "boom", nil)
	_, err := NewSummarizer(&fakeJSON{err: upstream}, Options{}).Summarize(context.Background(), "Up", []string{"x"})
	if !errors.Is(err, services.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	_, err = NewSummarizer(&fakeJSON{content: "not json"}, Options{}).Summarize(context.Background(), "Up", []string{"x"})
	if !errors.Is(err, services.ErrParseFailure) {
		t.Fatalf("expected parse failure, got %v", err)
	}

	_, err = NewSummarizer(&fakeJSON{content: `{"overall_sentiment":"positive"}`}, Options{}).Summarize(context.Background(), "Up", []string{"x"})
	if !errors.Is(err, services.ErrParseFailure) {
		t.Fatalf("expected parse failure for empty summary, got %v", err)
	}
}

func TestSummarizeWithoutModelUsesLexicon(t *testing.T) {
	s := NewSummarizer(nil, Options{MaxReviews: 1})
	if s.UsesModel() {
		t.Fatal("expected lexicon mode")
	}
	got, err := s.Summarize(context.Background(), "Up", []string{"great", "awful"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.ReviewCount != 1 || got.Overall != LabelPositive {
		t.Fatalf("unexpected lexicon result: %+v", got)
	}
}
