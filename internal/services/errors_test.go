package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"marquee/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUpstreamUnavailable, "intensity", "complete", "llm failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUpstreamUnavailable) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"intensity", "complete", "llm failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrUpstreamUnavailable) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		want        string
		recoverable bool
	}{
		{"nil", nil, "", false},
		{"not found", services.Wrap(services.ErrNotFound, "dataset", "resolve", "no match", nil), services.KindNotFound, false},
		{"upstream", services.Wrap(services.ErrUpstreamUnavailable, "llm", "complete", "", errors.New("503")), services.KindUpstreamUnavailable, true},
		{"parse", services.Wrap(services.ErrParseFailure, "intensity", "parse", "", nil), services.KindParseFailure, true},
		{"timeout marker", services.Wrap(services.ErrTimeout, "reviews", "fetch", "", nil), services.KindTimeout, true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), services.KindTimeout, true},
		{"validation", services.Wrap(services.ErrValidation, "recommend", "", "bad language", nil), services.KindValidation, false},
		{"plain", errors.New("disk full"), services.KindInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Kind(tt.err); got != tt.want {
				t.Fatalf("Kind = %q, want %q", got, tt.want)
			}
			if got := services.Recoverable(tt.err); got != tt.recoverable {
				t.Fatalf("Recoverable = %v, want %v", got, tt.recoverable)
			}
		})
	}
}
