package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"marquee/internal/services"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	breaker := services.NewBreaker(services.BreakerSettings{
		Name:             "llm",
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		OnStateChange: func(_, from, to string) {
			transitions = append(transitions, from+"->"+to)
		},
	})

	calls := 0
	failing := func() (string, error) {
		calls++
		return "", errors.New("503")
	}
	for i := 0; i < 2; i++ {
		if _, err := breaker.Execute(failing); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	if breaker.State() != "open" {
		t.Fatalf("expected open breaker, got %s", breaker.State())
	}

	_, err := breaker.Execute(failing)
	if !errors.Is(err, services.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable from open breaker, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected open breaker to skip the call, got %d calls", calls)
	}
	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	breaker := services.NewBreaker(services.BreakerSettings{Name: "llm", FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		_, _ = breaker.Execute(func() (string, error) { return "", context.Canceled })
	}
	if breaker.State() != "closed" {
		t.Fatalf("expected cancellations not to trip breaker, got %s", breaker.State())
	}
	out, err := breaker.Execute(func() (string, error) { return "ok", nil })
	if err != nil || out != "ok" {
		t.Fatalf("unexpected result %q %v", out, err)
	}
}

func TestNilBreakerPassesThrough(t *testing.T) {
	var breaker *services.Breaker
	out, err := breaker.Execute(func() (string, error) { return "direct", nil })
	if err != nil || out != "direct" {
		t.Fatalf("unexpected result %q %v", out, err)
	}
}
