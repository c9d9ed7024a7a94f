package services

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerSettings configures a circuit breaker around an upstream dependency.
type BreakerSettings struct {
	Name             string
	FailureThreshold int
	OpenTimeout      time.Duration
	// OnStateChange is invoked with the old and new state names ("closed",
	// "half-open", "open").
	OnStateChange func(name, from, to string)
}

// Breaker stops calling an upstream that keeps failing. While open every
// call fails fast with ErrUpstreamUnavailable.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreaker constructs a breaker that trips after FailureThreshold
// consecutive failures and probes again after OpenTimeout.
func NewBreaker(settings BreakerSettings) *Breaker {
	threshold := settings.FailureThreshold
	if threshold <= 0 {
		threshold = 5
	}
	timeout := settings.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	onChange := settings.OnStateChange
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		// Caller cancellations say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if onChange != nil {
				onChange(name, from.String(), to.String())
			}
		},
	})
	return &Breaker{name: settings.Name, cb: cb}
}

// Execute runs fn through the breaker.
func (b *Breaker) Execute(fn func() (string, error)) (string, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", Wrap(ErrUpstreamUnavailable, b.name, "circuit breaker", "upstream temporarily disabled after repeated failures", err)
	}
	return out, err
}

// State reports the breaker state name.
func (b *Breaker) State() string {
	if b == nil || b.cb == nil {
		return gobreaker.StateClosed.String()
	}
	return b.cb.State().String()
}
