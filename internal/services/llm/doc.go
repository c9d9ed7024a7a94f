// Package llm provides an OpenRouter-compatible chat client used for movie
// intensity analysis and review sentiment summaries.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive free text.
// Client.CompleteJSON: same, with response_format json_object.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s, 3 attempts by
// default). Context cancellation aborts retries immediately.
//
// # Errors
//
// Failures carry the services error taxonomy: deadline expiry is
// services.ErrTimeout, everything else from the upstream is
// services.ErrUpstreamUnavailable. When a circuit breaker is attached, an
// open breaker fails fast with ErrUpstreamUnavailable without any HTTP call.
package llm
