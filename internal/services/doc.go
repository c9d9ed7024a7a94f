// Package services defines shared utilities consumed by the analysis,
// recommendation, and transport layers.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers and the
//     public operation name for logging.
//   - The error taxonomy (not found, upstream unavailable, parse failure,
//     timeout) plus the Wrap helper and Kind classifier that decide whether a
//     failure is surfaced to the caller or downgraded to a success:false
//     payload.
//   - A circuit breaker used to stop hammering an upstream that keeps failing.
//
// External service clients live in subpackages (llm, tmdb).
package services
