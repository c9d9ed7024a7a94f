// Package logging assembles structured slog loggers and formatting helpers used
// across Marquee.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers that tag log lines with the
// request correlation id and operation name. Logs are diagnostics: they go to
// stderr and the log file, never to stdout, which carries CLI results.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the system.
package logging
