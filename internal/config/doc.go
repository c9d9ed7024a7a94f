// Package config loads, normalizes, and validates Marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY, TMDB_API_KEY, and MARQUEE_API_TOKEN. Catalog source
// paths are resolved against the data directory so a bare file name in the
// config refers to a CSV stored next to the cache and database.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
