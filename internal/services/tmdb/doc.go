// Package tmdb wraps the subset of The Movie Database API used to enrich
// catalog rows with posters, overviews, runtimes, and IMDb ids.
//
// Enrichment is optional: callers only construct a Client when an API key is
// configured and treat every error as non-fatal.
package tmdb
