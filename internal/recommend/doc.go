// Package recommend selects movies to suggest for a genre and language,
// skipping anything the caller has already been shown.
package recommend
