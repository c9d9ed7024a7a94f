// Package analysis orchestrates the user-facing operations: intensity
// analysis of a resolved title (served from the on-disk cache when possible)
// and review sentiment for a title.
//
// Collaborator failures are folded into the result payloads with
// success=false and an error kind. Only unresolvable titles and invalid input
// are returned as errors.
package analysis
