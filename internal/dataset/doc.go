// Package dataset loads the movie catalog and resolves free-text titles
// against it.
//
// Three CSV layouts are understood (the TMDB export, an Indian movies list,
// and the IMDb top 1000). Rows describing the same film are merged across
// sources, given stable numeric ids, and filtered by rating, vote count,
// year, and language. The resulting Catalog is immutable and shared
// process-wide through a Provider, which can persist a snapshot of the
// processed rows and rebuild on demand.
package dataset
