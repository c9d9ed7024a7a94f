// Package intensity produces and caches per-film intensity analyses: scores
// from 0 to 10 for five runtime segments (beginning, first half, interval,
// second half, climax) with descriptions and a short pacing summary.
//
// Analyzer builds the prompt, calls the model through the Completer
// interface, and parses the free-text reply. Without a model it emits a
// genre-keyed placeholder that is flagged and never cached. Cache persists
// successful analyses in a JSON file keyed "id_<id>" or by normalized title.
package intensity
