// Package sentiment summarizes how audiences feel about a film from its user
// reviews: an overall label, per-review counts, recurring themes, and a short
// summary.
package sentiment
