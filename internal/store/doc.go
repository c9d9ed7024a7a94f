// Package store persists derived data in SQLite: the processed catalog
// snapshot (so restarts skip CSV parsing) and the user reviews fetched per
// IMDb id.
//
// Everything here can be rebuilt from the sources, so schema changes bump
// schemaVersion and users delete the database rather than migrating it.
package store
