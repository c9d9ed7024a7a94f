// Package server exposes the analysis, recommendation, and catalog
// operations over HTTP.
//
// Routes:
//
//	GET  /api/health            liveness plus catalog and cache sizes (open)
//	GET  /metrics               Prometheus metrics (open)
//	POST /api/analyze           {"title"} -> {movie, intensity}
//	GET  /api/recommend         ?genre=&language=&exclude=1,2&limit=
//	POST /api/recommend         {"genre","language","excluded_ids","limit"}
//	GET  /api/sentiment/search  ?q=&limit=
//	POST /api/sentiment         {"title","external_id"}
//	GET  /api/genres
//	GET  /api/languages
//	GET  /api/cache
//
// When a token is configured every route except health and metrics requires
// "Authorization: Bearer <token>". Unknown titles answer 404 and malformed
// input 400; collaborator failures answer 200 with success false.
package server
