// Package metrics exposes Prometheus instrumentation for the API, the
// intensity cache, analyses, review fetching, and catalog rebuilds.
//
// Metrics are registered on the default registry at package init and served
// by the HTTP API at /metrics.
package metrics
