package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"marquee/internal/services"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_api_active_requests",
			Help: "Requests currently being served",
		},
	)

	// Intensity cache metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_intensity_cache_lookups_total",
			Help: "Intensity cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_intensity_cache_entries",
			Help: "Entries currently stored in the intensity cache",
		},
	)

	// Analysis metrics
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_analysis_duration_seconds",
			Help:    "Duration of fresh analyses in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
		},
		[]string{"kind"}, // intensity, sentiment
	)

	AnalysisResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_analysis_results_total",
			Help: "Analyses by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: success, placeholder, or an error kind
	)

	// Review fetcher metrics
	ReviewsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_reviews_fetched_total",
			Help: "User reviews extracted from review pages",
		},
	)

	ReviewFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_review_fetch_errors_total",
			Help: "Review fetch failures by error kind",
		},
		[]string{"kind"},
	)

	// Recommendation metrics
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_recommendations_total",
			Help: "Recommendation requests by whether anything matched",
		},
		[]string{"result"}, // found, empty
	)

	// Catalog metrics
	CatalogMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_catalog_movies",
			Help: "Movies in the loaded catalog",
		},
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_catalog_refreshes_total",
			Help: "Catalog rebuilds by outcome",
		},
		[]string{"outcome"}, // success, error
	)

	CatalogLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_catalog_last_refresh_timestamp_seconds",
			Help: "Unix timestamp of the last successful catalog rebuild",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup counts an intensity cache hit or miss
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// SetCacheEntries publishes the intensity cache size
func SetCacheEntries(n int) {
	CacheEntries.Set(float64(n))
}

// RecordAnalysis records a fresh analysis. err is classified with
// services.Kind; placeholder results are counted separately.
func RecordAnalysis(kind string, duration time.Duration, placeholder bool, err error) {
	AnalysisDuration.WithLabelValues(kind).Observe(duration.Seconds())
	AnalysisResults.WithLabelValues(kind, outcome(placeholder, err)).Inc()
}

// RecordReviewFetch records the result of one review fetch
func RecordReviewFetch(count int, err error) {
	if err != nil {
		ReviewFetchErrors.WithLabelValues(services.Kind(err)).Inc()
		return
	}
	ReviewsFetched.Add(float64(count))
}

// RecordRecommendation records whether a recommendation request matched
func RecordRecommendation(found bool) {
	if found {
		Recommendations.WithLabelValues("found").Inc()
		return
	}
	Recommendations.WithLabelValues("empty").Inc()
}

// RecordCatalogRefresh records a catalog rebuild
func RecordCatalogRefresh(movies int, err error) {
	if err != nil {
		CatalogRefreshes.WithLabelValues("error").Inc()
		return
	}
	CatalogRefreshes.WithLabelValues("success").Inc()
	CatalogMovies.Set(float64(movies))
	CatalogLastRefresh.Set(float64(time.Now().Unix()))
}

func outcome(placeholder bool, err error) string {
	switch {
	case err != nil:
		return services.Kind(err)
	case placeholder:
		return "placeholder"
	default:
		return "success"
	}
}
