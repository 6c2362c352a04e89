package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation flow
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "not_found", "blank"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviematch_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency including poster resolution",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Poster resolution
	PosterResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_poster_resolutions_total",
			Help: "Poster resolutions by source",
		},
		[]string{"source"}, // "metadata", "placeholder", "disabled"
	)

	PosterCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_poster_cache_lookups_total",
			Help: "Metadata response cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	PosterFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_poster_failures_total",
			Help: "Poster lookups that fell back to the placeholder because of an upstream failure",
		},
		[]string{"category"},
	)

	// HTTP surface
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviematch_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviematch_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CatalogTitles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviematch_catalog_titles",
			Help: "Titles in the loaded catalog",
		},
	)
)

// RecordRecommendation records the outcome and latency of one recommendation.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordPoster records where a poster URL came from.
func RecordPoster(source string, cached bool) {
	PosterResolutions.WithLabelValues(source).Inc()
	if source == "disabled" {
		return
	}
	if cached {
		PosterCacheLookups.WithLabelValues("hit").Inc()
	} else {
		PosterCacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordPosterFailure counts an upstream failure by error category.
func RecordPosterFailure(category string) {
	if category == "" {
		category = "unknown"
	}
	PosterFailures.WithLabelValues(category).Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
