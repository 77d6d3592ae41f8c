// Package metrics provides Prometheus metrics for search, text fetches and the 3D viewer
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagview_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tagview_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Search metrics
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagview_searches_total",
			Help: "Total number of tag queries evaluated",
		},
		[]string{"surface"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tagview_search_duration_seconds",
			Help:    "Time taken to evaluate a tag query",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tagview_search_results",
			Help:    "Number of records matched per query",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
	)

	// Corpus metrics
	CorpusRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagview_corpus_records",
			Help: "Number of records in the loaded tag corpus",
		},
	)

	// Text body metrics
	TextFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagview_text_fetches_total",
			Help: "Total number of text body fetches",
		},
		[]string{"status"},
	)

	// Viewer metrics
	ViewerSessionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tagview_viewer_sessions_opened_total",
			Help: "Total number of 3D preview sessions opened",
		},
	)

	ViewerSessionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagview_viewer_session_outcomes_total",
			Help: "Sessions by how their load ended",
		},
		[]string{"outcome"},
	)

	ViewerStaleUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tagview_viewer_stale_updates_total",
			Help: "Load updates discarded because their session was replaced",
		},
	)

	RenderLoopsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagview_render_loops_active",
			Help: "Number of running render loops",
		},
	)

	DecodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tagview_decode_duration_seconds",
			Help:    "Time taken to fetch and decode a 3D asset",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)

// Session outcome labels
const (
	OutcomeReady     = "ready"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.Observe(duration.Seconds())
}

// RecordSearch records one evaluated query
func RecordSearch(surface string, results int, duration time.Duration) {
	SearchesTotal.WithLabelValues(surface).Inc()
	SearchResults.Observe(float64(results))
	SearchDuration.Observe(duration.Seconds())
}

// RecordTextFetch records a text body fetch by status ("ok" or "failed")
func RecordTextFetch(status string) {
	TextFetchesTotal.WithLabelValues(status).Inc()
}

// RecordSessionOutcome records how a session's load ended
func RecordSessionOutcome(outcome string, decode time.Duration) {
	ViewerSessionOutcomes.WithLabelValues(outcome).Inc()
	if outcome != OutcomeCancelled {
		DecodeDuration.Observe(decode.Seconds())
	}
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
