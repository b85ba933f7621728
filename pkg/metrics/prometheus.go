// Package metrics provides Prometheus metrics for the fitscore service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the fitscore service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Scoring pipeline
	scoringRequests    *prometheus.CounterVec
	scoringLatency     prometheus.Histogram
	overallScore       prometheus.Histogram
	dimensionsEmitted  prometheus.Histogram
	collectorNotes     *prometheus.CounterVec
	contextResolutions *prometheus.CounterVec

	// Prediction services
	predictionCalls     *prometheus.CounterVec
	predictionLatency   *prometheus.HistogramVec
	predictionRetries   *prometheus.CounterVec
	predictionFallbacks *prometheus.CounterVec
	predictorUp         *prometheus.GaugeVec

	// Organisation store
	storeQueryLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fitscore",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all metric definitions
	auto := promauto.With(m.registry)
	scoreBuckets := prometheus.LinearBuckets(0, 10, 11)

	m.scoringRequests = auto.NewCounterVec(
		m.counterOpts("requests_total", "Scoring requests by terminal outcome"),
		[]string{"outcome"},
	)
	m.scoringLatency = auto.NewHistogram(
		m.histogramOpts("latency_milliseconds", "End-to-end scoring latency in milliseconds", m.histogramBuckets),
	)
	m.overallScore = auto.NewHistogram(
		m.histogramOpts("overall_score", "Distribution of emitted overall scores", scoreBuckets),
	)
	m.dimensionsEmitted = auto.NewHistogram(
		m.histogramOpts("dimensions_emitted", "Number of merged dimensions per response", prometheus.LinearBuckets(0, 2, 10)),
	)
	m.collectorNotes = auto.NewCounterVec(
		m.counterOpts("collector_notes_total", "Diagnostic notes produced while collecting dimensions"),
		[]string{"source"},
	)
	m.contextResolutions = auto.NewCounterVec(
		m.counterOpts("context_resolutions_total", "Scoring context resolutions by origin and outcome"),
		[]string{"origin", "outcome"},
	)

	m.predictionCalls = auto.NewCounterVec(
		m.counterOpts("prediction_calls_total", "Outbound prediction calls by service and outcome"),
		[]string{"service", "outcome"},
	)
	m.predictionLatency = auto.NewHistogramVec(
		m.histogramOpts("prediction_latency_milliseconds", "Outbound prediction latency in milliseconds", m.histogramBuckets),
		[]string{"service"},
	)
	m.predictionRetries = auto.NewCounterVec(
		m.counterOpts("prediction_retries_total", "Retried prediction attempts by service"),
		[]string{"service"},
	)
	m.predictionFallbacks = auto.NewCounterVec(
		m.counterOpts("prediction_fallbacks_total", "Prediction results replaced by a fallback marker"),
		[]string{"service"},
	)
	m.predictorUp = auto.NewGaugeVec(
		m.gaugeOpts("predictor_up", "Last observed health of a prediction service (1 healthy, 0 not)"),
		[]string{"service"},
	)

	m.storeQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("store_query_latency_milliseconds", "Organisation store query latency in milliseconds", m.histogramBuckets),
		[]string{"query"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Manager methods. Package-level helpers below delegate to the global manager.

// RecordScoringRequest counts a scoring request by outcome ("ok" or an error kind).
func (m *Manager) RecordScoringRequest(outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.scoringRequests.WithLabelValues(outcome).Inc()
	m.scoringLatency.Observe(latencyMs)
}

// RecordScoringResult observes the overall score and merged dimension count.
func (m *Manager) RecordScoringResult(overall, dimensions int) {
	if !m.enabled {
		return
	}
	m.overallScore.Observe(float64(overall))
	m.dimensionsEmitted.Observe(float64(dimensions))
}

// RecordCollectorNotes adds n diagnostic notes for a source.
func (m *Manager) RecordCollectorNotes(source string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.collectorNotes.WithLabelValues(source).Add(float64(n))
}

// RecordContextResolution counts a context resolution attempt.
func (m *Manager) RecordContextResolution(origin, outcome string) {
	if !m.enabled {
		return
	}
	m.contextResolutions.WithLabelValues(origin, outcome).Inc()
}

// RecordPredictionCall counts an outbound prediction call and its latency.
func (m *Manager) RecordPredictionCall(service, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.predictionCalls.WithLabelValues(service, outcome).Inc()
	m.predictionLatency.WithLabelValues(service).Observe(latencyMs)
}

// RecordPredictionRetry counts a retried attempt.
func (m *Manager) RecordPredictionRetry(service string) {
	if !m.enabled {
		return
	}
	m.predictionRetries.WithLabelValues(service).Inc()
}

// RecordPredictionFallback counts a result replaced by a fallback marker.
func (m *Manager) RecordPredictionFallback(service string) {
	if !m.enabled {
		return
	}
	m.predictionFallbacks.WithLabelValues(service).Inc()
}

// UpdatePredictorHealth sets the health gauge for a service.
func (m *Manager) UpdatePredictorHealth(service string, healthy bool) {
	if !m.enabled {
		return
	}
	v := 0.0
	if healthy {
		v = 1
	}
	m.predictorUp.WithLabelValues(service).Set(v)
}

// RecordStoreQueryLatency observes an organisation store query.
func (m *Manager) RecordStoreQueryLatency(query string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.storeQueryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request with its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records a failed HTTP request.
func (m *Manager) RecordHTTPError(endpoint, method, errorType, severity string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	m.errorLatency.WithLabelValues("http", errorType).Observe(latencyMs)
}

// UpdateSystemStats sets memory and goroutine gauges.
func (m *Manager) UpdateSystemStats(memBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

// RecordScoringRequest counts a scoring request by outcome.
func RecordScoringRequest(outcome string, latencyMs float64) {
	globalManager.RecordScoringRequest(outcome, latencyMs)
}

// RecordScoringResult observes the overall score and merged dimension count.
func RecordScoringResult(overall, dimensions int) {
	globalManager.RecordScoringResult(overall, dimensions)
}

// RecordCollectorNotes adds n diagnostic notes for a source.
func RecordCollectorNotes(source string, n int) {
	globalManager.RecordCollectorNotes(source, n)
}

// RecordContextResolution counts a context resolution attempt.
func RecordContextResolution(origin, outcome string) {
	globalManager.RecordContextResolution(origin, outcome)
}

// RecordPredictionCall counts an outbound prediction call.
func RecordPredictionCall(service, outcome string, latencyMs float64) {
	globalManager.RecordPredictionCall(service, outcome, latencyMs)
}

// RecordPredictionRetry counts a retried attempt.
func RecordPredictionRetry(service string) {
	globalManager.RecordPredictionRetry(service)
}

// RecordPredictionFallback counts a fallback marker.
func RecordPredictionFallback(service string) {
	globalManager.RecordPredictionFallback(service)
}

// UpdatePredictorHealth sets the health gauge for a service.
func UpdatePredictorHealth(service string, healthy bool) {
	globalManager.UpdatePredictorHealth(service, healthy)
}

// RecordStoreQueryLatency observes an organisation store query.
func RecordStoreQueryLatency(query string, latencyMs float64) {
	globalManager.RecordStoreQueryLatency(query, latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records a failed HTTP request.
func RecordHTTPError(endpoint, method, errorType, severity string, latencyMs float64) {
	globalManager.RecordHTTPError(endpoint, method, errorType, severity, latencyMs)
}

// UpdateSystemStats sets memory and goroutine gauges.
func UpdateSystemStats(memBytes uint64, goroutines int) {
	globalManager.UpdateSystemStats(memBytes, goroutines)
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.RecordSystemGCPauseTime(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
