package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock_analyzer"

// Metrics holds every Prometheus collector the analyzer exports
type Metrics struct {
	// Analysis pipeline
	AnalysisRequestsTotal *prometheus.CounterVec
	AnalysisDuration      *prometheus.HistogramVec
	AnalysisErrorsTotal   *prometheus.CounterVec
	RecommendationScores  *prometheus.HistogramVec

	// Report artifacts
	ReportsWrittenTotal prometheus.Counter
	ReportErrorsTotal   *prometheus.CounterVec

	// Symbol universe
	SymbolUniverseSize     prometheus.Gauge
	SymbolUniverseFallback prometheus.Gauge

	// Upstream providers
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// HTTP server
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breakers
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// latencyBuckets span a cached health check up to a slow provider timeout, in seconds
var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// scoreBuckets line up with the possible buy scores (0..100 in steps of 20, plus the neutral 50)
var scoreBuckets = []float64{0, 20, 40, 50, 60, 80, 100}

// builder registers collectors under one subsystem of the namespace
type builder struct {
	factory   promauto.Factory
	subsystem string
}

func (b builder) counter(name, help string) prometheus.Counter {
	return b.factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: b.subsystem, Name: name, Help: help,
	})
}

func (b builder) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return b.factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: b.subsystem, Name: name, Help: help,
	}, labels)
}

func (b builder) gauge(name, help string) prometheus.Gauge {
	return b.factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: b.subsystem, Name: name, Help: help,
	})
}

func (b builder) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return b.factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: b.subsystem, Name: name, Help: help,
	}, labels)
}

func (b builder) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return b.factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: b.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

// NewMetrics registers all collectors with reg, or the default registerer when nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	analysis := builder{f, "analysis"}
	report := builder{f, "report"}
	symbols := builder{f, "symbols"}
	upstream := builder{f, "external_api"}
	server := builder{f, "http"}
	breaker := builder{f, "circuit_breaker"}

	return &Metrics{
		AnalysisRequestsTotal: analysis.counterVec("requests_total",
			"Total number of stock analysis requests", "symbol"),
		AnalysisDuration: analysis.histogramVec("duration_seconds",
			"Duration of the full analysis pipeline in seconds", latencyBuckets, "status"),
		AnalysisErrorsTotal: analysis.counterVec("errors_total",
			"Total number of degraded or failed analysis steps", "error_type"),
		RecommendationScores: builder{f, "recommendation"}.histogramVec("score",
			"Distribution of buy scores", scoreBuckets, "computed"),

		ReportsWrittenTotal: report.counter("written_total",
			"Total number of report artifacts written"),
		ReportErrorsTotal: report.counterVec("errors_total",
			"Total number of report artifact failures", "stage"),

		SymbolUniverseSize: symbols.gauge("universe_size",
			"Number of tradable symbols currently loaded"),
		SymbolUniverseFallback: symbols.gauge("fallback_active",
			"1 when the built-in fallback symbol list is in use"),

		ExternalAPIRequestsTotal: upstream.counterVec("requests_total",
			"Total number of provider requests", "service", "operation"),
		ExternalAPIErrorsTotal: upstream.counterVec("errors_total",
			"Total number of failed provider calls after retries", "service", "operation", "error_type"),
		ExternalAPIDuration: upstream.histogramVec("duration_seconds",
			"Duration of single provider attempts in seconds", latencyBuckets, "service", "operation"),

		HTTPRequestsTotal: server.counterVec("requests_total",
			"Total number of HTTP requests", "method", "route", "status_code"),
		HTTPRequestDuration: server.histogramVec("request_duration_seconds",
			"Duration of HTTP requests in seconds", latencyBuckets, "method", "route"),
		HTTPResponseSize: server.histogramVec("response_size_bytes",
			"Size of HTTP responses in bytes", prometheus.ExponentialBuckets(100, 10, 6), "method", "route"),

		CircuitBreakerState: breaker.gaugeVec("state",
			"Breaker state per provider (0=closed, 1=half-open, 2=open)", "breaker"),
		CircuitBreakerTrips: breaker.counterVec("trips_total",
			"Number of times a breaker opened", "breaker"),
	}
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// InitMetrics registers the process-wide collectors on the default
// registerer. Repeated calls return the same instance.
func InitMetrics() *Metrics {
	return GetMetrics()
}

// GetMetrics returns the process-wide collectors, registering them on first use
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = NewMetrics(nil)
	})
	return globalMetrics
}

func (m *Metrics) RecordAnalysisRequest(symbol string) {
	m.AnalysisRequestsTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) RecordAnalysisDuration(status string, duration time.Duration) {
	m.AnalysisDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordAnalysisError counts a degraded or failed pipeline step
func (m *Metrics) RecordAnalysisError(errorType string) {
	m.AnalysisErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordScore observes a buy score; computed=false marks the neutral fallback
func (m *Metrics) RecordScore(score int, computed bool) {
	m.RecommendationScores.WithLabelValues(strconv.FormatBool(computed)).Observe(float64(score))
}

func (m *Metrics) RecordReportWritten() {
	m.ReportsWrittenTotal.Inc()
}

// RecordReportError counts an artifact failure at stage (mkdir, render, write)
func (m *Metrics) RecordReportError(stage string) {
	m.ReportErrorsTotal.WithLabelValues(stage).Inc()
}

// SetSymbolUniverse records the loaded universe size and whether it is the fallback list
func (m *Metrics) SetSymbolUniverse(size int, fallback bool) {
	m.SymbolUniverseSize.Set(float64(size))
	v := 0.0
	if fallback {
		v = 1
	}
	m.SymbolUniverseFallback.Set(v)
}

func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request; route is the chi pattern so
// report ids do not explode the label set
func (m *Metrics) RecordHTTPRequest(method, route, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(responseSize))
}

func (m *Metrics) SetCircuitBreakerState(breaker string, state int) {
	m.CircuitBreakerState.WithLabelValues(breaker).Set(float64(state))
}

func (m *Metrics) RecordCircuitBreakerTrip(breaker string) {
	m.CircuitBreakerTrips.WithLabelValues(breaker).Inc()
}

// Timer measures one operation from its creation
type Timer struct {
	start   time.Time
	metrics *Metrics
}

func (m *Metrics) NewTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// ObserveAnalysis records the pipeline duration under status
func (t *Timer) ObserveAnalysis(status string) {
	t.metrics.RecordAnalysisDuration(status, t.Duration())
}

// ObserveExternalAPI records one provider attempt
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, t.Duration())
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
