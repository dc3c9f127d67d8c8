package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// Outcome labels for requests_total and request_duration_seconds
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Node kinds for rewritten_nodes_total
const (
	NodeKindText    = "text"
	NodeKindElement = "element"
)

// PrometheusMetrics holds the proxy's Prometheus collectors
type PrometheusMetrics struct {
	// Request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	successRatio    prometheus.Gauge
	activeRequests  prometheus.Gauge

	// Origin metrics
	fetchDuration     prometheus.Histogram
	fetchedBytesTotal prometheus.Counter

	// Rewrite metrics
	rewrittenNodesTotal *prometheus.CounterVec

	errorsTotal *prometheus.CounterVec

	logger      *zap.Logger
	httpHandler func(*fasthttp.RequestCtx)
}

// NewPrometheusMetrics registers collectors on the default registry
func NewPrometheusMetrics(namespace string, logger *zap.Logger) *PrometheusMetrics {
	return NewPrometheusMetricsWithRegistry(namespace, prometheus.DefaultRegisterer, logger)
}

// NewPrometheusMetricsWithRegistry registers collectors on registerer.
// If registerer also implements prometheus.Gatherer it backs ServeHTTP.
func NewPrometheusMetricsWithRegistry(namespace string, registerer prometheus.Registerer, logger *zap.Logger) *PrometheusMetrics {
	pm := &PrometheusMetrics{
		logger: logger,
	}

	pm.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Total number of fetch requests processed",
		},
		[]string{"outcome"},
	)

	pm.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "request_duration_seconds",
			Help:      "Time taken to serve fetch requests end to end",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	pm.successRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "proxy",
		Name:      "success_ratio",
		Help:      "Share of fetch requests that succeeded (0-1)",
	})

	pm.activeRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "proxy",
		Name:      "active_requests",
		Help:      "Number of fetch requests currently in flight",
	})

	pm.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "proxy",
		Name:      "fetch_duration_seconds",
		Help:      "Time taken by the origin to answer",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})

	pm.fetchedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "proxy",
		Name:      "fetched_bytes_total",
		Help:      "Total decoded bytes received from origins",
	})

	pm.rewrittenNodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "rewritten_nodes_total",
			Help:      "Total number of HTML nodes whose text was rewritten",
		},
		[]string{"kind"},
	)

	pm.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "errors_total",
			Help:      "Total number of failed fetch requests by category",
		},
		[]string{"category"},
	)

	registerer.MustRegister(
		pm.requestsTotal,
		pm.requestDuration,
		pm.successRatio,
		pm.activeRequests,
		pm.fetchDuration,
		pm.fetchedBytesTotal,
		pm.rewrittenNodesTotal,
		pm.errorsTotal,
	)

	gatherer, ok := registerer.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	pm.httpHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	logger.Debug("Prometheus metrics initialized")
	return pm
}

// RecordRequest records a finished request and refreshes the success ratio
func (pm *PrometheusMetrics) RecordRequest(outcome string, duration time.Duration) {
	pm.requestsTotal.WithLabelValues(outcome).Inc()
	pm.requestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	pm.updateSuccessRatio()
}

// RecordFetch records one successful origin response
func (pm *PrometheusMetrics) RecordFetch(duration time.Duration, bytes int) {
	pm.fetchDuration.Observe(duration.Seconds())
	pm.fetchedBytesTotal.Add(float64(bytes))
}

// RecordRewrite adds rewritten node counts
func (pm *PrometheusMetrics) RecordRewrite(textNodes, elements int) {
	if textNodes > 0 {
		pm.rewrittenNodesTotal.WithLabelValues(NodeKindText).Add(float64(textNodes))
	}
	if elements > 0 {
		pm.rewrittenNodesTotal.WithLabelValues(NodeKindElement).Add(float64(elements))
	}
}

// RecordError counts a failure by category
func (pm *PrometheusMetrics) RecordError(category string) {
	pm.errorsTotal.WithLabelValues(category).Inc()
}

func (pm *PrometheusMetrics) IncActiveRequests() {
	pm.activeRequests.Inc()
}

func (pm *PrometheusMetrics) DecActiveRequests() {
	pm.activeRequests.Dec()
}

// ServeHTTP serves Prometheus metrics via HTTP
func (pm *PrometheusMetrics) ServeHTTP(ctx *fasthttp.RequestCtx) {
	pm.httpHandler(ctx)
}

func (pm *PrometheusMetrics) updateSuccessRatio() {
	success := pm.getCounterValue(pm.requestsTotal.WithLabelValues(OutcomeSuccess))
	failed := pm.getCounterValue(pm.requestsTotal.WithLabelValues(OutcomeError))

	if total := success + failed; total > 0 {
		pm.successRatio.Set(success / total)
	}
}

// getCounterValue reads the current value of a counter
func (pm *PrometheusMetrics) getCounterValue(counter prometheus.Counter) float64 {
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		pm.logger.Warn("Failed to read counter value", zap.Error(err))
		return 0
	}
	return metric.GetCounter().GetValue()
}
