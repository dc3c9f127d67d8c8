package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// MetricsCollector centralizes metrics recording with debug logging
type MetricsCollector struct {
	prometheus *PrometheusMetrics
	logger     *zap.Logger
}

// NewMetricsCollector creates a collector on the default registry
func NewMetricsCollector(namespace string, logger *zap.Logger) *MetricsCollector {
	return NewMetricsCollectorWithRegistry(namespace, prometheus.DefaultRegisterer, logger)
}

// NewMetricsCollectorWithRegistry creates a collector on a custom registry
func NewMetricsCollectorWithRegistry(namespace string, registerer prometheus.Registerer, logger *zap.Logger) *MetricsCollector {
	return &MetricsCollector{
		prometheus: NewPrometheusMetricsWithRegistry(namespace, registerer, logger),
		logger:     logger,
	}
}

// RecordRequest records a request with timing
func (mc *MetricsCollector) RecordRequest(outcome string, duration time.Duration) {
	mc.prometheus.RecordRequest(outcome, duration)

	mc.logger.Debug("Recorded request metric",
		zap.String("outcome", outcome),
		zap.Duration("duration", duration))
}

// RecordFetch records origin latency and size
func (mc *MetricsCollector) RecordFetch(duration time.Duration, bytes int) {
	mc.prometheus.RecordFetch(duration, bytes)
}

// RecordRewrite records rewritten node counts
func (mc *MetricsCollector) RecordRewrite(textNodes, elements int) {
	mc.prometheus.RecordRewrite(textNodes, elements)
}

// RecordError records a failed request by category
func (mc *MetricsCollector) RecordError(category string) {
	mc.prometheus.RecordError(category)

	mc.logger.Debug("Recorded error metric", zap.String("category", category))
}

func (mc *MetricsCollector) IncActiveRequests() {
	mc.prometheus.IncActiveRequests()
}

func (mc *MetricsCollector) DecActiveRequests() {
	mc.prometheus.DecActiveRequests()
}

// ServeHTTP exposes the metrics; satisfies metricsserver.MetricsHandler
func (mc *MetricsCollector) ServeHTTP(ctx *fasthttp.RequestCtx) {
	mc.prometheus.ServeHTTP(ctx)
}
