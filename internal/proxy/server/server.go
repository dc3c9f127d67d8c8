// Package server is the HTTP front of the proxy: POST /fetch, the browser UI
// and a health probe.
package server

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
	"github.com/edgecomet/faleproxy/internal/common/httputil"
	"github.com/edgecomet/faleproxy/internal/common/requestid"
	"github.com/edgecomet/faleproxy/internal/proxy/events"
	"github.com/edgecomet/faleproxy/internal/proxy/metrics"
	"github.com/edgecomet/faleproxy/internal/proxy/pipeline"
)

// Processor runs the fetch-rewrite pipeline for one URL
type Processor interface {
	Process(rawURL string, logger *zap.Logger) (*pipeline.Result, error)
}

type Server struct {
	configManager configtypes.ConfigManager
	processor     Processor
	logger        *zap.Logger

	metricsCollector *metrics.MetricsCollector

	// static is nil when the browser UI is disabled
	static fasthttp.RequestHandler

	eventEmitter events.EventEmitter
	instanceID   string
}

func NewServer(
	configManager configtypes.ConfigManager,
	processor Processor,
	metricsCollector *metrics.MetricsCollector,
	eventEmitter events.EventEmitter,
	logger *zap.Logger,
) (*Server, error) {
	cfg := configManager.GetConfig()

	var static fasthttp.RequestHandler
	if cfg.StaticEnabled() {
		h, err := newStaticHandler(cfg.Static.Dir)
		if err != nil {
			return nil, fmt.Errorf("static assets: %w", err)
		}
		static = h
	}

	if eventEmitter == nil {
		eventEmitter = &events.NoopEmitter{}
	}

	return &Server{
		configManager:    configManager,
		processor:        processor,
		logger:           logger,
		metricsCollector: metricsCollector,
		static:           static,
		eventEmitter:     eventEmitter,
		instanceID:       cfg.InstanceID,
	}, nil
}

func (s *Server) HandleRequest(ctx *fasthttp.RequestCtx) {
	requestID := requestid.Assign(ctx)
	logger := s.logger.With(zap.String("request_id", requestID))

	switch string(ctx.Path()) {
	case "/health":
		s.handleHealth(ctx)
		return
	case "/fetch":
		if !ctx.IsPost() {
			logger.Warn("Method not allowed", zap.String("method", string(ctx.Method())))
			httputil.JSONError(ctx, "Method not allowed", fasthttp.StatusMethodNotAllowed)
			ctx.Response.Header.Set(fasthttp.HeaderAllow, fasthttp.MethodPost)
			return
		}
		s.processFetchRequest(ctx, requestID, logger)
		return
	}

	if s.static != nil && (ctx.IsGet() || ctx.IsHead()) {
		s.static(ctx)
		return
	}

	logger.Debug("Not found", zap.String("path", string(ctx.Path())))
	httputil.JSONError(ctx, "Endpoint not found", fasthttp.StatusNotFound)
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Content-Type", "text/plain")
	ctx.Response.SetStatusCode(fasthttp.StatusOK)
	ctx.Response.SetBodyString("OK")
}

// NewFastHTTPServer wraps HandleRequest in a fasthttp.Server configured
// from the server section.
func (s *Server) NewFastHTTPServer() *fasthttp.Server {
	timeout := time.Duration(s.configManager.GetConfig().Server.Timeout)

	return &fasthttp.Server{
		Handler:            s.HandleRequest,
		Name:               "Faleproxy",
		ReadTimeout:        timeout,
		WriteTimeout:       timeout,
		IdleTimeout:        2 * timeout,
		MaxRequestBodySize: maxRequestBodySize,
		TCPKeepalive:       true,
		TCPKeepalivePeriod: 30 * time.Second,
	}
}
