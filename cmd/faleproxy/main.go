package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/faleproxy/internal/common/config"
	"github.com/edgecomet/faleproxy/internal/common/logger"
	"github.com/edgecomet/faleproxy/internal/common/metricsserver"
	"github.com/edgecomet/faleproxy/internal/common/tlslistener"
	"github.com/edgecomet/faleproxy/internal/proxy/events"
	"github.com/edgecomet/faleproxy/internal/proxy/fetcher"
	"github.com/edgecomet/faleproxy/internal/proxy/metrics"
	"github.com/edgecomet/faleproxy/internal/proxy/pipeline"
	"github.com/edgecomet/faleproxy/internal/proxy/server"
)

func main() {
	configPath := flag.String("c", "configs/faleproxy.yaml", "path to configuration file")
	testMode := flag.Bool("t", false, "test configuration and exit")
	flag.Parse()

	if *testMode {
		os.Exit(runConfigTest(*configPath))
	}

	// Create initial logger for startup
	initialLogger, err := logger.NewDefaultLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	initialLogger.Info("Starting Faleproxy", zap.String("config_path", *configPath))

	configManager, err := config.NewManager(*configPath, initialLogger.Logger)
	if err != nil {
		initialLogger.Fatal("Failed to create config manager", zap.Error(err))
	}

	cfg := configManager.GetConfig()

	// Reconfigure logger based on config settings
	dynamicLogger, err := logger.NewStartupLogger(cfg.Log)
	if err != nil {
		initialLogger.Fatal("Failed to create configured logger", zap.Error(err))
	}
	defer dynamicLogger.Sync()

	appLogger := dynamicLogger.With(zap.String("instance", cfg.InstanceID))

	// Metrics live on the default registry only when exported
	var registerer prometheus.Registerer = prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registerer = prometheus.DefaultRegisterer
	}
	metricsCollector := metrics.NewMetricsCollectorWithRegistry(cfg.Metrics.Namespace, registerer, appLogger)

	metricsServer, err := metricsserver.Start(cfg.Metrics, metricsCollector, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to start metrics server", zap.Error(err))
	}

	pageFetcher := fetcher.New(cfg.Fetch)
	pipelineService, err := pipeline.NewService(cfg, pageFetcher, metricsCollector)
	if err != nil {
		appLogger.Fatal("Failed to create rewrite pipeline", zap.Error(err))
	}
	rule := pipelineService.Rule()
	appLogger.Info("Rewrite rule loaded",
		zap.String("target", rule.Target()),
		zap.String("replacement", rule.Replacement()),
		zap.Strings("skip_tags", cfg.Rewrite.SkipTags))

	eventEmitter, err := events.NewEmitter(cfg.EventLogging, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create event emitter", zap.Error(err))
	}
	if cfg.EventLogging != nil && cfg.EventLogging.File.Enabled {
		appLogger.Info("Event logging initialized", zap.String("path", cfg.EventLogging.File.Path))
	}

	srv, err := server.NewServer(configManager, pipelineService, metricsCollector, eventEmitter, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create server", zap.Error(err))
	}

	// Create TLS listener before starting public servers to fail fast
	var tlsListener net.Listener
	if cfg.Server.TLS.Enabled {
		tlsCfg := tlslistener.ResolvePaths(cfg.Server.TLS, filepath.Dir(*configPath))
		tlsListener, err = tlslistener.New(tlsCfg)
		if err != nil {
			appLogger.Fatal("Failed to create TLS listener", zap.Error(err))
		}
	}

	serverErrors := make(chan error, 2)

	httpLifecycle := &serverLifecycle{
		server:  srv.NewFastHTTPServer(),
		name:    "HTTP",
		address: cfg.Server.Listen,
		logger:  appLogger,
	}
	httpLifecycle.Start(serverErrors)

	var httpsLifecycle *serverLifecycle
	if tlsListener != nil {
		httpsLifecycle = &serverLifecycle{
			server:   srv.NewFastHTTPServer(),
			listener: tlsListener,
			name:     "HTTPS",
			address:  cfg.Server.TLS.Listen,
			logger:   appLogger,
		}
		httpsLifecycle.Start(serverErrors)
	}

	// Wait briefly for servers to start and check for immediate failures
	time.Sleep(100 * time.Millisecond)
	select {
	case err := <-serverErrors:
		appLogger.Fatal("Server failed to start", zap.Error(err))
	default:
	}

	appLogger.Info("Faleproxy started",
		zap.String("http_addr", cfg.Server.Listen),
		zap.Bool("tls", tlsListener != nil),
		zap.String("rewrite", cfg.Rewrite.Target+" -> "+cfg.Rewrite.Replacement))

	// Switch to configured log level after startup is complete
	dynamicLogger.SwitchToConfiguredLevel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		dynamicLogger.EnsureInfoLevelForShutdown()
		appLogger.Info("Shutting down Faleproxy...")
	case err := <-serverErrors:
		dynamicLogger.EnsureInfoLevelForShutdown()
		appLogger.Error("Server failed, initiating shutdown", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, lc := range []*serverLifecycle{httpLifecycle, httpsLifecycle} {
		if lc == nil {
			continue
		}
		wg.Add(1)
		go func(lc *serverLifecycle) {
			defer wg.Done()
			_ = lc.Shutdown(shutdownCtx)
		}(lc)
	}
	wg.Wait()
	appLogger.Info("Public servers shutdown complete")

	if metricsServer != nil {
		appLogger.Info("Shutting down metrics server")
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	if err := eventEmitter.Close(); err != nil {
		appLogger.Error("Failed to close event emitter", zap.Error(err))
	}

	appLogger.Info("Faleproxy stopped")
}

type serverLifecycle struct {
	server   *fasthttp.Server
	listener net.Listener // nil for HTTP (uses ListenAndServe), set for HTTPS
	name     string
	address  string
	logger   *zap.Logger
}

func (s *serverLifecycle) Start(errChan chan<- error) {
	go func() {
		var err error
		if s.listener != nil {
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe(s.address)
		}
		if err != nil {
			s.logger.Error("Server error", zap.String("name", s.name), zap.Error(err))
			errChan <- fmt.Errorf("%s server failed: %w", s.name, err)
		}
	}()
	s.logger.Info("Server started", zap.String("name", s.name), zap.String("address", s.address))
}

func (s *serverLifecycle) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server", zap.String("name", s.name))
	err := s.server.ShutdownWithContext(ctx)
	if err != nil {
		s.logger.Error("Server shutdown error", zap.String("name", s.name), zap.Error(err))
	}
	return err
}

// runConfigTest validates the configuration file and prints the result
func runConfigTest(configPath string) int {
	result, err := config.ValidateFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		return 1
	}

	if !result.Valid {
		fmt.Println("Configuration validation FAILED:")
		for _, e := range result.Errors {
			fmt.Printf("- %s: %s\n", e.Field, e.Message)
		}
		return 1
	}

	fmt.Printf("configuration file %s syntax is ok\n", result.ConfigPath)

	if len(result.Warnings) > 0 {
		fmt.Println()
		fmt.Printf("Configuration warnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("- %s\n", w)
		}
		fmt.Println()
	}

	fmt.Println("configuration test is successful")
	return 0
}
