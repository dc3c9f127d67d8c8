package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
	"github.com/edgecomet/faleproxy/internal/common/yamlutil"
	"github.com/edgecomet/faleproxy/pkg/types"
)

// Defaults applied when the YAML leaves a field unset
const (
	DefaultListen           = ":3001"
	DefaultServerTimeout    = 60 * time.Second
	DefaultTarget           = "yale"
	DefaultReplacement      = "fale"
	DefaultMaxRedirects     = 10
	DefaultMaxBodySize      = 10 * 1024 * 1024
	DefaultReadBufferSize   = 64 * 1024
	DefaultMetricsListen    = ":9091"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "faleproxy"
	DefaultInstanceID       = "default"
)

// Compile-time interface satisfaction check
var _ configtypes.ConfigManager = (*Manager)(nil)

// Manager handles configuration loading
type Manager struct {
	config     *configtypes.Config
	configPath string
	logger     *zap.Logger
}

// NewManager loads, defaults and validates the configuration at configPath.
func NewManager(configPath string, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		configPath: configPath,
		logger:     logger,
	}

	if err := m.LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	return m, nil
}

// NewManagerFromConfig wraps an in-memory configuration, applying defaults and validation.
func NewManagerFromConfig(cfg *configtypes.Config, logger *zap.Logger) (*Manager, error) {
	ApplyDefaults(cfg)
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	m := &Manager{config: cfg, logger: logger}
	m.emitConfigWarnings()
	return m, nil
}

// LoadConfig reads the YAML file and replaces the current configuration
func (m *Manager) LoadConfig() error {
	cfg, err := loadFile(m.configPath)
	if err != nil {
		return err
	}

	ApplyDefaults(cfg)

	if errs := Validate(cfg); len(errs) > 0 {
		return formatValidationErrors(errs)
	}

	m.config = cfg
	m.emitConfigWarnings()

	m.logger.Info("Configuration loaded",
		zap.String("config_path", m.configPath),
		zap.String("listen", cfg.Server.Listen),
		zap.String("target", cfg.Rewrite.Target),
		zap.String("replacement", cfg.Rewrite.Replacement))

	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *configtypes.Config {
	return m.config
}

func loadFile(path string) (*configtypes.Config, error) {
	var cfg configtypes.Config
	if err := yamlutil.LoadFileStrict(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *configtypes.Config {
	cfg := &configtypes.Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields in place
func ApplyDefaults(cfg *configtypes.Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	} else if normalized, err := configtypes.NormalizeListen(cfg.Server.Listen); err == nil {
		cfg.Server.Listen = normalized
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = types.Duration(DefaultServerTimeout)
	}
	if cfg.Server.TLS.Listen != "" {
		if normalized, err := configtypes.NormalizeListen(cfg.Server.TLS.Listen); err == nil {
			cfg.Server.TLS.Listen = normalized
		}
	}

	if cfg.Fetch.MaxRedirects == nil {
		redirects := DefaultMaxRedirects
		cfg.Fetch.MaxRedirects = &redirects
	}
	if cfg.Fetch.MaxBodySize == 0 {
		cfg.Fetch.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Fetch.ReadBufferSize == 0 {
		cfg.Fetch.ReadBufferSize = DefaultReadBufferSize
	}

	// Target and replacement default as a pair so a lone replacement is never
	// paired with the built-in target by accident.
	if cfg.Rewrite.Target == "" && cfg.Rewrite.Replacement == "" {
		cfg.Rewrite.Target = DefaultTarget
		cfg.Rewrite.Replacement = DefaultReplacement
	}

	// If both outputs are disabled (zero values), enable console by default
	if !cfg.Log.Console.Enabled && !cfg.Log.File.Enabled {
		cfg.Log.Console.Enabled = true
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = configtypes.LogLevelInfo
	}
	if cfg.Log.Console.Format == "" {
		cfg.Log.Console.Format = configtypes.LogFormatConsole
	}
	if cfg.Log.File.Format == "" {
		cfg.Log.File.Format = configtypes.LogFormatText
	}

	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = DefaultInstanceID
	}
}

// emitConfigWarnings logs non-fatal configuration concerns
func (m *Manager) emitConfigWarnings() {
	if m.logger == nil {
		return
	}
	for _, w := range Warnings(m.config) {
		m.logger.Warn(w)
	}
}

// formatValidationErrors converts validation errors to a single runtime error
func formatValidationErrors(errs []ValidationError) error {
	if len(errs) == 0 {
		return fmt.Errorf("configuration validation failed")
	}

	msg := errs[0].Error()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(errs)-1)
	}

	return fmt.Errorf("%s", msg)
}
