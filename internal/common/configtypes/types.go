package configtypes

import (
	"github.com/edgecomet/faleproxy/pkg/types"
)

// Log level constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Log format constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
	LogFormatText    = "text"
)

// Config is the proxy's complete runtime configuration.
// It is built once at startup and passed by pointer to constructors.
type Config struct {
	Server       ServerConfig        `yaml:"server"`
	Fetch        FetchConfig         `yaml:"fetch"`
	Rewrite      RewriteConfig       `yaml:"rewrite"`
	Static       StaticConfig        `yaml:"static"`
	ClientIP     ClientIPConfig      `yaml:"client_ip"`
	Log          LogConfig           `yaml:"log"`
	Metrics      MetricsConfig       `yaml:"metrics"`
	EventLogging *EventLoggingConfig `yaml:"event_logging,omitempty"`
	InstanceID   string              `yaml:"instance_id,omitempty"`
}

type ServerConfig struct {
	Listen  string         `yaml:"listen"`
	Timeout types.Duration `yaml:"timeout"`
	TLS     TLSConfig      `yaml:"tls,omitempty"`
}

// TLSConfig enables a second, HTTPS listener serving the same routes.
// Relative certificate paths are resolved against the config file directory.
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Listen     string `yaml:"listen"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version,omitempty"` // "1.2" or "1.3" (default)
}

// FetchConfig controls the outbound origin request.
// Zero Timeout leaves the HTTP client without a deadline.
type FetchConfig struct {
	Timeout        types.Duration `yaml:"timeout,omitempty"`
	UserAgent      string         `yaml:"user_agent,omitempty"`
	MaxRedirects   *int           `yaml:"max_redirects,omitempty"`
	MaxBodySize    int            `yaml:"max_body_size,omitempty"`    // bytes
	ReadBufferSize int            `yaml:"read_buffer_size,omitempty"` // bytes, caps response header size
	SSRFProtection *bool          `yaml:"ssrf_protection,omitempty"`
}

// RewriteConfig configures the word substitution applied to fetched pages.
type RewriteConfig struct {
	Target      string   `yaml:"target"`
	Replacement string   `yaml:"replacement"`
	SkipTags    []string `yaml:"skip_tags,omitempty"`
}

// StaticConfig controls the browser UI. Empty Dir serves the embedded assets.
type StaticConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ClientIPConfig lists headers consulted (in order) for the client address.
type ClientIPConfig struct {
	Headers []string `yaml:"headers,omitempty"`
}

type LogConfig struct {
	Level   string           `yaml:"level"`
	Console ConsoleLogConfig `yaml:"console"`
	File    FileLogConfig    `yaml:"file"`
}

type ConsoleLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"`
	Level   string `yaml:"level,omitempty"`
}

type FileLogConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Path     string         `yaml:"path"`
	Format   string         `yaml:"format"`
	Level    string         `yaml:"level,omitempty"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"`
	MaxAge     int  `yaml:"max_age"`
	MaxBackups int  `yaml:"max_backups"`
	Compress   bool `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// EventLoggingConfig configures the per-request event log
type EventLoggingConfig struct {
	File EventFileConfig `yaml:"file"`
}

// EventFileConfig configures the JSON-lines event file
type EventFileConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Path     string         `yaml:"path"`
	Rotation RotationConfig `yaml:"rotation"`
}

// StaticEnabled reports whether the browser UI is served (default true).
func (c *Config) StaticEnabled() bool {
	return c.Static.Enabled == nil || *c.Static.Enabled
}

// SSRFProtectionEnabled reports whether private-range dials are refused (default false).
func (c *FetchConfig) SSRFProtectionEnabled() bool {
	return c.SSRFProtection != nil && *c.SSRFProtection
}
