package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
)

// ValidationError describes one invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult is produced by ValidateFile for the -t command line mode
type ValidationResult struct {
	ConfigPath string
	Valid      bool
	Errors     []ValidationError
	Warnings   []string
}

var (
	validLogLevels = map[string]bool{
		configtypes.LogLevelDebug: true,
		configtypes.LogLevelInfo:  true,
		configtypes.LogLevelWarn:  true,
		configtypes.LogLevelError: true,
	}
	validLogFormats = map[string]bool{
		configtypes.LogFormatJSON:    true,
		configtypes.LogFormatConsole: true,
		configtypes.LogFormatText:    true,
	}
)

var validTLSVersions = map[string]bool{"": true, "1.2": true, "1.3": true}

// ValidateFile loads the file, applies defaults and collects every problem.
// The returned error is reserved for files that cannot be read or parsed.
func ValidateFile(path string) (*ValidationResult, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	errs := Validate(cfg)
	return &ValidationResult{
		ConfigPath: path,
		Valid:      len(errs) == 0,
		Errors:     errs,
		Warnings:   Warnings(cfg),
	}, nil
}

// Validate checks a defaulted configuration and returns all problems found
func Validate(cfg *configtypes.Config) []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if err := configtypes.ValidateListenAddress(cfg.Server.Listen); err != nil {
		add("server.listen", "%v", err)
	}
	if cfg.Server.Timeout < 0 {
		add("server.timeout", "must not be negative")
	}
	if tlsCfg := cfg.Server.TLS; tlsCfg.Enabled {
		if err := configtypes.ValidateListenAddress(tlsCfg.Listen); err != nil {
			add("server.tls.listen", "%v", err)
		} else if configtypes.SamePort(tlsCfg.Listen, cfg.Server.Listen) {
			add("server.tls.listen", "must use a different port than server.listen")
		}
		if tlsCfg.CertFile == "" {
			add("server.tls.cert_file", "must be specified when TLS is enabled")
		}
		if tlsCfg.KeyFile == "" {
			add("server.tls.key_file", "must be specified when TLS is enabled")
		}
		if !validTLSVersions[tlsCfg.MinVersion] {
			add("server.tls.min_version", "unsupported version %q (use 1.2 or 1.3)", tlsCfg.MinVersion)
		}
	}

	if cfg.Fetch.Timeout < 0 {
		add("fetch.timeout", "must not be negative")
	}
	if cfg.Fetch.MaxRedirects != nil && *cfg.Fetch.MaxRedirects < 0 {
		add("fetch.max_redirects", "must not be negative")
	}
	if cfg.Fetch.MaxBodySize < 0 {
		add("fetch.max_body_size", "must not be negative")
	}
	if cfg.Fetch.ReadBufferSize < 0 {
		add("fetch.read_buffer_size", "must not be negative")
	}

	if strings.TrimSpace(cfg.Rewrite.Target) == "" {
		add("rewrite.target", "must not be empty")
	}
	for i, tag := range cfg.Rewrite.SkipTags {
		if strings.TrimSpace(tag) == "" {
			add(fmt.Sprintf("rewrite.skip_tags[%d]", i), "must not be empty")
		}
	}

	if cfg.Static.Dir != "" {
		if info, err := os.Stat(cfg.Static.Dir); err != nil || !info.IsDir() {
			add("static.dir", "%q is not a readable directory", cfg.Static.Dir)
		}
	}

	errs = append(errs, validateLog(&cfg.Log)...)

	if cfg.Metrics.Enabled {
		if err := configtypes.ValidateListenAddress(cfg.Metrics.Listen); err != nil {
			add("metrics.listen", "%v", err)
		} else if configtypes.SamePort(cfg.Metrics.Listen, cfg.Server.Listen) {
			add("metrics.listen", "must use a different port than server.listen")
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			add("metrics.path", "must start with '/'")
		}
	}

	if cfg.EventLogging != nil && cfg.EventLogging.File.Enabled && cfg.EventLogging.File.Path == "" {
		add("event_logging.file.path", "must be specified when event logging is enabled")
	}

	return errs
}

func validateLog(cfg *configtypes.LogConfig) []ValidationError {
	var errs []ValidationError
	checkLevel := func(field, level string) {
		if level != "" && !validLogLevels[level] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("unknown level %q", level)})
		}
	}
	checkFormat := func(field, format string) {
		if format != "" && !validLogFormats[format] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("unknown format %q", format)})
		}
	}

	checkLevel("log.level", cfg.Level)
	checkLevel("log.console.level", cfg.Console.Level)
	checkLevel("log.file.level", cfg.File.Level)
	checkFormat("log.console.format", cfg.Console.Format)
	checkFormat("log.file.format", cfg.File.Format)

	if cfg.File.Enabled && cfg.File.Path == "" {
		errs = append(errs, ValidationError{Field: "log.file.path", Message: "must be specified when file logging is enabled"})
	}
	return errs
}

// Warnings lists valid but questionable settings
func Warnings(cfg *configtypes.Config) []string {
	var warnings []string
	if !cfg.Fetch.SSRFProtectionEnabled() {
		warnings = append(warnings, "fetch.ssrf_protection is disabled: the proxy will fetch private and loopback addresses")
	}
	if cfg.Rewrite.Target != "" && strings.EqualFold(cfg.Rewrite.Target, cfg.Rewrite.Replacement) {
		warnings = append(warnings, "rewrite.replacement equals rewrite.target: pages pass through unchanged")
	}
	return warnings
}
