package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
)

// DynamicLogger wraps zap.Logger with per-output levels that can change at runtime
type DynamicLogger struct {
	*zap.Logger
	outputs    []*output
	configured configtypes.LogConfig
}

// output is one enabled sink with its own atomic level
type output struct {
	name  string
	level zap.AtomicLevel
	// configuredLevel is the level the output returns to after startup
	configuredLevel zapcore.Level
}

// NewLogger builds a logger that writes at the configured levels immediately.
func NewLogger(config configtypes.LogConfig) (*DynamicLogger, error) {
	return build(config, false)
}

// NewStartupLogger builds a logger that logs at INFO or lower until
// SwitchToConfiguredLevel is called, so startup is visible even when
// the configured level is WARN or ERROR.
func NewStartupLogger(config configtypes.LogConfig) (*DynamicLogger, error) {
	return build(config, true)
}

// NewDefaultLogger creates a console debug logger used before configuration is loaded
func NewDefaultLogger() (*DynamicLogger, error) {
	return NewLogger(configtypes.LogConfig{
		Level: configtypes.LogLevelDebug,
		Console: configtypes.ConsoleLogConfig{
			Enabled: true,
			Format:  configtypes.LogFormatConsole,
		},
	})
}

func build(config configtypes.LogConfig, startup bool) (*DynamicLogger, error) {
	globalLevel := parseLogLevel(config.Level)

	var cores []zapcore.Core
	var outputs []*output

	addCore := func(name, levelName, format string, ws zapcore.WriteSyncer) {
		configured := resolveLogLevel(levelName, globalLevel)
		initial := configured
		if startup && initial > zap.InfoLevel {
			initial = zap.InfoLevel
		}
		out := &output{name: name, level: zap.NewAtomicLevelAt(initial), configuredLevel: configured}
		outputs = append(outputs, out)
		cores = append(cores, zapcore.NewCore(createEncoder(format), ws, out.level))
	}

	if config.Console.Enabled {
		addCore("console", config.Console.Level, config.Console.Format, zapcore.Lock(os.Stdout))
	}

	if config.File.Enabled {
		if config.File.Path == "" {
			return nil, fmt.Errorf("file.path must be specified when file logging is enabled")
		}
		addCore("file", config.File.Level, config.File.Format, createFileWriter(config.File.Path, config.File.Rotation))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one log output (console or file) must be enabled")
	}

	core := cores[0]
	if len(cores) > 1 {
		core = zapcore.NewTee(cores...)
	}

	return &DynamicLogger{
		Logger:     zap.New(core),
		outputs:    outputs,
		configured: config,
	}, nil
}

// SwitchToConfiguredLevel moves every output to its configured level
func (dl *DynamicLogger) SwitchToConfiguredLevel() {
	dl.Info("Switching logger to configured level", zap.String("level", dl.configured.Level))
	for _, out := range dl.outputs {
		out.level.SetLevel(out.configuredLevel)
	}
}

// EnsureInfoLevelForShutdown lowers outputs above INFO so the shutdown sequence is logged
func (dl *DynamicLogger) EnsureInfoLevelForShutdown() {
	changed := false
	for _, out := range dl.outputs {
		if out.level.Level() > zap.InfoLevel {
			out.level.SetLevel(zap.InfoLevel)
			changed = true
		}
	}
	if changed {
		dl.Info("Switched to INFO level for shutdown visibility")
	}
}

// Level returns the current level of the named output ("console" or "file").
func (dl *DynamicLogger) Level(name string) (zapcore.Level, bool) {
	for _, out := range dl.outputs {
		if out.name == name {
			return out.level.Level(), true
		}
	}
	return zapcore.InvalidLevel, false
}

// parseLogLevel converts string level to zapcore.Level
func parseLogLevel(level string) zapcore.Level {
	switch level {
	case configtypes.LogLevelDebug:
		return zap.DebugLevel
	case configtypes.LogLevelWarn:
		return zap.WarnLevel
	case configtypes.LogLevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// resolveLogLevel prefers the output's own level and falls back to the global one
func resolveLogLevel(outputLevel string, globalLevel zapcore.Level) zapcore.Level {
	if outputLevel != "" {
		return parseLogLevel(outputLevel)
	}
	return globalLevel
}

func createEncoder(format string) zapcore.Encoder {
	if format == configtypes.LogFormatJSON {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	if format == configtypes.LogFormatText {
		// no color codes in files
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zapcore.NewConsoleEncoder(encoderConfig)
}

func createFileWriter(path string, rotation configtypes.RotationConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSize,
		MaxAge:     rotation.MaxAge,
		MaxBackups: rotation.MaxBackups,
		Compress:   rotation.Compress,
	})
}
