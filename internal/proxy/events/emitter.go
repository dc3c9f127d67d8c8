package events

import (
	"go.uber.org/zap"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
)

// EventEmitter defines the interface for event logging backends.
// Implementations should be fire-and-forget, non-blocking.
type EventEmitter interface {
	// Emit sends an event. Errors are logged internally, never returned.
	Emit(event *RequestEvent)

	// Close gracefully shuts down the emitter.
	Close() error
}

// NoopEmitter is used when event logging is disabled.
type NoopEmitter struct{}

func (n *NoopEmitter) Emit(event *RequestEvent) {}

func (n *NoopEmitter) Close() error { return nil }

// NewEmitter returns the emitter configured by cfg, or a NoopEmitter when
// event logging is absent or disabled.
func NewEmitter(cfg *configtypes.EventLoggingConfig, logger *zap.Logger) (EventEmitter, error) {
	if cfg == nil || !cfg.File.Enabled {
		return &NoopEmitter{}, nil
	}
	return NewFileEmitter(cfg.File, logger)
}
