package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
)

func readEvents(t *testing.T, path string) []RequestEvent {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []RequestEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e RequestEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestNewFileEmitter_CreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "dir", "events.log")

	emitter, err := NewFileEmitter(configtypes.EventFileConfig{Enabled: true, Path: nestedPath}, zap.NewNop())
	require.NoError(t, err)
	defer emitter.Close()

	info, err := os.Stat(filepath.Dir(nestedPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFileEmitter_RequiresPath(t *testing.T) {
	emitter, err := NewFileEmitter(configtypes.EventFileConfig{Enabled: true}, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, emitter)
}

func TestNewFileEmitter_RotationDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")

	emitter, err := NewFileEmitter(configtypes.EventFileConfig{
		Enabled:  true,
		Path:     path,
		Rotation: configtypes.RotationConfig{MaxSize: 5, Compress: true},
	}, zap.NewNop())
	require.NoError(t, err)
	defer emitter.Close()

	assert.Equal(t, 5, emitter.writer.MaxSize)
	assert.Equal(t, DefaultMaxAge, emitter.writer.MaxAge)
	assert.Equal(t, DefaultMaxBackups, emitter.writer.MaxBackups)
	assert.True(t, emitter.writer.Compress)
}

func TestFileEmitter_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	emitter, err := NewFileEmitter(configtypes.EventFileConfig{Enabled: true, Path: path}, zap.NewNop())
	require.NoError(t, err)

	emitter.Emit(BuildRequestEvent(RequestInfo{RequestID: "a", URL: "https://example.com"}, Outcome{StatusCode: 200, Title: "Fale"}, "i1"))
	emitter.Emit(BuildRequestEvent(RequestInfo{RequestID: "b"}, Outcome{StatusCode: 400, ErrorType: ErrorTypeMissingURL}, "i1"))
	require.NoError(t, emitter.Close())

	events := readEvents(t, path)
	require.Len(t, events, 2)

	assert.Equal(t, "a", events[0].RequestID)
	assert.Equal(t, EventTypeRewrite, events[0].EventType)
	assert.Equal(t, "Fale", events[0].Title)
	assert.Equal(t, HashURL("https://example.com"), events[0].URLHash)

	assert.Equal(t, "b", events[1].RequestID)
	assert.Equal(t, EventTypeError, events[1].EventType)
	assert.Equal(t, 400, events[1].StatusCode)
}

func TestNewEmitter(t *testing.T) {
	t.Run("nil config is noop", func(t *testing.T) {
		e, err := NewEmitter(nil, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &NoopEmitter{}, e)
		e.Emit(&RequestEvent{})
		assert.NoError(t, e.Close())
	})

	t.Run("disabled file is noop", func(t *testing.T) {
		e, err := NewEmitter(&configtypes.EventLoggingConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &NoopEmitter{}, e)
	})

	t.Run("enabled file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "events.log")
		e, err := NewEmitter(&configtypes.EventLoggingConfig{
			File: configtypes.EventFileConfig{Enabled: true, Path: path},
		}, zap.NewNop())
		require.NoError(t, err)
		defer e.Close()
		assert.IsType(t, &FileEmitter{}, e)
	})
}
