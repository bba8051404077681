// File: internal/observability/logger_test.go
package observability

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/meetpilot/internal/config"
)

// memSyncer is an in-memory WriteSyncer capturing console output.
type memSyncer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (m *memSyncer) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Write(p)
}

func (m *memSyncer) Sync() error { return nil }

func (m *memSyncer) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

func TestInitialize_WritesNamedOutput(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSyncer{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "meetpilot-test",
	}, zapcore.Lock(sink))

	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Info("hello from test")
	require.NoError(t, logger.Sync())

	out := sink.String()
	assert.Contains(t, out, "hello from test")
	assert.Contains(t, out, "meetpilot-test")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memSyncer{}
	second := &memSyncer{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "a"}, zapcore.Lock(first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "b"}, zapcore.Lock(second))

	GetLogger().Info("routed to first sink")
	_ = GetLogger().Sync()

	assert.Contains(t, first.String(), "routed to first sink")
	assert.Empty(t, second.String())
}

func TestGetLogger_FallbackBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// Must not panic even though Initialize never ran.
	logger.Debug("fallback logger in use")
}

func TestInitialize_InvalidLevelDefaultsToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSyncer{}
	Initialize(config.LoggerConfig{Level: "nonsense", Format: "json", ServiceName: "x"}, zapcore.Lock(sink))

	GetLogger().Debug("suppressed at info level")
	GetLogger().Info("visible at info level")
	_ = GetLogger().Sync()

	out := sink.String()
	assert.NotContains(t, out, "suppressed at info level")
	assert.Contains(t, out, "visible at info level")
}
