package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(format string) (*AgentLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(&Config{Level: slog.LevelDebug, Format: format, Output: &buf})
	return logger, &buf
}

func TestAgentLogger_ContextualAttributes(t *testing.T) {
	logger, buf := newBufferedLogger("text")
	logger.WithComponent("agent").WithSession("s-123").Info("processing input")

	out := buf.String()
	assert.Contains(t, out, "component=agent")
	assert.Contains(t, out, "session_id=s-123")
	assert.Contains(t, out, "processing input")
}

func TestAgentLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferedLogger("json")
	logger.Info("hello", "key", "value")

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	assert.Contains(t, out, `"key":"value"`)
}

func TestAgentLogger_LogToolCall(t *testing.T) {
	logger, buf := newBufferedLogger("text")

	logger.LogToolCall("get_weather", 42*time.Millisecond, true, nil)
	assert.Contains(t, buf.String(), "tool execution completed")

	buf.Reset()
	logger.LogToolCall("get_weather", time.Millisecond, false, errors.New("timeout"))
	out := buf.String()
	assert.Contains(t, out, "tool execution failed")
	assert.Contains(t, out, "timeout")
}

func TestAgentLogger_LogRetrievalTruncatesQuery(t *testing.T) {
	logger, buf := newBufferedLogger("text")

	long := strings.Repeat("x", 200)
	logger.LogRetrieval(long, 0, errors.New("embedding failed"))

	out := buf.String()
	assert.Contains(t, out, "memory retrieval failed")
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "...")
}

func TestNoOpLoggerImplementsInterface(t *testing.T) {
	var logger Logger = NoOpLogger{}
	require.NotPanics(t, func() {
		logger.Debug("a")
		logger.Info("b")
		logger.Warn("c")
		logger.Error("d")
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
}
