// Package logging provides a thin abstraction over slog so the rest of the
// module depends on a minimal Logger interface while applications can plug
// in any structured logger. It also provides AgentLogger, a contextual
// wrapper with domain helpers for tool, model and retrieval events.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger is the minimal logging interface consumed throughout mindkeep.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement Logger.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from an existing *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger { return &SlogAdapter{Logger: logger} }

// Default returns a Logger backed by slog.Default().
func Default() Logger { return NewSlogAdapter(slog.Default()) }

// NoOpLogger discards all log messages. Useful for tests or when logging is
// disabled.
type NoOpLogger struct{}

// Debug discards the message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards the message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards the message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards the message.
func (NoOpLogger) Error(string, ...any) {}

// Config configures construction of an AgentLogger.
type Config struct {
	Level     slog.Level
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
	SessionID string
}

// DefaultConfig returns a baseline text handler at info level on stdout.
func DefaultConfig() *Config {
	return &Config{Level: slog.LevelInfo, Format: "text", Output: os.Stdout}
}

// AgentLogger wraps slog with contextual attributes (component, session) and
// domain helpers. Cheap to copy via the With* methods.
type AgentLogger struct {
	logger    *slog.Logger
	component string
	sessionID string
}

// New builds an AgentLogger from a config (or defaults when nil).
func New(cfg *Config) *AgentLogger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return &AgentLogger{logger: slog.New(handler), component: cfg.Component, sessionID: cfg.SessionID}
}

// WithComponent returns a copy tagged with a logical component name.
func (l *AgentLogger) WithComponent(component string) *AgentLogger {
	nl := *l
	nl.component = component
	return &nl
}

// WithSession returns a copy tagged with a session identifier.
func (l *AgentLogger) WithSession(sessionID string) *AgentLogger {
	nl := *l
	nl.sessionID = sessionID
	return &nl
}

func (l *AgentLogger) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(extra)+2)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.sessionID != "" {
		out = append(out, slog.String("session_id", l.sessionID))
	}
	return append(out, extra...)
}

func (l *AgentLogger) log(level slog.Level, msg string, args []any) {
	logger := l.logger
	if l.component != "" {
		logger = logger.With("component", l.component)
	}
	if l.sessionID != "" {
		logger = logger.With("session_id", l.sessionID)
	}
	logger.Log(context.Background(), level, msg, args...)
}

// Debug logs at debug level.
func (l *AgentLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }

// Info logs at info level.
func (l *AgentLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args) }

// Warn logs at warn level.
func (l *AgentLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args) }

// Error logs at error level.
func (l *AgentLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

// LogToolCall records execution details for a tool invocation.
func (l *AgentLogger) LogToolCall(tool string, dur time.Duration, success bool, err error) {
	attrs := l.attrs(
		slog.String("tool", tool),
		slog.Duration("duration", dur),
		slog.Bool("success", success),
	)
	level, msg := slog.LevelInfo, "tool execution completed"
	if !success {
		level, msg = slog.LevelError, "tool execution failed"
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogModelCall records model call latency, token usage and success.
func (l *AgentLogger) LogModelCall(model string, tokens int, dur time.Duration, err error) {
	attrs := l.attrs(
		slog.String("model", model),
		slog.Int("tokens", tokens),
		slog.Duration("duration", dur),
	)
	level, msg := slog.LevelInfo, "model call completed"
	if err != nil {
		level, msg = slog.LevelError, "model call failed"
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogRetrieval records a memory retrieval attempt. Retrieval is best-effort;
// failures are logged here and never surfaced to the caller.
func (l *AgentLogger) LogRetrieval(query string, results int, err error) {
	attrs := l.attrs(
		slog.String("query", truncate(query, 80)),
		slog.Int("results", results),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "memory retrieval failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "memory retrieval completed", attrs...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
