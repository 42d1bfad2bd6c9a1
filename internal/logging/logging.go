// Package logging builds the slog logger shared by the CLI and checkers
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// EnvLevel names the variables consulted for the log level, in order
var EnvLevel = []string{"TRUSTGATE_LOG_LEVEL", "LOG_LEVEL"}

// Options configures New
type Options struct {
	Level  string // TRACE, DEBUG, INFO, WARN, ERROR; empty reads EnvLevel
	Format string // "text" (default) or "json"
	Output io.Writer
}

// New creates a logger. An unparseable level falls back to INFO and is
// reported through the returned error alongside a usable logger.
func New(opts Options) (*slog.Logger, *slog.LevelVar, error) {
	levelStr := opts.Level
	if levelStr == "" {
		levelStr = levelFromEnv()
	}

	var levelErr error
	level := new(slog.LevelVar)
	if levelStr != "" {
		parsed, err := ParseLevel(levelStr)
		levelErr = err
		level.Set(parsed)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelName,
	}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	case "", "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("unknown log format: %s", opts.Format)
	}

	return slog.New(handler), level, levelErr
}

// ParseLevel converts a level name to slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s (defaulting to INFO)", s)
	}
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func levelFromEnv() string {
	for _, name := range EnvLevel {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// replaceLevelName prints TRACE instead of DEBUG-4
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
