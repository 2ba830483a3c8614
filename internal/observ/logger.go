// Package observ holds operational logging and phase timing.
package observ

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with kernc field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler logs text
// at warn level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	}
	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q (expected: debug|info|warn|error)", s)
	}
	return l, nil
}

// Open builds a Logger writing to w in the given format (text or json).
func Open(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "", "text":
		return NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (expected: text|json)", format)
	}
}

// NoopLogger discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// WithTarget tags every record with the target string.
func (l *Logger) WithTarget(target string) *Logger {
	return &Logger{Logger: l.Logger.With("target", target)}
}

// LogResolve logs how the effective target was chosen.
func (l *Logger) LogResolve(ctx context.Context, target, source string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "target resolution failed",
			"source", source,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "target resolved",
		"target", target,
		"source", source,
	)
}

// LogCompose logs a finished composition.
func (l *Logger) LogCompose(ctx context.Context, target string, modules int, cached bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "runtime composition failed",
			"target", target,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "runtime composed",
		"target", target,
		"modules", modules,
		"cached", cached,
	)
}

// LogCache logs a cache operation. Failures are warnings: the cache is
// advisory.
func (l *Logger) LogCache(ctx context.Context, op, key string, hit bool, err error) {
	if err != nil {
		l.WarnContext(ctx, "runtime cache "+op+" failed",
			"key", key,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "runtime cache "+op,
		"key", key,
		"hit", hit,
	)
}
