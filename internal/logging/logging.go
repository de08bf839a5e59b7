// Package logging provides the component-scoped structured logger used across
// the storefront service. It keeps the LoggerV2/Fields calling convention of
// the shared acme-shop logging package and writes through zap.
package logging

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields holds structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

var (
	mu    sync.RWMutex
	base  *zap.Logger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the process-wide logger. Format is "json" or "console".
// It is safe to call more than once; the last call wins.
func Init(lvl, format string) error {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	if err := SetLevel(lvl); err != nil {
		return err
	}
	cfg.Level = level

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	Replace(l)
	return nil
}

// Replace swaps the process-wide zap logger. Loggers created afterwards use it.
func Replace(l *zap.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

// SetLevel changes the minimum enabled level at runtime.
func SetLevel(lvl string) error {
	if lvl == "" {
		return nil
	}
	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(lvl)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", lvl, err)
	}
	level.SetLevel(parsed)
	return nil
}

func root() *zap.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		built, err := cfg.Build()
		if err != nil {
			built = zap.NewNop()
		}
		base = built
	}
	return base
}

// Sync flushes buffered entries of the process-wide logger.
func Sync() error {
	return root().Sync()
}

// LoggerV2 is a structured logger bound to a component name.
type LoggerV2 struct {
	z *zap.Logger
}

// NewLoggerV2 returns a logger tagged with the given component.
func NewLoggerV2(component string) *LoggerV2 {
	return &LoggerV2{z: root().With(zap.String("component", component))}
}

// NewNop returns a logger that discards everything.
func NewNop() *LoggerV2 {
	return &LoggerV2{z: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *LoggerV2 {
	return &LoggerV2{z: z}
}

// With returns a child logger that always carries fields.
func (l *LoggerV2) With(fields Fields) *LoggerV2 {
	return &LoggerV2{z: l.z.With(toZap(fields)...)}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.z.Debug(msg, toZap(fields...)...)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.z.Info(msg, toZap(fields...)...)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.z.Warn(msg, toZap(fields...)...)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.z.Error(msg, toZap(fields...)...)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.z.Fatal(msg, toZap(fields...)...)
}

// Info logs through the process-wide logger.
func Info(msg string, fields ...Fields) {
	root().Info(msg, toZap(fields...)...)
}

// Error logs through the process-wide logger.
func Error(msg string, fields ...Fields) {
	root().Error(msg, toZap(fields...)...)
}

// Infof logs a formatted message through the process-wide logger.
func Infof(format string, args ...interface{}) {
	root().Sugar().Infof(format, args...)
}

func toZap(fields ...Fields) []zap.Field {
	n := 0
	for _, f := range fields {
		n += len(f)
	}
	if n == 0 {
		return nil
	}

	out := make([]zap.Field, 0, n)
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, zap.Any(k, f[k]))
		}
	}
	return out
}
