// Package logging wraps zap with a runtime-adjustable level and target.
package logging

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level and encoding.
type Config struct {
	Level  string
	Format string
}

// Logger carries the zap logger together with the control state shared by
// all of its children.
type Logger struct {
	*zap.Logger
	ctl *control
}

// New builds a logger writing to stderr.
func New(cfg Config) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(defaultString(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch defaultString(cfg.Format, "console") {
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encoderCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("log format must be 'console' or 'json', got %q", cfg.Format)
	}

	ctl := newControl(lvl)
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), ctl.atom)
	return &Logger{Logger: zap.New(core), ctl: ctl}, nil
}

// Wrap adapts an existing zap logger (tests use an observer core). The
// control state only tracks the level; filtering stays with the given core.
func Wrap(z *zap.Logger) *Logger {
	return &Logger{Logger: z, ctl: newControl(zapcore.DebugLevel)}
}

// Nop discards everything.
func Nop() *Logger { return Wrap(zap.NewNop()) }

// Named returns a child logger sharing the same control state.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), ctl: l.ctl}
}

// With returns a child logger with constant fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), ctl: l.ctl}
}

// Sync flushes buffered entries, ignoring the harmless errors stderr returns.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	var errno syscall.Errno
	if err != nil && errors.As(err, &errno) && (errno == syscall.EINVAL || errno == syscall.ENOTTY) {
		return nil
	}
	return err
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
