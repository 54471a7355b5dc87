// Package mlog provides the structured logger shared by the connector
// packages. It wraps zap with the small set of knobs a library needs:
// a safe nil-free default, a no-op sink for tests, and an optional
// caller-configured logger.
package mlog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig configures a logger built by NewLogger.
type LogConfig struct {
	// Level, see zapcore.ParseLevel. Empty defaults to "info".
	Level string

	// File that the logger writes to. Default is stderr.
	File string

	// Production enables json output.
	Production bool

	// OmitTime omits the time key in each entry.
	OmitTime bool
}

var (
	stderr = zapcore.Lock(os.Stderr)

	lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	l   = newLogger(zapcore.NewConsoleEncoder, defaultEncoderConfig(), lvl, stderr)

	nop = zap.NewNop()
)

// NewLogger builds a *zap.Logger from a LogConfig.
func NewLogger(lc *LogConfig) (*zap.Logger, error) {
	level := zap.InfoLevel
	if lc.Level != "" {
		var err error
		level, err = zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}

	var out zapcore.WriteSyncer
	if lc.File != "" {
		f, _, err := zap.Open(lc.File)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = zapcore.Lock(f)
	} else {
		out = stderr
	}

	ec := defaultEncoderConfig()
	if lc.OmitTime {
		ec.TimeKey = ""
	}

	if lc.Production {
		return newLogger(zapcore.NewJSONEncoder, ec, level, out), nil
	}
	return newLogger(zapcore.NewConsoleEncoder, ec, level, out), nil
}

func newLogger(
	encoderFactory func(config zapcore.EncoderConfig) zapcore.Encoder,
	encoderCfg zapcore.EncoderConfig,
	lvl zapcore.LevelEnabler,
	out zapcore.WriteSyncer,
) *zap.Logger {
	core := zapcore.NewCore(encoderFactory(encoderCfg), out, lvl)
	return zap.New(core)
}

// L returns the process-default logger.
func L() *zap.Logger {
	return l
}

// SetLevel adjusts the process-default logger's level.
func SetLevel(level zapcore.Level) {
	lvl.SetLevel(level)
}

// Nop returns a logger that discards everything. Components use this
// when given a nil *zap.Logger so call sites never need a nil check.
func Nop() *zap.Logger {
	return nop
}

// OrNop returns l, or the no-op logger if l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return nop
	}
	return l
}

func defaultEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
