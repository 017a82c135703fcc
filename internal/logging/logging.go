// Package logging builds the zap logger the CLI threads through a
// calculation.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity is the number of -v flags, or Quiet for -q.
type Verbosity int

const (
	Quiet   Verbosity = -1
	Normal  Verbosity = 0
	Verbose Verbosity = 1
	Debug   Verbosity = 2
)

// Level maps a verbosity to the lowest level that is logged.
func (v Verbosity) Level() zapcore.Level {
	switch {
	case v >= Debug:
		return zapcore.DebugLevel
	case v == Verbose:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// New returns a console logger writing to w. Quiet returns a no-op logger.
func New(v Verbosity, w io.Writer) *zap.Logger {
	if v <= Quiet {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(v.Level()))
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}
