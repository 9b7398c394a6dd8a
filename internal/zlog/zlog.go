// Package zlog provides the structured logger used throughout zonecore,
// mapping the four log levels the core's error-handling design assumes
// (debug, notice, warning, critical) onto zap's level set.
package zlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger with the level names zonecore's components
// reason about, plus a fixed "component" field.
type Logger struct {
	z *zap.Logger
}

var base *zap.Logger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	base = l
}

// Component returns a Logger tagged with the given component name, mirroring
// the daemon's bracketed-prefix log lines.
func Component(name string) *Logger {
	return &Logger{z: base.With(zap.String("component", name))}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.z.Debug(msg, fields...)
}

// Notice logs at Info level with an explicit level_name field; zap has no
// native Notice level and Icinga2's LogNotice sits strictly between Info
// and Warning.
func (l *Logger) Notice(msg string, fields ...zap.Field) {
	l.z.Info(msg, append(fields, zap.String("level_name", "notice"))...)
}

func (l *Logger) Warning(msg string, fields ...zap.Field) {
	l.z.Warn(msg, fields...)
}

func (l *Logger) Critical(msg string, fields ...zap.Field) {
	l.z.Error(msg, fields...)
}

// Sync flushes any buffered log entries; called once at shutdown.
func Sync() error {
	return base.Sync()
}
