// Package logging wraps zap the way gma1k-podtrace's internal/logger does:
// package-level Debug/Info/Warn/Error functions over a global JSON logger,
// level controlled by an environment variable.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

var (
	log         *zap.Logger
	atomicLevel zap.AtomicLevel
)

func init() {
	atomicLevel = zap.NewAtomicLevelAt(parseLevel(getLevel()))

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		atomicLevel,
	)

	log = zap.New(core, zap.AddCaller())
}

func getLevel() string {
	if v := os.Getenv("OSUWATCH_LOG_LEVEL"); v != "" {
		return v
	}
	return defaultLevel
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLevel changes the active log level at runtime.
func SetLevel(s string) {
	atomicLevel.SetLevel(parseLevel(s))
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }

// Logger returns the underlying zap logger for callers that need to build a
// scoped child (e.g. With(zap.Int("pid", pid))).
func Logger() *zap.Logger {
	return log
}

// Sync flushes any buffered log entries; call once from main before exit.
func Sync() {
	_ = log.Sync()
}
