// Package dlogger exposes a simple zap logger, with log levels
package dlogger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LogLevelInfo sets the log level to info
	LogLevelInfo = "info"

	// LogLevelDebug sets the log level to debug
	LogLevelDebug = "debug"

	// LogLevelNone sets logger to no logging
	LogLevelNone = "none"

	// EncodingJSON renders log entries as JSON lines
	EncodingJSON = "json"

	// EncodingConsole renders log entries for humans
	EncodingConsole = "console"
)

// GetLogger returns a zap logger with the specified level, emitting JSON lines on stderr
func GetLogger(logLevel string) (*zap.Logger, error) {
	return getLogger(logLevel, EncodingJSON)
}

// GetConsoleLogger returns a zap logger with the specified level, emitting human-readable lines on stderr
func GetConsoleLogger(logLevel string) (*zap.Logger, error) {
	return getLogger(logLevel, EncodingConsole)
}

func getLogger(logLevel, encoding string) (*zap.Logger, error) {
	if logLevel == LogLevelNone {
		return zap.NewNop(), nil
	}
	zapConfig := zap.NewProductionConfig()
	var lvl zapcore.Level
	err := lvl.UnmarshalText([]byte(logLevel))
	if err != nil {
		return nil, err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	zapConfig.Encoding = encoding
	if encoding == EncodingConsole {
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zapConfig.DisableStacktrace = true
	}
	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}
