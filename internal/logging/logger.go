// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a JSON logger writing to stdout at the given level.
// Unknown levels fall back to error.
func NewLogger(l string) *Logger {
	logger := new(Logger)

	c := zap.NewProductionConfig()
	c.Level.SetLevel(levelFromString(l))
	c.EncoderConfig.TimeKey = "@timestamp"
	c.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	c.OutputPaths = []string{"stdout"}

	lgr, err := c.Build()
	if err != nil {
		panic(err)
	}

	logger.SugaredLogger = lgr.Sugar()
	logger.security = newSecurityLogger(lgr.Named("security"))

	return logger
}

// NewNoopLogger returns a logger discarding every entry.
func NewNoopLogger() *Logger {
	logger := new(Logger)

	lgr := zap.NewNop()
	logger.SugaredLogger = lgr.Sugar()
	logger.security = newSecurityLogger(lgr)

	return logger
}

func levelFromString(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	default:
		return zap.ErrorLevel
	}
}
