// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LogFormatter adapts the logger to chi's request logging middleware.
// Entries are only emitted at debug level.
type LogFormatter struct {
	logger LoggerInterface
}

func (f *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &LogEntry{
		logger: f.logger,
		method: r.Method,
		path:   r.URL.Path,
		reqID:  middleware.GetReqID(r.Context()),
	}
}

type LogEntry struct {
	logger LoggerInterface

	method string
	path   string
	reqID  string
}

func (e *LogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	e.logger.Debugf(
		"request_id=%s method=%s path=%s status=%d bytes=%d elapsed=%s",
		e.reqID, e.method, e.path, status, bytes, elapsed,
	)
}

func (e *LogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Errorf("request_id=%s panic=%v stack=%s", e.reqID, v, stack)
}

func NewLogFormatter(logger LoggerInterface) *LogFormatter {
	return &LogFormatter{logger: logger}
}
