package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studymate-backend/internal/logger"
)

// AccessLog writes one structured line per request through log.
func AccessLog(log *logger.Logger) func(http.Handler) http.Handler {
	return chimiddleware.RequestLogger(&accessLogFormatter{log: log})
}

type accessLogFormatter struct {
	log *logger.Logger
}

func (f *accessLogFormatter) NewLogEntry(r *http.Request) chimiddleware.LogEntry {
	return &accessLogEntry{log: f.log.With(
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"request_id", r.Header.Get(RequestIDHeader),
	)}
}

type accessLogEntry struct {
	log *logger.Logger
}

func (e *accessLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	kv := []interface{}{"status", status, "bytes", bytes, "elapsed_ms", elapsed.Milliseconds()}
	switch {
	case status >= http.StatusInternalServerError:
		e.log.Error("request", kv...)
	case status >= http.StatusBadRequest:
		e.log.Warn("request", kv...)
	default:
		e.log.Info("request", kv...)
	}
}

func (e *accessLogEntry) Panic(v interface{}, stack []byte) {
	e.log.Error("request panicked", "panic", v, "stack", string(stack))
}
