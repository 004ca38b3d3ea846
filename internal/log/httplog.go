package log

import (
	"time"
)

// HTTPLogEntry represents an HTTP request/response log entry
type HTTPLogEntry struct {
	Method     string
	Path       string
	Status     int
	Duration   time.Duration
	Size       int64
	RemoteAddr string
	UserAgent  string
	RequestID  string
}

// LogHTTPRequest writes a structured access log line. Server errors are
// logged at error level so they stand out in production output.
func LogHTTPRequest(e HTTPLogEntry) {
	fields := []interface{}{
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"duration_ms", e.Duration.Milliseconds(),
		"size", e.Size,
		"remote_addr", e.RemoteAddr,
		"user_agent", e.UserAgent,
		"request_id", e.RequestID,
	}

	if e.Status >= 500 {
		GetSugaredLogger().Errorw("http request", fields...)
		return
	}
	GetSugaredLogger().Infow("http request", fields...)
}
