package restserver

import (
	"net/http"

	"github.com/chrissnell/climateapi/internal/log"
	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id used to correlate a request with its log line
const RequestIDHeader = "X-Request-ID"

// requestLogMiddleware tags every request with an id and writes an access
// log entry once the handler returns.
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestID := req.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		m := httpsnoop.CaptureMetrics(next, w, req)

		log.LogHTTPRequest(log.HTTPLogEntry{
			Method:     req.Method,
			Path:       req.URL.Path,
			Status:     m.Code,
			Duration:   m.Duration,
			Size:       m.Written,
			RemoteAddr: req.RemoteAddr,
			UserAgent:  req.UserAgent(),
			RequestID:  requestID,
		})
	})
}
