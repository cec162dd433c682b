package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SlowRequest is the duration past which a request is logged at warn level
const SlowRequest = 2 * time.Second

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// Middleware tags each request with an id and records its timing under the matched route
// template
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(WithRequestID(r.Context(), requestID))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		d := time.Since(start)
		mc.Record(r.Method, path, wrapped.statusCode, d, start)

		if d > SlowRequest {
			zap.S().Warnw("Slow request detected",
				"requestId", requestID,
				"method", r.Method,
				"path", path,
				"duration", d,
				"status", wrapped.statusCode,
			)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
// It implements http.Hijacker to support WebSocket upgrades
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker to support WebSocket upgrades
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}
