// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Dividend-Income-Projector/internal/logging"
)

// Logger returns a middleware that logs every request with its status and
// duration, and makes a request-scoped logger available via logging.FromContext.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logging.L
	}
	// Sanitize user-supplied values to prevent log injection: strip CR/LF before logging.
	sanitize := strings.NewReplacer("\n", "", "\r", "").Replace

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger := base
			if id := chimiddleware.GetReqID(r.Context()); id != "" {
				logger = logger.With("request_id", id)
			}

			// Create a response writer wrapper to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r.WithContext(logging.ToContext(r.Context(), logger)))

			logger.Info("request",
				"method", sanitize(r.Method),
				"path", sanitize(r.URL.Path),
				"status", wrapped.statusCode,
				"duration", time.Since(start),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
