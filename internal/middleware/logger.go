package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusRecorder captures the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logger returns a middleware that logs every request with a request id,
// method, path, status and duration.
func Logger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			w.Header().Set("X-Request-Id", requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			logger.Printf("%s %s %s -> %d (%s)", requestID[:8], r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
		})
	}
}
