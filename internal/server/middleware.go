package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeanpaul/lifeline/internal/metrics"
)

// withCORS allows the frontend to call the API from a different port.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// withLogging tags each request with an id, logs its outcome, and feeds
// the latency histogram. Static file requests share one "static" route
// label to keep metric cardinality bounded.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if !strings.HasPrefix(route, "/api/") && route != "/healthz" && route != "/metrics" {
			route = "static"
		}
		elapsed := time.Since(start)
		metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())
		s.log.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
