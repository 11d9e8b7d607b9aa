// Package server exposes the timeline cache over HTTP: dataset and name
// reads, on-demand enrichment of unknown persons, health, metrics, and
// the static frontend.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeanpaul/lifeline/internal/cache"
	"github.com/jeanpaul/lifeline/internal/enrich"
	"github.com/jeanpaul/lifeline/internal/metrics"
	"github.com/jeanpaul/lifeline/internal/timeline"
)

type Server struct {
	cache     *cache.Cache
	resolver  enrich.Resolver
	fallback  func() timeline.Dataset
	staticDir string
	log       *slog.Logger
}

func New(c *cache.Cache, r enrich.Resolver, staticDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cache:     c,
		resolver:  r,
		fallback:  timeline.Fallback,
		staticDir: staticDir,
		log:       logger,
	}
}

// Handler returns the fully assembled route tree with CORS, request
// logging, and metrics middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/people", s.handlePeople)
	mux.HandleFunc("/api/person", s.handlePerson)
	mux.HandleFunc("/api/names", s.handleNames)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return s.withLogging(withCORS(mux))
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.cache.DatasetOrFallback(s.fallback()))
}

// handlePerson serves one timeline by exact name match, falling back to
// the enrichment service for unknown names. Resolutions that produce at
// least one event are cached; empty results are returned as an uncached
// placeholder so negative results never stick.
func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	if p, ok := s.cache.Find(name, s.fallback()); ok {
		metrics.Lookups.WithLabelValues("cache").Inc()
		writeJSON(w, http.StatusOK, p)
		return
	}

	p, err := s.resolver.Resolve(r.Context(), name)
	if err != nil {
		metrics.EnrichRequests.WithLabelValues("error").Inc()
		s.log.Error("enrichment failed", "name", name, "err", err)
		p = enrich.EmptyRecord(name)
	} else {
		metrics.EnrichRequests.WithLabelValues("ok").Inc()
	}

	if len(p.Events) > 0 {
		s.cache.Upsert(p)
		metrics.Lookups.WithLabelValues("enriched").Inc()
		s.log.Info("cached enriched person", "name", name, "events", len(p.Events))
	} else {
		metrics.Lookups.WithLabelValues("empty").Inc()
		p = enrich.EmptyRecord(name)
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Names())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"persons": s.cache.Len(),
		"names":   len(s.cache.Names()),
		"dirty":   s.cache.Dirty(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	// Non-ASCII text goes out verbatim; the frontend renders Chinese.
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
