// Package metrics publishes the service's Prometheus collectors on the
// default registry, exposed by the HTTP server at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upserts counts accepted cache upserts.
	Upserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifeline_cache_upserts_total",
		Help: "Number of person records written into the in-memory cache.",
	})

	// Persons tracks the size of the in-memory dataset.
	Persons = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lifeline_cache_persons",
		Help: "Number of person records currently held in memory.",
	})

	// Flushes counts background flush outcomes by status (written,
	// skipped, failed).
	Flushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifeline_flush_total",
		Help: "Number of flush cycles by outcome.",
	}, []string{"status"})

	// Lookups counts /api/person resolutions by source (cache, enriched,
	// empty).
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifeline_person_lookups_total",
		Help: "Number of person lookups by resolution source.",
	}, []string{"source"})

	// EnrichRequests counts calls to the enrichment service by status.
	EnrichRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifeline_enrich_requests_total",
		Help: "Number of enrichment requests by status.",
	}, []string{"status"})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lifeline_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)
