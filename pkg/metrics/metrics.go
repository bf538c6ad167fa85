// Package metrics holds the Prometheus collectors for the extraction pipeline,
// the catalog cache, assessments and the HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assessment results recorded on AssessmentsTotal.
const (
	AssessmentOK      = "ok"
	AssessmentInvalid = "invalid"
	AssessmentError   = "error"
)

var (
	RequirementsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dpdp_requirements_inserted_total",
		Help: "Requirements inserted by the extraction pipeline.",
	})
	RequirementsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dpdp_requirements_skipped_total",
		Help: "Candidate requirements skipped as duplicates or too short.",
	})

	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpdp_assessments_total",
			Help: "Assessments run, by result.",
		},
		[]string{"result"},
	)
	ProhibitedActivityTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dpdp_prohibited_activity_total",
		Help: "Assessments that raised a prohibited-activity warning.",
	})
	GapCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dpdp_gap_count",
		Help:    "Number of open gaps per assessment.",
		Buckets: []float64{0, 1, 2, 5, 10, 15, 20, 30, 50, 100},
	})

	CatalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dpdp_catalog_cache_hits_total",
		Help: "Requirement catalog cache hits.",
	})
	CatalogCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dpdp_catalog_cache_misses_total",
		Help: "Requirement catalog cache misses.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpdp_http_requests_total",
			Help: "HTTP requests handled, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dpdp_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
