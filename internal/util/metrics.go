package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_searches_total",
		Help: "Total number of catalog searches served",
	})

	CatalogSearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_search_latency_seconds",
		Help:    "Latency of catalog search queries",
		Buckets: prometheus.DefBuckets,
	})

	ListingsAttachedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listings_attached_total",
		Help: "Total number of listings attached to existing catalog items",
	})

	DishesProposedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dishes_proposed_total",
		Help: "Total number of new dish proposals submitted",
	})

	CatalogDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_decisions_total",
		Help: "Total number of moderation decisions applied",
	}, []string{"decision"})

	ListingsFannedOutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listings_fanned_out_total",
		Help: "Total number of listings updated by decision fan-out",
	})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_failures_total",
		Help: "Total number of rejected workflow inputs",
	}, []string{"operation"})

	CatalogCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of catalog item cache hits",
	})

	CatalogCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of catalog item cache misses",
	})

	ImageUploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "image_uploads_total",
		Help: "Total number of dish images uploaded",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
