package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trackjob"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route", "method"},
	)
	TicketsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "document_tickets_issued_total", Help: "Signed URLs issued by direction."},
		[]string{"direction"},
	)
	UploadsConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "document_uploads_confirmed_total", Help: "Confirmed document uploads."},
	)
	DocumentsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_deleted_total", Help: "Deleted documents."},
	)
	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "storage_errors_total", Help: "Object storage provider failures by operation."},
		[]string{"operation"},
	)
	OrphansSwept = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "orphan_sweeps_total", Help: "Orphan sweep outcomes."},
		[]string{"outcome"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Requests rejected by the rate limiter by group."},
		[]string{"group"},
	)

	Registry = prometheus.NewRegistry()

	registerOnce sync.Once
)

// RegisterCollectors registers every collector on reg.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequests,
		HTTPDuration,
		TicketsIssued,
		UploadsConfirmed,
		DocumentsDeleted,
		StorageErrors,
		OrphansSwept,
		RateLimitRejected,
	)
}

// Default registers the collectors on Registry exactly once and returns it.
func Default() *prometheus.Registry {
	registerOnce.Do(func() {
		RegisterCollectors(Registry)
		Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	return Registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Default(), promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
