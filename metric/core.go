package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the server-level metrics shared by all components
type Metrics struct {
	// GraphQL gateway
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram

	// Store round-trips that missed the resolver cache
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// Health
	HealthStatus *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "graphql",
				Name:      "queries_total",
				Help:      "Total number of GraphQL requests by outcome",
			},
			[]string{"status"},
		),

		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "graphql",
				Name:      "query_duration_seconds",
				Help:      "GraphQL request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Store operations issued on resolver cache misses",
			},
			[]string{"operation", "result"},
		),

		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Store operation duration in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),

		HealthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"component"},
		),
	}
}

func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.QueriesTotal,
		c.QueryDuration,
		c.StoreOperations,
		c.StoreDuration,
		c.HealthStatus,
	}
}

// RecordQuery records one GraphQL request
func (c *Metrics) RecordQuery(status string, duration time.Duration) {
	c.QueriesTotal.WithLabelValues(status).Inc()
	c.QueryDuration.Observe(duration.Seconds())
}

// RecordStoreOperation records one store round-trip
func (c *Metrics) RecordStoreOperation(operation string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.StoreOperations.WithLabelValues(operation, result).Inc()
	c.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHealthStatus updates the health gauge for a component
func (c *Metrics) RecordHealthStatus(component string, level int) {
	c.HealthStatus.WithLabelValues(component).Set(float64(level))
}
