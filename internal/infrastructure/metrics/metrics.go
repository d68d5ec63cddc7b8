// Package metrics exposes prometheus collectors for the rate cache and HTTP layer
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moneycalc"

// Metrics holds every collector registered by the application
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ConversionsTotal    *prometheus.CounterVec

	Cache *CacheMetrics
}

// CacheMetrics implements cache.Metrics on top of prometheus collectors
type CacheMetrics struct {
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Stores        prometheus.Counter
	FetchFailures prometheus.Counter
	Evictions     *prometheus.CounterVec
	Entries       prometheus.Gauge
}

// NewMetrics registers all collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of currency conversions by outcome",
			},
			[]string{"outcome"},
		),

		Cache: &CacheMetrics{
			Hits: factory.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rate_cache",
				Name:      "hits_total",
				Help:      "Lookups served from the rate cache",
			}),
			Misses: factory.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rate_cache",
				Name:      "misses_total",
				Help:      "Lookups that had to call the rate source",
			}),
			Stores: factory.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rate_cache",
				Name:      "stores_total",
				Help:      "Fresh rates stored in the cache",
			}),
			FetchFailures: factory.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rate_cache",
				Name:      "fetch_failures_total",
				Help:      "Rate source calls that failed",
			}),
			Evictions: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rate_cache",
				Name:      "evictions_total",
				Help:      "Entries removed from the cache by reason",
			}, []string{"reason"}),
			Entries: factory.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "rate_cache",
				Name:      "entries",
				Help:      "Current number of cached currency pairs",
			}),
		},
	}
}

func (m *CacheMetrics) Hit()         { m.Hits.Inc() }
func (m *CacheMetrics) Miss()        { m.Misses.Inc() }
func (m *CacheMetrics) Store()       { m.Stores.Inc() }
func (m *CacheMetrics) FetchFailed() { m.FetchFailures.Inc() }

func (m *CacheMetrics) Swept(count int) {
	m.Evictions.WithLabelValues("expired").Add(float64(count))
}

func (m *CacheMetrics) Invalidated(count int) {
	m.Evictions.WithLabelValues("invalidated").Add(float64(count))
}

func (m *CacheMetrics) Size(size int) {
	m.Entries.Set(float64(size))
}

// ConversionRecorded counts a conversion with the given outcome
func (m *Metrics) ConversionRecorded(outcome string) {
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}
