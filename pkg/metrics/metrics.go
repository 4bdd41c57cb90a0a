package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge
	RateLimited     prometheus.Counter

	DiagnosesTotal      *prometheus.CounterVec
	ModelFallbacksTotal *prometheus.CounterVec
	ModelDuration       prometheus.Histogram
	ReferralsTotal      prometheus.Counter
	InteractionsFound   *prometheus.CounterVec
	PatientsRegistered  prometheus.Counter

	DBQueryDuration *prometheus.HistogramVec

	HistoryEntriesTotal  prometheus.Counter
	HistoryBufferDropped prometheus.Counter

	registry *prometheus.Registry
}

// NewCollector registers all metrics on a fresh registry so that tests and
// multiple servers in one process do not collide on the global one.
func NewCollector(serviceName string) *Collector {
	ns := strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10, 30},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),

		DiagnosesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "diagnosis",
			Name:      "total",
			Help:      "Diagnoses produced, by source (model or rules).",
		}, []string{"source"}),

		ModelFallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "diagnosis",
			Name:      "model_fallbacks_total",
			Help:      "Times the rule engine replaced the model, by reason.",
		}, []string{"reason"}),

		ModelDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "diagnosis",
			Name:      "model_duration_seconds",
			Help:      "Latency of generative model calls, successful or not.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}),

		ReferralsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "diagnosis",
			Name:      "referrals_total",
			Help:      "Diagnoses that recommended a specialist referral.",
		}),

		InteractionsFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "pharmacy",
			Name:      "interactions_found_total",
			Help:      "Drug interactions reported, by severity.",
		}, []string{"severity"}),

		PatientsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "patients_registered_total",
			Help:      "Total patient registrations, including re-registrations.",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation", "table"}),

		HistoryEntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "history",
			Name:      "entries_total",
			Help:      "Diagnosis history entries written.",
		}),

		HistoryBufferDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "history",
			Name:      "buffer_dropped_total",
			Help:      "History entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
