package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	SubmitFailureValidation = "validation"
	SubmitFailureStore      = "store"
)

// Metrics owns its registry so that tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	MessagesPosted   prometheus.Counter
	SubmitFailures   *prometheus.CounterVec
	ListingsDegraded prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guestbook_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		MessagesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guestbook_messages_submitted_total",
			Help: "Total messages successfully stored.",
		}),
		SubmitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guestbook_submit_failures_total",
			Help: "Total rejected or failed submissions.",
		}, []string{"reason"}),
		ListingsDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guestbook_list_degraded_total",
			Help: "Total index renders served with an empty list after a store error.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.MessagesPosted,
		m.SubmitFailures,
		m.ListingsDegraded,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
