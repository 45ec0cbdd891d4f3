package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "event_relay"

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeInvalid  = "invalid"
)

// Metrics owns the collectors for one registry. Tests build their own with
// New so that counts do not leak between cases.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	HTTPResponses   *prometheus.CounterVec
	EventsParsed    prometheus.Counter
	PublishTotal    *prometheus.CounterVec
	PublishDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Inbound email requests by outcome",
			},
			[]string{"outcome"},
		),
		HTTPResponses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "responses_total",
				Help:      "HTTP responses by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
		EventsParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_parsed_total",
				Help:      "Events extracted from inbound emails",
			},
		),
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cms",
				Name:      "publish_total",
				Help:      "Final publish outcome per event against the CMS, after any retries",
			},
			[]string{"outcome"},
		),
		PublishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "cms",
				Name:      "publish_duration_seconds",
				Help:      "Duration of publish calls in seconds, including retries",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	m.registry.MustRegister(m.RequestsTotal, m.HTTPResponses, m.EventsParsed, m.PublishTotal, m.PublishDuration)

	return m
}

func (m *Metrics) ObserveRequest(outcome string) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveResponse(method, route string, code int) {
	m.HTTPResponses.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveParsed(count int) {
	m.EventsParsed.Add(float64(count))
}

func (m *Metrics) ObservePublish(outcome string, elapsed time.Duration) {
	m.PublishTotal.WithLabelValues(outcome).Inc()
	m.PublishDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
