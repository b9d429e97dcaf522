package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Agrid-Dev/thermoprops/internal/ports"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
)

const namespace = "thermoprops"

// Lookup outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeOutOfRange      = "out_of_range"
	OutcomeError           = "error"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	lookups      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Saturation property lookups by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.lookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) ObserveLookup(err error) {
	m.lookups.WithLabelValues(LookupOutcome(err)).Inc()
}

// LookupOutcome classifies the error returned by a properties lookup.
func LookupOutcome(err error) string {
	var oor *saturation.OutOfRangeError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, saturation.ErrInvalidPressure):
		return OutcomeInvalidArgument
	case errors.As(err, &oor):
		return OutcomeOutOfRange
	default:
		return OutcomeError
	}
}

type instrumentedLookups struct {
	next ports.PropertiesService
	m    *Metrics
}

// InstrumentLookups counts every lookup made through next. A nil m returns
// next unchanged.
func InstrumentLookups(next ports.PropertiesService, m *Metrics) ports.PropertiesService {
	if m == nil {
		return next
	}
	return &instrumentedLookups{next: next, m: m}
}

func (s *instrumentedLookups) Properties(ctx context.Context, pressurePa float64) (saturation.Properties, error) {
	p, err := s.next.Properties(ctx, pressurePa)
	s.m.ObserveLookup(err)
	return p, err
}
