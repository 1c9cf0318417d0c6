package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "handheld"

// Result labels of the transition collectors.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the runtime collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	transitions    *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	observerPanics prometheus.Counter
	reportPages    prometheus.Gauge
}

// NewMetrics creates and registers the collectors, plus the Go and process
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of state transitions by origin state and result",
			},
			[]string{"from", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Round-trip duration of state transitions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		observerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observer_panics_total",
			Help:      "Total number of observers that panicked during delivery",
		}),
		reportPages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_pages",
			Help:      "Number of live report pages",
		}),
	}

	m.registry.MustRegister(
		m.transitions,
		m.duration,
		m.observerPanics,
		m.reportPages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns synchronizer hooks that record into the collectors.
func (m *Metrics) Hooks() domain.SyncHooks {
	return domain.SyncHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			result := ResultSuccess
			if e.Err != nil {
				result = ResultFailure
			}
			m.transitions.WithLabelValues(e.From, result).Inc()
			m.duration.WithLabelValues(result).Observe(e.Duration.Seconds())
		},
		OnObserverPanic: func(context.Context, *domain.ObserverPanicEvent) {
			m.observerPanics.Inc()
		},
	}
}

// ObservePages records the live page count.
func (m *Metrics) ObservePages(pages int) {
	m.reportPages.Set(float64(pages))
}
