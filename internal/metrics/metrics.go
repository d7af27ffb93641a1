// Package metrics exposes Prometheus counters for rating activity
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and multiple apps do not collide.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	matchesRecorded    *prometheus.CounterVec
	playersRegistered  prometheus.Counter
	playersTotal       prometheus.Gauge
	teamsBalanced      *prometheus.CounterVec
	balanceDuration    prometheus.Histogram
	validationFailures *prometheus.CounterVec
	storageErrors      *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates the metrics and registers them with a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		matchesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teamrank_matches_recorded_total",
			Help: "Matches rated and persisted, by winning side.",
		}, []string{"winner"}),
		playersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "teamrank_players_registered_total",
			Help: "Players created on first reference.",
		}),
		playersTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "teamrank_players",
			Help: "Players in the last saved snapshot.",
		}),
		teamsBalanced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teamrank_teams_balanced_total",
			Help: "Balanced team splits computed, by metric.",
		}, []string{"metric"}),
		balanceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "teamrank_balance_duration_seconds",
			Help:    "Time spent searching for a balanced split.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		validationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teamrank_validation_failures_total",
			Help: "Requests rejected before any state change, by operation.",
		}, []string{"operation"}),
		storageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teamrank_storage_errors_total",
			Help: "Storage load or save failures, by operation.",
		}, []string{"operation"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teamrank_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teamrank_http_request_duration_seconds",
			Help:    "HTTP request latency, by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) MatchRecorded(winner string) {
	if m == nil {
		return
	}
	m.matchesRecorded.WithLabelValues(winner).Inc()
}

func (m *Metrics) PlayersRegistered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.playersRegistered.Add(float64(n))
}

func (m *Metrics) PlayersStored(n int) {
	if m == nil {
		return
	}
	m.playersTotal.Set(float64(n))
}

func (m *Metrics) TeamsBalanced(metric string, took time.Duration) {
	if m == nil {
		return
	}
	m.teamsBalanced.WithLabelValues(metric).Inc()
	m.balanceDuration.Observe(took.Seconds())
}

func (m *Metrics) ValidationFailed(operation string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) StorageFailed(operation string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(operation).Inc()
}

// HTTPRequest records a served request. It matches middleware.Observer.
func (m *Metrics) HTTPRequest(method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(took.Seconds())
}
