package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "dnd").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for drag duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the drag duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "dnd",
		// Drags take from a few hundred milliseconds to tens of seconds.
		Buckets:  []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors. It implements dnd.Observer.
type Metrics struct {
	dragStarts     prometheus.Counter
	dragAborts     prometheus.Counter
	dragOutcomes   *prometheus.CounterVec
	dragDuration   prometheus.Histogram
	activeSessions prometheus.Gauge
	eventsTotal    *prometheus.CounterVec
	patchesSent    prometheus.Counter
	wsErrors       *prometheus.CounterVec
}

var _ dnd.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the collectors. Registering twice on the
// same registry panics, so tests should pass their own registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		dragStarts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "drag_starts_total",
			Help:        "Total number of accepted dragstart events",
			ConstLabels: config.ConstLabels,
		}),

		dragAborts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "drag_aborts_total",
			Help:        "Total number of dragstart events blocked by dnd-disable-if",
			ConstLabels: config.ConstLabels,
		}),

		dragOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "drag_outcomes_total",
			Help:        "Total number of finished drags by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		dragDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "drag_duration_seconds",
			Help:        "Time from dragstart to dragend in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of client events received by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// DragStarted implements dnd.Observer.
func (m *Metrics) DragStarted(*dom.Element) {
	m.dragStarts.Inc()
}

// DragAborted implements dnd.Observer.
func (m *Metrics) DragAborted(*dom.Element) {
	m.dragAborts.Inc()
}

// DragEnded implements dnd.Observer.
func (m *Metrics) DragEnded(_ *dom.Element, outcome dnd.Outcome, elapsed time.Duration) {
	m.dragOutcomes.WithLabelValues(string(outcome)).Inc()
	m.dragDuration.Observe(elapsed.Seconds())
}

// SessionOpened records a new WebSocket session.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed records a closed WebSocket session.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// EventReceived records a client event by type name.
func (m *Metrics) EventReceived(eventType string) {
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

// PatchesSent records patches written to a client.
func (m *Metrics) PatchesSent(n int) {
	m.patchesSent.Add(float64(n))
}

// WebSocketError records a transport error by kind (read, write, decode).
func (m *Metrics) WebSocketError(kind string) {
	m.wsErrors.WithLabelValues(kind).Inc()
}
