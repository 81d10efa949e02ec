package observability

import (
	"fmt"

	"github.com/aretw0/settle/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "settle"

// Change kinds used as the "kind" label of the changes counter.
const (
	KindAdd    = "add"
	KindSet    = "set"
	KindDelete = "delete"
)

// Metrics holds the collectors fed by the lifecycle hooks of a manager.
type Metrics struct {
	Updates        prometheus.Counter
	Changes        *prometheus.CounterVec
	Notifications  prometheus.Counter
	Restarts       prometheus.Counter
	ListenerErrors prometheus.Counter
	Passes         prometheus.Histogram
	Duration       prometheus.Histogram
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace overrides the metric namespace (default "settle").
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) {
		c.namespace = ns
	}
}

// WithConstLabels attaches fixed labels to every collector, typically the
// name of the manager being observed.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *metricsConfig) {
		c.constLabels = labels
	}
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) (*Metrics, error) {
	cfg := metricsConfig{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "updates_total",
			Help:        "Outermost updates that reached the after-update phase",
			ConstLabels: cfg.constLabels,
		}),
		Changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "changes_total",
			Help:        "Intercepted writes by kind",
			ConstLabels: cfg.constLabels,
		}, []string{"kind"}),
		Notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "notifications_total",
			Help:        "Listener invocations",
			ConstLabels: cfg.constLabels,
		}),
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "pass_restarts_total",
			Help:        "Notification passes restarted by a nested update",
			ConstLabels: cfg.constLabels,
		}),
		ListenerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "listener_errors_total",
			Help:        "Listener invocations that returned an error or panicked",
			ConstLabels: cfg.constLabels,
		}),
		Passes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "passes_per_update",
			Help:        "Notification passes needed for an update to settle",
			Buckets:     []float64{1, 2, 3, 5, 8, 13, 21},
			ConstLabels: cfg.constLabels,
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "update_duration_seconds",
			Help:        "Time from entering an outermost update to the end of notification",
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
			ConstLabels: cfg.constLabels,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.Updates, m.Changes, m.Notifications, m.Restarts, m.ListenerErrors, m.Passes, m.Duration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnChange: func(ev *domain.ChangeEvent) {
			m.Changes.WithLabelValues(ChangeKind(ev)).Inc()
		},
		OnNotify: func(*domain.NotifyEvent) {
			m.Notifications.Inc()
		},
		OnRestart: func(*domain.EventBase) {
			m.Restarts.Inc()
		},
		OnListenerError: func(*domain.ListenerEvent) {
			m.ListenerErrors.Inc()
		},
		OnSettle: func(ev *domain.SettleEvent) {
			m.Updates.Inc()
			m.Passes.Observe(float64(ev.Passes))
			m.Duration.Observe(ev.Duration.Seconds())
		},
	}
}

// ChangeKind classifies a write as an addition, an overwrite or a deletion.
func ChangeKind(ev *domain.ChangeEvent) string {
	switch {
	case domain.IsMissing(ev.NewValue):
		return KindDelete
	case domain.IsMissing(ev.OldValue):
		return KindAdd
	default:
		return KindSet
	}
}
