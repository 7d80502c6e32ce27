package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// AccessMetricsOptions configures the access decision collectors.
type AccessMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// AccessMetrics exposes Prometheus collectors for permission resolution.
type AccessMetrics struct {
	Decisions *prometheus.CounterVec
	Failures  prometheus.Counter
}

// NewAccessMetrics constructs and registers the permission decision collectors.
func NewAccessMetrics(opts AccessMetricsOptions) (*AccessMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "crm_access"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Total number of permission check decisions partitioned by outcome.",
	}, []string{"outcome"})

	if err := reg.Register(decisions); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				decisions = existing
			} else {
				return nil, fmt.Errorf("existing decisions collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register decisions collector: %w", err)
		}
	}

	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolution_failures_total",
		Help:      "Total number of permission resolutions that failed closed due to a backend error.",
	})

	if err := reg.Register(failures); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				failures = existing
			} else {
				return nil, fmt.Errorf("existing failures collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register failures collector: %w", err)
		}
	}

	return &AccessMetrics{Decisions: decisions, Failures: failures}, nil
}

// ObserveDecision records a single permission check outcome.
func (m *AccessMetrics) ObserveDecision(granted bool) {
	if m == nil || m.Decisions == nil {
		return
	}
	outcome := "denied"
	if granted {
		outcome = "granted"
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}

// ObserveFailure records a permission resolution aborted by a backend error.
func (m *AccessMetrics) ObserveFailure() {
	if m == nil || m.Failures == nil {
		return
	}
	m.Failures.Inc()
}
