package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "elo_tracker"

// ResolverMetrics records ranking API resolutions.
type ResolverMetrics interface {
	RecordResolverCall(kind, outcome string)
}

// TrackingMetrics records tracking service operations and role mutations.
type TrackingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation, class string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
	RecordRoleMutation(kind, outcome string)
	RecordPresenceSkipped(reason string)
}

// NoOpResolverMetrics discards everything.
type NoOpResolverMetrics struct{}

func (NoOpResolverMetrics) RecordResolverCall(string, string) {}

// NoOpTrackingMetrics discards everything.
type NoOpTrackingMetrics struct{}

func (NoOpTrackingMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoOpTrackingMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoOpTrackingMetrics) RecordOperationFailure(context.Context, string, string)         {}
func (NoOpTrackingMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpTrackingMetrics) RecordRoleMutation(string, string)                              {}
func (NoOpTrackingMetrics) RecordPresenceSkipped(string)                                   {}

// PrometheusMetrics implements ResolverMetrics and TrackingMetrics.
type PrometheusMetrics struct {
	resolverCalls     *prometheus.CounterVec
	operationAttempts *prometheus.CounterVec
	operationSuccess  *prometheus.CounterVec
	operationFailures *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	roleMutations     *prometheus.CounterVec
	presenceSkipped   *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		resolverCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "calls_total",
			Help:      "Ranking API resolutions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "operation_attempts_total",
			Help:      "Tracking operations started.",
		}, []string{"operation"}),
		operationSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "operation_success_total",
			Help:      "Tracking operations completed without error.",
		}, []string{"operation"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "operation_failures_total",
			Help:      "Tracking operations that returned an error, by error class.",
		}, []string{"operation", "class"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "operation_duration_seconds",
			Help:      "Tracking operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		roleMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "role_mutations_total",
			Help:      "Role API calls made by the reconciler.",
		}, []string{"kind", "outcome"}),
		presenceSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracking",
			Name:      "presence_skipped_total",
			Help:      "Presence events that caused no role mutation.",
		}, []string{"reason"}),
	}

	for _, c := range []prometheus.Collector{
		m.resolverCalls,
		m.operationAttempts,
		m.operationSuccess,
		m.operationFailures,
		m.operationDuration,
		m.roleMutations,
		m.presenceSkipped,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordResolverCall(kind, outcome string) {
	m.resolverCalls.WithLabelValues(kind, outcome).Inc()
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.operationAttempts.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.operationSuccess.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, class string) {
	m.operationFailures.WithLabelValues(operation, class).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordRoleMutation(kind, outcome string) {
	m.roleMutations.WithLabelValues(kind, outcome).Inc()
}

func (m *PrometheusMetrics) RecordPresenceSkipped(reason string) {
	m.presenceSkipped.WithLabelValues(reason).Inc()
}
