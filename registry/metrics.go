package registry

import (
	"errors"
	"time"

	"github.com/motorid/registry/common"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "registry"

// unknownOperation labels invocations of selectors no module serves.
const unknownOperation = "unknown"

type metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invocations_total",
			Help:      "Number of registry invocations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "invocation_duration_seconds",
			Help:      "Registry invocation execution time.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.invocations, m.duration)
	}
	return m
}

func (m *metrics) observe(operation string, err error, d time.Duration) {
	m.invocations.WithLabelValues(operation, outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var e *common.Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	if errors.Is(err, common.ErrAuthorization) {
		return common.KindAuthorization.String()
	}
	return "error"
}
