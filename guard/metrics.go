package guard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts guard decisions. One Metrics is shared by every guard of an
// application.
type Metrics struct {
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the guard metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ganger",
			Subsystem: "auth_guard",
			Name:      "decisions_total",
			Help:      "Guard decisions by guard and outcome code",
		}, []string{"guard", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ganger",
			Subsystem: "auth_guard",
			Name:      "evaluation_seconds",
			Help:      "Time spent evaluating a request before the handler runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"guard"}),
	}
}

func (m *Metrics) observe(guard, code string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.decisions.WithLabelValues(guard, code).Inc()
	m.duration.WithLabelValues(guard).Observe(elapsed.Seconds())
}
