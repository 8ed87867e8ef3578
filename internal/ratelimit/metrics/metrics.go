package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected   *prometheus.CounterVec
	FailedOpen prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tabilog_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter, by class",
		}, []string{"class"}),
		FailedOpen: f.NewCounter(prometheus.CounterOpts{
			Name: "tabilog_ratelimit_failed_open_total",
			Help: "Requests let through because the limiter store failed",
		}),
	}
}

func (m *Metrics) IncRejected(class string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncFailedOpen() {
	if m == nil {
		return
	}
	m.FailedOpen.Inc()
}
