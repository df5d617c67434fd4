package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the registry's Prometheus collectors.
type Metrics struct {
	Registered prometheus.Counter
	Rejections *prometheus.CounterVec
	Stored     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Registered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tundr",
			Name:      "problems_registered_total",
			Help:      "Total number of optimization problems registered",
		}),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tundr",
				Name:      "problem_rejections_total",
				Help:      "Total number of rejected problem registrations",
			},
			[]string{"reason"},
		),
		Stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tundr",
			Name:      "problems_stored",
			Help:      "Number of problems currently stored",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Registered, m.Rejections, m.Stored} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
