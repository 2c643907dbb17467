package converter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts conversion attempts per category, method and outcome.
type Metrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the conversion collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docconvert_conversion_attempts_total",
				Help: "Conversion strategy attempts by category, method and outcome",
			},
			[]string{"category", "method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docconvert_conversion_duration_seconds",
				Help:    "Time spent in a conversion strategy",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"category", "method"},
		),
	}
	for _, c := range []prometheus.Collector{m.attempts, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(cat Category, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(cat), method, outcome).Inc()
	m.duration.WithLabelValues(string(cat), method).Observe(d.Seconds())
}
