package ratelimit

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments a limiter on a caller-supplied registerer. Attach with
// WithMetrics; a nil Metrics disables instrumentation.
type Metrics struct {
	admissions  prometheus.Counter
	waitSeconds prometheus.Histogram
	inWindow    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		admissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ratelimit_admissions_total",
			Help: "Completed acquire calls.",
		}),
		waitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ratelimit_acquire_wait_seconds",
			Help:    "Time spent blocked in acquire before admission.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		inWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ratelimit_in_window",
			Help: "Admissions currently inside the trailing window.",
		}),
	}
	reg.MustRegister(m.admissions, m.waitSeconds, m.inWindow)
	return m
}
