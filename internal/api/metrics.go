package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the /ask calls passed through to the answering server.
type Metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envask_ask_requests_total",
				Help: "Total number of /ask requests forwarded, by response status code",
			},
			[]string{"code"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "envask_ask_request_duration_seconds",
				Help:    "Round trip time of forwarded /ask requests",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}
