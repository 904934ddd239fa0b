package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Starts         *prometheus.CounterVec
	Updates        *prometheus.CounterVec
	UpdateDuration prometheus.Histogram
}

// NewMetrics creates and registers the server collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Starts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_starts_total",
				Help: "Total number of interviews started",
			},
			[]string{"interview"},
		),
		Updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_updates_total",
				Help: "Total number of interview updates by result",
			},
			[]string{"result"},
		),
		UpdateDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "interview_update_duration_seconds",
				Help: "Duration of interview update calls",
			},
		),
	}
	m.Registry.MustRegister(m.Starts, m.Updates, m.UpdateDuration)
	return m
}
