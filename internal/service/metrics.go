package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_started_total",
			Help: "Sessions opened, by game type",
		},
		[]string{"game_type"},
	)
	sessionsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_resolved_total",
			Help: "Sessions resolved, by game type and result",
		},
		[]string{"game_type", "result"},
	)
	sweepRefunds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_refunds_total",
			Help: "Abandoned sessions refunded by the sweep",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsStarted)
	prometheus.MustRegister(sessionsResolved)
	prometheus.MustRegister(sweepRefunds)
}
