package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WatchesCurrentlyRunning tracks the number of watch runs in flight
	WatchesCurrentlyRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jobwatch_watches_currently_running",
		Help: "The number of scheduled watch runs currently in flight",
	})

	// WatchExecutionsTotal counts scheduled watch runs by outcome
	WatchExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobwatch_watch_executions_total",
		Help: "The total number of scheduled watch runs by outcome",
	}, []string{"result"})
)
