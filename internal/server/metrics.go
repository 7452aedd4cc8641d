package server

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DaniXM02/tunneltap/internal/resolve"
)

var (
	// resolutionCounter tracks resolution runs by outcome.
	resolutionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tunneltap_resolutions_total",
		Help: "Number of resolution runs by outcome.",
	}, []string{"outcome"})

	// resolutionTime measures how long a full candidate scan takes.
	resolutionTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tunneltap_resolution_seconds",
		Help:    "Time spent scanning the candidate ports.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5},
	})
)

var metricsOnce sync.Once

// initMetrics registers the metrics with the default registry. Guarded so
// tests can build the app more than once.
func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(resolutionCounter)
		prometheus.MustRegister(resolutionTime)
	})
}

func recordResolution(result resolve.Result, elapsed time.Duration) {
	resolutionCounter.WithLabelValues(outcomeLabel(result.Outcome)).Inc()
	resolutionTime.Observe(elapsed.Seconds())
}

func outcomeLabel(outcome resolve.Outcome) string {
	switch outcome {
	case resolve.OutcomeFound:
		return "found"
	case resolve.OutcomeNoTunnel:
		return "no_tunnel"
	default:
		return "no_api"
	}
}
