package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"expensebot/internal/engine"
	"expensebot/internal/model"
)

const metricsNamespace = "expensebot"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"path"},
	)

	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "turns_total",
			Help:      "Total dialogue turns by outcome",
		},
		[]string{"outcome"},
	)

	expensesCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "expenses_committed_total",
			Help:      "Total expenses committed through chat",
		},
	)
)

// EngineHooks returns hooks that feed the dialogue counters. Wire them into
// the engine config so web and terminal traffic count the same way.
func EngineHooks() engine.Hooks {
	return engine.Hooks{
		OnOutcome: func(outcome model.Outcome) {
			turnsTotal.WithLabelValues(string(outcome)).Inc()
		},
		OnCommit: func(model.ExpenseCandidate) {
			expensesCommitted.Inc()
		},
	}
}
