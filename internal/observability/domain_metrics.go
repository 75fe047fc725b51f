package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sourceFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siadchat_source_fetch_total",
			Help: "Remote source calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)
	sourceRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "siadchat_source_rows_total",
			Help: "Total number of table rows loaded from remote sources.",
		},
	)
	responderOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siadchat_responder_outcomes_total",
			Help: "Answered questions by responder branch.",
		},
		[]string{"outcome"},
	)
	engineLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siadchat_engine_latency_ms",
			Help:    "Latency of natural language engine calls in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "siadchat_active_sessions",
			Help: "Current number of open chat sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		sourceFetchTotal,
		sourceRowsTotal,
		responderOutcomesTotal,
		engineLatencyMs,
		activeSessions,
	)
}

func ObserveSourceFetch(endpoint, outcome string, rows int) {
	sourceFetchTotal.WithLabelValues(endpoint, outcome).Inc()
	if rows > 0 {
		sourceRowsTotal.Add(float64(rows))
	}
}

func ObserveResponderOutcome(outcome string) {
	responderOutcomesTotal.WithLabelValues(outcome).Inc()
}

func ObserveEngineLatency(elapsed time.Duration) {
	engineLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func SetActiveSessions(count int) {
	if count < 0 {
		count = 0
	}
	activeSessions.Set(float64(count))
}
