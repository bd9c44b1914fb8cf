package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pipeline_runs_total", Help: "Completed pipeline runs by result"},
		[]string{"result"},
	)
	ModelsDiscoveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "models_discovered_total", Help: "Repositories seen for the first time"},
	)
	CandidatesEvaluatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candidates_evaluated_total", Help: "Backtested candidates by strategy and verdict"},
		[]string{"strategy", "eligible"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders handled by the trader"},
		[]string{"symbol", "side", "status"},
	)
	LastRunTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "last_run_timestamp_seconds", Help: "Unix time of the last finished pipeline run"},
	)
)

func init() {
	prometheus.MustRegister(
		PipelineRunsTotal,
		ModelsDiscoveredTotal,
		CandidatesEvaluatedTotal,
		OrdersTotal,
		LastRunTimestamp,
	)
}
