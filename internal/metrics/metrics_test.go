package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	OrdersTotal.WithLabelValues("BTCUSDT", "BUY", "skipped").Inc()
	CandidatesEvaluatedTotal.WithLabelValues("sma-cross", "true").Inc()
	PipelineRunsTotal.WithLabelValues(ResultSuccess).Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	want := map[string]bool{
		"orders_total":               false,
		"candidates_evaluated_total": false,
		"pipeline_runs_total":        false,
		"models_discovered_total":    false,
		"last_run_timestamp_seconds": false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s metric not found", name)
		}
	}
}

func TestOrdersTotalCountsByLabel(t *testing.T) {
	before := testutil.ToFloat64(OrdersTotal.WithLabelValues("ETHUSDT", "BUY", "submitted"))
	OrdersTotal.WithLabelValues("ETHUSDT", "BUY", "submitted").Inc()
	if got := testutil.ToFloat64(OrdersTotal.WithLabelValues("ETHUSDT", "BUY", "submitted")); got != before+1 {
		t.Fatalf("orders_total = %v, want %v", got, before+1)
	}
}
