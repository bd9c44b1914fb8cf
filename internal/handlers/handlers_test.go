package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"CryptoModelBot/internal/models"
	"CryptoModelBot/internal/operations/backtest"
	"CryptoModelBot/internal/repositories"
	"CryptoModelBot/internal/services/evaluation"
	"CryptoModelBot/internal/services/strategy"
	"CryptoModelBot/internal/services/trading"

	"github.com/rs/zerolog"
)

type fakeSource struct {
	models []models.Model
	err    error
}

func (f *fakeSource) FetchRecentModels(context.Context) ([]models.Model, error) {
	return f.models, f.err
}

type fakePrices struct {
	closes []float64
	err    error
	calls  int
}

func (f *fakePrices) GetDailyCloses(context.Context, string, string, int) ([]float64, error) {
	f.calls++
	return f.closes, f.err
}

type fakeTrader struct {
	mu        sync.Mutex
	decisions []trading.Decision
	err       error
}

func (f *fakeTrader) Execute(_ context.Context, d trading.Decision) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, d)
	return &models.Order{Symbol: d.Symbol, Side: d.Side}, f.err
}

// Every candidate passes these bounds.
var lenient = evaluation.Thresholds{MinAnnualReturn: -1, MinSharpeRatio: -1000, MaxDrawdown: 1}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price *= 1.01
	}
	return closes
}

func newTestPipeline(t *testing.T, source ModelSource, prices PriceSource, trader Executor, th evaluation.Thresholds) *PipelineHandler {
	t.Helper()
	store, err := repositories.NewModelFileStore(filepath.Join(t.TempDir(), "models.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewModelFileStore: %v", err)
	}
	evaluator := evaluation.NewEvaluator(backtest.NewEngine(zerolog.Nop(), 0), th, 2, zerolog.Nop())
	cfg := PipelineConfig{
		DataSymbol:    "BTCUSDT",
		Interval:      "1d",
		LookbackYears: 3,
		TradeSymbol:   "BTCUSDT",
		TradeQuantity: 0.001,
	}
	return NewPipelineHandler(source, store, prices, trader, evaluator, strategy.NewRegistry(strategy.DefaultParams()), cfg, zerolog.Nop())
}

func TestPipelineRunTradesEligibleModels(t *testing.T) {
	source := &fakeSource{models: []models.Model{
		{RepoID: 1, FullName: "a/sma", Topics: []string{"sma"}},
		{RepoID: 2, FullName: "b/momentum", Topics: []string{"momentum"}},
	}}
	prices := &fakePrices{closes: risingCloses(60)}
	trader := &fakeTrader{}
	p := newTestPipeline(t, source, prices, trader, lenient)

	decisions, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(decisions) != 2 || len(trader.decisions) != 2 {
		t.Fatalf("decisions = %+v, trader saw %d", decisions, len(trader.decisions))
	}
	for _, d := range decisions {
		if d.Symbol != "BTCUSDT" || d.Side != models.OrderSideBuy || d.Quantity != 0.001 {
			t.Errorf("decision = %+v", d)
		}
	}

	outcomes, _ := p.LastOutcomes()
	if len(outcomes) != 2 {
		t.Fatalf("LastOutcomes has %d entries, want 2", len(outcomes))
	}
	if outcomes[0].Candidate.Strategy.Name() != strategy.NameSMACross || outcomes[1].Candidate.Strategy.Name() != strategy.NameMomentum {
		t.Errorf("strategies = %s, %s", outcomes[0].Candidate.Strategy.Name(), outcomes[1].Candidate.Strategy.Name())
	}

	// Same models again: nothing new, nothing traded.
	decisions, err = p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if len(decisions) != 0 || len(trader.decisions) != 2 || prices.calls != 1 {
		t.Fatalf("second run: decisions=%d trader=%d price calls=%d", len(decisions), len(trader.decisions), prices.calls)
	}
}

func TestPipelineRunStrictThresholdsTradeNothing(t *testing.T) {
	source := &fakeSource{models: []models.Model{{RepoID: 3, FullName: "c/hold"}}}
	trader := &fakeTrader{}
	strict := evaluation.Thresholds{MinAnnualReturn: 100, MinSharpeRatio: 100, MaxDrawdown: 0}
	p := newTestPipeline(t, source, &fakePrices{closes: risingCloses(60)}, trader, strict)

	decisions, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(decisions) != 0 || len(trader.decisions) != 0 {
		t.Fatalf("strict thresholds produced trades: %+v", decisions)
	}
	outcomes, _ := p.LastOutcomes()
	if len(outcomes) != 1 || outcomes[0].Eligible || outcomes[0].Reason != evaluation.ReasonAnnualReturn {
		t.Fatalf("outcomes = %+v", outcomes)
	}
}

func TestPipelineRunTradeFailureDoesNotFailRun(t *testing.T) {
	source := &fakeSource{models: []models.Model{{RepoID: 4, FullName: "d/bot"}}}
	trader := &fakeTrader{err: errors.New("exchange down")}
	p := newTestPipeline(t, source, &fakePrices{closes: risingCloses(60)}, trader, lenient)

	decisions, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(decisions) != 1 {
		t.Fatalf("decisions = %+v", decisions)
	}
}

func TestPipelineRunPropagatesCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")

	p := newTestPipeline(t, &fakeSource{err: boom}, &fakePrices{}, &fakeTrader{}, lenient)
	if _, err := p.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("crawl failure: err = %v", err)
	}

	source := &fakeSource{models: []models.Model{{RepoID: 5, FullName: "e/bot"}}}
	p = newTestPipeline(t, source, &fakePrices{err: boom}, &fakeTrader{}, lenient)
	if _, err := p.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("price failure: err = %v", err)
	}
}

func TestPipelineReportsEvaluatorThresholds(t *testing.T) {
	strict := evaluation.Thresholds{MinAnnualReturn: 0.2, MinSharpeRatio: 1.5, MaxDrawdown: 0.25}
	p := newTestPipeline(t, &fakeSource{}, &fakePrices{}, &fakeTrader{}, strict)
	if got := p.Thresholds(); got != strict {
		t.Fatalf("Thresholds = %+v, want %+v", got, strict)
	}
}

func TestUntilNext(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"later today", time.Date(2024, 1, 1, 5, 30, 0, 0, time.UTC), 30 * time.Minute},
		{"exactly now waits a day", time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), 24 * time.Hour},
		{"already passed", time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), 23 * time.Hour},
		{"non-UTC input", time.Date(2024, 1, 1, 7, 0, 0, 0, time.FixedZone("UTC+2", 2*3600)), 1 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := untilNext(tt.now, 6, 0); got != tt.want {
				t.Errorf("untilNext = %v, want %v", got, tt.want)
			}
		})
	}
}

type countingRunner struct {
	mu     sync.Mutex
	calls  int
	err    error
	onCall func()
}

func (r *countingRunner) Run(context.Context) ([]trading.Decision, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.onCall != nil {
		r.onCall()
	}
	return nil, r.err
}

func TestSchedulerStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &countingRunner{}
	NewScheduler(runner, 6, 0, zerolog.Nop()).RunForever(ctx)
	if runner.calls != 0 {
		t.Fatalf("runner called %d times after cancel", runner.calls)
	}
}

func TestSchedulerRunsAtScheduledTime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &countingRunner{err: errors.New("run failed"), onCall: cancel}
	s := NewScheduler(runner, 6, 0, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 1, 1, 5, 59, 59, 990_000_000, time.UTC) }
	s.cooldown = time.Millisecond

	done := make(chan struct{})
	go func() {
		s.RunForever(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	if runner.calls != 1 {
		t.Fatalf("runner called %d times, want 1", runner.calls)
	}
}
