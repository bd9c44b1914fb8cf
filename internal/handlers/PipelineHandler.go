package handlers

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"CryptoModelBot/internal/metrics"
	"CryptoModelBot/internal/models"
	"CryptoModelBot/internal/repositories"
	"CryptoModelBot/internal/services/evaluation"
	"CryptoModelBot/internal/services/strategy"
	"CryptoModelBot/internal/services/trading"

	"github.com/rs/zerolog"
)

type ModelSource interface {
	FetchRecentModels(ctx context.Context) ([]models.Model, error)
}

type PriceSource interface {
	GetDailyCloses(ctx context.Context, symbol, interval string, lookbackYears int) ([]float64, error)
}

type Executor interface {
	Execute(ctx context.Context, d trading.Decision) (*models.Order, error)
}

// PipelineConfig names the market data used for backtests and the order
// placed for each eligible model.
type PipelineConfig struct {
	DataSymbol    string
	Interval      string
	LookbackYears int
	TradeSymbol   string
	TradeQuantity float64
}

// PipelineHandler runs one discover, backtest and trade cycle.
type PipelineHandler struct {
	source    ModelSource
	store     repositories.ModelStore
	prices    PriceSource
	trader    Executor
	evaluator *evaluation.Evaluator
	registry  *strategy.Registry
	cfg       PipelineConfig
	logger    zerolog.Logger

	mu           sync.RWMutex
	lastOutcomes []evaluation.Outcome
	lastRun      time.Time
	now          func() time.Time
}

func NewPipelineHandler(
	source ModelSource,
	store repositories.ModelStore,
	prices PriceSource,
	trader Executor,
	evaluator *evaluation.Evaluator,
	registry *strategy.Registry,
	cfg PipelineConfig,
	logger zerolog.Logger,
) *PipelineHandler {
	return &PipelineHandler{
		source:    source,
		store:     store,
		prices:    prices,
		trader:    trader,
		evaluator: evaluator,
		registry:  registry,
		cfg:       cfg,
		logger:    logger.With().Str("component", "pipeline").Logger(),
		now:       time.Now,
	}
}

// Run executes one cycle and returns the decisions that were sent to the
// trader. Failed orders are logged and do not fail the run.
func (h *PipelineHandler) Run(ctx context.Context) (decisions []trading.Decision, err error) {
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
		}
		metrics.PipelineRunsTotal.WithLabelValues(result).Inc()
		metrics.LastRunTimestamp.Set(float64(h.now().Unix()))
	}()

	h.logger.Info().Msg("Starting pipeline run")

	discovered, err := h.source.FetchRecentModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover models: %w", err)
	}

	fresh, err := h.store.Update(discovered)
	if err != nil {
		return nil, fmt.Errorf("update model store: %w", err)
	}
	metrics.ModelsDiscoveredTotal.Add(float64(len(fresh)))

	if len(fresh) == 0 {
		h.logger.Info().Int("fetched", len(discovered)).Msg("No new models")
		h.setOutcomes(nil)
		return []trading.Decision{}, nil
	}
	h.logger.Info().Int("fetched", len(discovered)).Int("new", len(fresh)).Msg("New models discovered")

	candidates := make([]evaluation.Candidate, 0, len(fresh))
	for _, m := range fresh {
		candidate := evaluation.BuildCandidate(m, h.registry)
		h.logger.Debug().
			Str("model", m.FullName).
			Strs("topics", m.Topics).
			Str("strategy", candidate.Strategy.Name()).
			Msg("Selected strategy")
		candidates = append(candidates, candidate)
	}

	closes, err := h.prices.GetDailyCloses(ctx, h.cfg.DataSymbol, h.cfg.Interval, h.cfg.LookbackYears)
	if err != nil {
		return nil, fmt.Errorf("fetch %s closes: %w", h.cfg.DataSymbol, err)
	}

	outcomes, err := h.evaluator.Evaluate(ctx, candidates, closes)
	if err != nil {
		return nil, fmt.Errorf("evaluate candidates: %w", err)
	}
	h.setOutcomes(outcomes)

	decisions = []trading.Decision{}
	for _, o := range outcomes {
		metrics.CandidatesEvaluatedTotal.
			WithLabelValues(o.Candidate.Strategy.Name(), strconv.FormatBool(o.Eligible)).
			Inc()
		if !o.Eligible {
			continue
		}

		h.logger.Info().
			Str("model", o.Candidate.Model.FullName).
			Str("strategy", o.Candidate.Strategy.Name()).
			Float64("annual_return", o.Result.AnnualizedReturn).
			Float64("sharpe", o.Result.SharpeRatio).
			Float64("max_drawdown", o.Result.MaxDrawdown).
			Msg("Model eligible for trading")

		d := trading.Decision{
			Symbol:        h.cfg.TradeSymbol,
			Side:          models.OrderSideBuy,
			Quantity:      h.cfg.TradeQuantity,
			ModelFullName: o.Candidate.Model.FullName,
		}
		if _, execErr := h.trader.Execute(ctx, d); execErr != nil {
			h.logger.Error().Err(execErr).Str("model", d.ModelFullName).Msg("Trade execution failed")
		}
		decisions = append(decisions, d)
	}

	h.logger.Info().Int("candidates", len(outcomes)).Int("decisions", len(decisions)).Msg("Pipeline run finished")
	return decisions, nil
}

// Thresholds returns the eligibility bounds the outcomes were judged against.
func (h *PipelineHandler) Thresholds() evaluation.Thresholds {
	return h.evaluator.Thresholds()
}

// LastOutcomes returns the outcomes of the most recent evaluation.
func (h *PipelineHandler) LastOutcomes() ([]evaluation.Outcome, time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]evaluation.Outcome, len(h.lastOutcomes))
	copy(out, h.lastOutcomes)
	return out, h.lastRun
}

func (h *PipelineHandler) setOutcomes(outcomes []evaluation.Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastOutcomes = outcomes
	h.lastRun = h.now()
}
