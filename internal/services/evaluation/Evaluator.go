package evaluation

import (
	"context"
	"fmt"

	"CryptoModelBot/internal/operations/backtest"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Passes reports whether result clears every threshold.
func Passes(result backtest.Result, thresholds Thresholds) bool {
	ok, _ := Check(result, thresholds)
	return ok
}

// Check applies the thresholds in a fixed order and returns the name of the
// first one that fails.
func Check(result backtest.Result, thresholds Thresholds) (bool, string) {
	if result.AnnualizedReturn < thresholds.MinAnnualReturn {
		return false, ReasonAnnualReturn
	}
	if result.SharpeRatio < thresholds.MinSharpeRatio {
		return false, ReasonSharpeRatio
	}
	if result.MaxDrawdown > thresholds.MaxDrawdown {
		return false, ReasonDrawdown
	}
	return true, ""
}

// Evaluator backtests candidates against a shared close series and applies
// the thresholds.
type Evaluator struct {
	engine     *backtest.Engine
	thresholds Thresholds
	workers    int
	logger     zerolog.Logger
}

func NewEvaluator(engine *backtest.Engine, thresholds Thresholds, workers int, logger zerolog.Logger) *Evaluator {
	if workers <= 0 {
		workers = 1
	}
	return &Evaluator{
		engine:     engine,
		thresholds: thresholds,
		workers:    workers,
		logger:     logger.With().Str("component", "evaluator").Logger(),
	}
}

// Thresholds returns the thresholds the evaluator applies.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate returns one outcome per candidate, in candidate order. A length
// mismatch in any backtest aborts the batch.
func (e *Evaluator) Evaluate(ctx context.Context, candidates []Candidate, closes []float64) ([]Outcome, error) {
	outcomes := make([]Outcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, candidate := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := e.evaluateOne(candidate, closes)
			if err != nil {
				return fmt.Errorf("evaluating %s: %w", candidate.Model.FullName, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (e *Evaluator) evaluateOne(candidate Candidate, closes []float64) (Outcome, error) {
	result, err := e.engine.Backtest(candidate.Strategy, closes)
	if err != nil {
		return Outcome{}, err
	}

	eligible, reason := Check(result, e.thresholds)
	if !eligible {
		e.logRejection(candidate, result, reason)
	}

	return Outcome{
		Candidate: candidate,
		Result:    result,
		Eligible:  eligible,
		Reason:    reason,
	}, nil
}

func (e *Evaluator) logRejection(candidate Candidate, result backtest.Result, reason string) {
	event := e.logger.Info().Str("model", candidate.Model.FullName).Str("check", reason)
	switch reason {
	case ReasonAnnualReturn:
		event = event.Float64("annual_return", result.AnnualizedReturn).Float64("threshold", e.thresholds.MinAnnualReturn)
	case ReasonSharpeRatio:
		event = event.Float64("sharpe", result.SharpeRatio).Float64("threshold", e.thresholds.MinSharpeRatio)
	case ReasonDrawdown:
		event = event.Float64("drawdown", result.MaxDrawdown).Float64("threshold", e.thresholds.MaxDrawdown)
	}
	event.Msg("Candidate below threshold")
}
