package backtest

import (
	"CryptoModelBot/internal/services/strategy"

	"github.com/rs/zerolog"
)

// Engine computes summary statistics for signal series. It keeps no state
// between runs and is safe for concurrent use.
type Engine struct {
	riskFreeRate float64
	logger       zerolog.Logger
}

func NewEngine(logger zerolog.Logger, riskFreeRate float64) *Engine {
	return &Engine{
		riskFreeRate: riskFreeRate,
		logger:       logger.With().Str("component", "backtest").Logger(),
	}
}

// Backtest generates signals for closes with s and runs them against the
// closes' returns.
func (e *Engine) Backtest(s strategy.Strategy, closes []float64) (Result, error) {
	e.logger.Info().Str("strategy", describe(s)).Int("periods", len(closes)).Msg("Running backtest")

	signals := s.GenerateSignals(closes)
	if len(signals) != len(closes) {
		return Result{}, &LengthMismatchError{Signals: len(signals), Series: len(closes), What: "prices"}
	}
	return e.Run(signals, ComputeReturns(closes))
}

// Run derives the summary statistics from aligned signal and return series.
func (e *Engine) Run(signals []strategy.Signal, returns []float64) (Result, error) {
	strategyReturns, err := StrategyReturns(signals, returns)
	if err != nil {
		return Result{}, err
	}

	total := CumulativeReturn(strategyReturns)
	result := Result{
		TotalReturn:      total,
		AnnualizedReturn: AnnualizedReturn(total, len(strategyReturns)),
		SharpeRatio:      SharpeRatio(strategyReturns, e.riskFreeRate),
		MaxDrawdown:      MaxDrawdown(strategyReturns),
	}

	e.logger.Info().
		Float64("total_pct", result.TotalReturn*100).
		Float64("annual_pct", result.AnnualizedReturn*100).
		Float64("sharpe", result.SharpeRatio).
		Float64("drawdown_pct", result.MaxDrawdown*100).
		Msg("Backtest result")

	return result, nil
}

func describe(s strategy.Strategy) string {
	if st, ok := s.(interface{ String() string }); ok {
		return st.String()
	}
	return s.Name()
}
