package evaluation

import (
	"CryptoModelBot/internal/models"
	"CryptoModelBot/internal/operations/backtest"
	"CryptoModelBot/internal/services/strategy"
)

// Thresholds gate live trading. They are read-only during an evaluation.
type Thresholds struct {
	MinAnnualReturn float64 `yaml:"min_annual_return"`
	MinSharpeRatio  float64 `yaml:"min_sharpe_ratio"`
	MaxDrawdown     float64 `yaml:"max_drawdown"`
}

// Candidate pairs a discovered model with the strategy that stands in for it.
type Candidate struct {
	Model    models.Model
	Strategy strategy.Strategy
}

// Outcome is the verdict for one candidate. Reason names the first failed
// check and is empty for eligible candidates.
type Outcome struct {
	Candidate Candidate
	Result    backtest.Result
	Eligible  bool
	Reason    string
}

const (
	ReasonAnnualReturn = "annual_return"
	ReasonSharpeRatio  = "sharpe_ratio"
	ReasonDrawdown     = "max_drawdown"
)

// BuildCandidate selects a strategy for model from its topics.
func BuildCandidate(model models.Model, registry *strategy.Registry) Candidate {
	return Candidate{
		Model:    model,
		Strategy: registry.FromKeywords(model.Topics),
	}
}
