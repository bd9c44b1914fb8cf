package backtest

import "CryptoModelBot/internal/services/strategy"

// ComputeReturns converts closes into simple per-period returns aligned with
// the closes. The first entry is always 0, and a period following a zero close
// is 0 as well.
func ComputeReturns(closes []float64) []float64 {
	returns := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		returns[i] = (closes[i] - prev) / prev
	}
	return returns
}

// StrategyReturns multiplies each period's return by the position held in it.
func StrategyReturns(signals []strategy.Signal, returns []float64) ([]float64, error) {
	if len(signals) != len(returns) {
		return nil, &LengthMismatchError{Signals: len(signals), Series: len(returns), What: "returns"}
	}

	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = float64(signals[i]) * r
	}
	return out, nil
}
