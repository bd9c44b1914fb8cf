package backtest

import "math"

// CumulativeReturn compounds the returns: prod(1+r) - 1. An empty series is 0.
func CumulativeReturn(returns []float64) float64 {
	total := 1.0
	for _, r := range returns {
		total *= 1 + r
	}
	return total - 1
}

// AnnualizedReturn scales a total return earned over periods days to a
// yearly rate.
func AnnualizedReturn(totalReturn float64, periods int) float64 {
	if periods == 0 {
		return 0
	}
	years := float64(periods) / PeriodsPerYear
	if years == 0 {
		return 0
	}

	growth := 1 + totalReturn
	// A short position can lose more than the whole stake; there is no real
	// root to take, so report a total loss.
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, 1/years) - 1
}

// SharpeRatio is the annualised Sharpe ratio of daily returns against a
// yearly risk-free rate, using the sample standard deviation.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}

	excess := mean - riskFreeRate/PeriodsPerYear
	return (excess / stdDev) * math.Sqrt(PeriodsPerYear)
}

// MaxDrawdown walks the equity curve that starts at 1.0 and returns the
// largest fall from a running peak, as a fraction of that peak.
func MaxDrawdown(returns []float64) float64 {
	equity := 1.0
	peak := equity
	maxDrawdown := 0.0

	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		drawdown := (peak - equity) / peak
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}
