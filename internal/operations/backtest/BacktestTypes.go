package backtest

import (
	"errors"
	"fmt"
)

// PeriodsPerYear is the annualisation convention for daily series. Crypto
// trades every day, so a calendar year is used rather than 252 sessions.
const PeriodsPerYear = 365

// Result holds the summary statistics of one backtest. Returns and drawdown
// are fractions (0.10 = 10%).
type Result struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
}

// ErrLengthMismatch is matched by every LengthMismatchError.
var ErrLengthMismatch = errors.New("series length mismatch")

// LengthMismatchError reports signal and return/price series that do not line
// up. No result is produced when it is returned.
type LengthMismatchError struct {
	Signals int
	Series  int
	What    string
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: %d signals vs %d %s", ErrLengthMismatch, e.Signals, e.Series, e.What)
}

func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}
