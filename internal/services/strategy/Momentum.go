package strategy

import (
	"fmt"

	"CryptoModelBot/internal/services/indicators"
)

var _ Strategy = (*Momentum)(nil)

// Momentum trades the sign of the lookback-period change once it clears the
// threshold in either direction.
type Momentum struct {
	lookback  int
	threshold float64
}

func NewMomentum(lookback int, threshold float64) *Momentum {
	return &Momentum{
		lookback:  lookback,
		threshold: threshold,
	}
}

func (m *Momentum) Name() string {
	return NameMomentum
}

func (m *Momentum) String() string {
	return fmt.Sprintf("Momentum(lookback=%d, threshold=%.4f)", m.lookback, m.threshold)
}

func (m *Momentum) GenerateSignals(prices []float64) []Signal {
	signals := newNeutralSeries(len(prices))
	if m.lookback < 0 {
		return signals
	}

	for i := m.lookback; i < len(prices); i++ {
		change, ok := indicators.PercentChange(prices[i-m.lookback], prices[i])
		if !ok {
			continue
		}
		if change > m.threshold {
			signals[i] = Long
		} else if change < -m.threshold {
			signals[i] = Short
		}
	}
	return signals
}
