package strategy

import (
	"fmt"

	"CryptoModelBot/internal/services/indicators"
)

var _ Strategy = (*SMACross)(nil)

// SMACross goes long while the fast moving average sits above the slow one
// and short while it sits below. Both averages only use closes before the
// period they signal for.
type SMACross struct {
	fastWindow int
	slowWindow int
}

func NewSMACross(fast, slow int) *SMACross {
	return &SMACross{
		fastWindow: fast,
		slowWindow: slow,
	}
}

func (s *SMACross) Name() string {
	return NameSMACross
}

func (s *SMACross) String() string {
	return fmt.Sprintf("SMACross(fast=%d, slow=%d)", s.fastWindow, s.slowWindow)
}

func (s *SMACross) GenerateSignals(prices []float64) []Signal {
	signals := newNeutralSeries(len(prices))
	if len(prices) < s.slowWindow {
		return signals
	}

	for i := s.slowWindow; i < len(prices); i++ {
		fast, okFast := indicators.TrailingMean(prices, i, s.fastWindow)
		slow, okSlow := indicators.TrailingMean(prices, i, s.slowWindow)
		if !okFast || !okSlow {
			continue
		}
		signals[i] = Signal(indicators.Direction(fast, slow))
	}
	return signals
}
