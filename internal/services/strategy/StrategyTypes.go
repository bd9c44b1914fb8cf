package strategy

// Signal is the position held for one period.
type Signal int

const (
	Short   Signal = -1
	Neutral Signal = 0
	Long    Signal = 1
)

// Strategy turns a close-price series into a signal series of the same length.
type Strategy interface {
	Name() string
	GenerateSignals(prices []float64) []Signal
}

// Params groups the tunable knobs of the built-in strategies.
type Params struct {
	FastWindow        int     `yaml:"fast_window"`
	SlowWindow        int     `yaml:"slow_window"`
	MomentumLookback  int     `yaml:"momentum_lookback"`
	MomentumThreshold float64 `yaml:"momentum_threshold"`
}

// DefaultParams returns the parameter set used when nothing is configured.
func DefaultParams() Params {
	return Params{
		FastWindow:        10,
		SlowWindow:        30,
		MomentumLookback:  14,
		MomentumThreshold: 0.02,
	}
}

const (
	NameSMACross = "sma-cross"
	NameMomentum = "momentum"
	NameHold     = "hold"
)

// Helper for the neutral series every strategy starts from
func newNeutralSeries(n int) []Signal {
	return make([]Signal, n)
}
