package strategy

var _ Strategy = Hold{}

// Hold never takes a position. It is the benchmark every other strategy has
// to beat.
type Hold struct{}

func (Hold) Name() string   { return NameHold }
func (Hold) String() string { return "Hold" }

func (Hold) GenerateSignals(prices []float64) []Signal {
	return newNeutralSeries(len(prices))
}
