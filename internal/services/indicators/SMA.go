package indicators

// TrailingMean returns the arithmetic mean of the window prices that end
// strictly before index end, i.e. prices[end-window:end]. The second return
// value is false when the window does not fit inside the series.
func TrailingMean(prices []float64, end, window int) (float64, bool) {
	if window <= 0 || end > len(prices) || end-window < 0 {
		return 0, false
	}

	sum := 0.0
	for _, p := range prices[end-window : end] {
		sum += p
	}
	return sum / float64(window), true
}

// PercentChange returns the fractional change from base to current. A zero
// base has no defined change and reports false.
func PercentChange(base, current float64) (float64, bool) {
	if base == 0 {
		return 0, false
	}
	return (current - base) / base, true
}

// Direction maps a comparison to 1 (up), -1 (down) or 0 (flat).
func Direction(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
