package indicators

import "testing"

func TestTrailingMean(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		end    int
		window int
		want   float64
		ok     bool
	}{
		{"window before end", 3, 3, 2, true},
		{"excludes current index", 4, 2, 3.5, true},
		{"full series", 5, 5, 3, true},
		{"window too large", 2, 3, 0, false},
		{"end past series", 6, 2, 0, false},
		{"zero window", 3, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TrailingMean(prices, tt.end, tt.window)
			if ok != tt.ok {
				t.Fatalf("TrailingMean ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("TrailingMean = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentChange(t *testing.T) {
	got, ok := PercentChange(100, 110)
	if !ok || got < 0.0999999 || got > 0.1000001 {
		t.Fatalf("PercentChange(100, 110) = %v, %v", got, ok)
	}

	if _, ok := PercentChange(0, 5); ok {
		t.Fatal("PercentChange with zero base should report false")
	}
}

func TestDirection(t *testing.T) {
	if Direction(2, 1) != 1 || Direction(1, 2) != -1 || Direction(1, 1) != 0 {
		t.Fatal("Direction returned unexpected values")
	}
}
