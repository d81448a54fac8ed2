package telemetry

import (
	"math"
	"testing"
)

func TestComputeTraitStats(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		mean     float64
		std      float64
		min, max float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"single", []float64{3}, 3, 0, 3, 3},
		{"constant", []float64{5, 5, 5}, 5, 0, 5, 5},
		{"spread", []float64{9, 2, 4, 4, 5, 4, 7, 5}, 5, 2, 2, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeTraitStats(tt.values)
			if math.Abs(s.Mean-tt.mean) > 1e-12 {
				t.Errorf("Mean = %v, want %v", s.Mean, tt.mean)
			}
			if math.Abs(s.Std-tt.std) > 1e-12 {
				t.Errorf("Std = %v, want %v", s.Std, tt.std)
			}
			if s.Min != tt.min || s.Max != tt.max {
				t.Errorf("range = [%v, %v], want [%v, %v]", s.Min, s.Max, tt.min, tt.max)
			}
			if len(tt.values) == 0 {
				return
			}
			if !(s.Min <= s.P10 && s.P10 <= s.P50 && s.P50 <= s.P90 && s.P90 <= s.Max) {
				t.Errorf("percentiles out of order: min=%v p10=%v p50=%v p90=%v max=%v",
					s.Min, s.P10, s.P50, s.P90, s.Max)
			}
		})
	}
}

func TestComputeTraitStats_DoesNotSortInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeTraitStats(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}
