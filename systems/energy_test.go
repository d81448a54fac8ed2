package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/forage/components"
)

func TestIsDead(t *testing.T) {
	tests := []struct {
		name   string
		eaten  int
		energy float64
		want   bool
	}{
		{"fed with energy", 1, 10, false},
		{"starved with energy", 0, 10, true},
		{"fed but exhausted", 3, 0, true},
		{"fed but negative", 1, -5, true},
		{"starved and exhausted", 0, -1, true},
		{"infinite energy fed", 1, math.Inf(1), false},
		{"infinite energy starved", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := components.Forager{FoodEaten: tt.eaten, Energy: tt.energy}
			if got := IsDead(f); got != tt.want {
				t.Errorf("IsDead(%+v) = %v, want %v", f, got, tt.want)
			}
		})
	}
}

func TestResetForager(t *testing.T) {
	traits := components.Traits{BaseEnergy: 25, Speed: 1, Size: 1}
	home := components.Position{X: 0, Y: 4}
	f := NewForager(home, traits)
	pos := home

	// Simulate a day
	pos = components.Position{X: 3, Y: 4}
	f.Energy = -2
	f.FoodEaten = 2

	ResetForager(&pos, &f, traits)
	if pos != home {
		t.Errorf("position = %+v, want home %+v", pos, home)
	}
	if f.Energy != 25 {
		t.Errorf("energy = %v, want 25", f.Energy)
	}
	if f.FoodEaten != 0 {
		t.Errorf("food eaten = %d, want 0", f.FoodEaten)
	}

	// A second reset is a no-op
	posBefore, fBefore := pos, f
	ResetForager(&pos, &f, traits)
	if pos != posBefore || f != fBefore {
		t.Errorf("second reset changed state: %+v/%+v -> %+v/%+v", posBefore, fBefore, pos, f)
	}
}

func TestNewForager(t *testing.T) {
	traits := components.Traits{BaseEnergy: 9}
	home := components.Position{X: 10, Y: 2}
	f := NewForager(home, traits)
	if f.Home != home || f.Energy != 9 || f.FoodEaten != 0 {
		t.Errorf("NewForager = %+v", f)
	}
}
