package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
)

// Axis identifies the coordinate changed by a move.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// MoveCost returns the energy debited for one step: size³ × speed + sense.
func MoveCost(t components.Traits) float64 {
	return t.Size*t.Size*t.Size*t.Speed + t.Sense
}

// Move displaces the agent by exactly Speed along one random axis in a random
// direction, wrapping the moved coordinate onto [0, gridSize). The other
// coordinate is left untouched. Energy is debited whether or not food is found.
func Move(pos *components.Position, f *components.Forager, t components.Traits, gridSize float64, rng *rand.Rand) Axis {
	axis := Axis(rng.Intn(2))
	step := t.Speed
	if rng.Intn(2) == 0 {
		step = -step
	}

	if axis == AxisX {
		pos.X = Wrap(pos.X+step, gridSize)
	} else {
		pos.Y = Wrap(pos.Y+step, gridSize)
	}

	f.Energy -= MoveCost(t)
	return axis
}
