package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
)

// UniformPlacement draws a position uniformly over [0, gridSize)².
func UniformPlacement(gridSize float64, rng *rand.Rand) components.Position {
	x := rng.Float64() * gridSize
	y := rng.Float64() * gridSize
	return components.Position{X: x, Y: y}
}

// EdgePlacement draws a uniform position and then forces one randomly chosen
// coordinate onto a grid boundary, either 0 or gridSize. A coordinate equal to
// gridSize is wrapped back to 0 the first time the agent moves along that axis.
func EdgePlacement(gridSize float64, rng *rand.Rand) components.Position {
	pos := UniformPlacement(gridSize, rng)

	axis := Axis(rng.Intn(2))
	edge := 0.0
	if rng.Intn(2) == 1 {
		edge = gridSize
	}

	if axis == AxisX {
		pos.X = edge
	} else {
		pos.Y = edge
	}
	return pos
}

// OnEdge reports whether pos lies on a grid boundary.
func OnEdge(pos components.Position, gridSize float64) bool {
	return pos.X == 0 || pos.X == gridSize || pos.Y == 0 || pos.Y == gridSize
}
