// Package systems provides ECS systems for the simulation.
package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/config"
)

// MatchPolicy selects among several foods within reach of one agent.
type MatchPolicy uint8

const (
	MatchFirst   MatchPolicy = iota // lowest iteration order wins
	MatchNearest                    // smallest distance wins, ties by iteration order
)

// ParseMatchPolicy converts a config policy name.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch s {
	case config.PolicyFirst, "":
		return MatchFirst, nil
	case config.PolicyNearest:
		return MatchNearest, nil
	}
	return MatchFirst, fmt.Errorf("unknown feeding policy %q", s)
}

func (p MatchPolicy) String() string {
	if p == MatchNearest {
		return config.PolicyNearest
	}
	return config.PolicyFirst
}

// maxCellsPerAxis bounds grid allocation when the eating threshold is tiny.
const maxCellsPerAxis = 64

// foodEntry is one indexed food item.
type foodEntry struct {
	e     ecs.Entity
	order int // position in the environment's food list
	x, y  float64
}

// FoodGrid buckets food by position for reach queries.
// Distances are planar; the grid does not wrap.
type FoodGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]foodEntry
	count    int
}

// NewFoodGrid creates a food index covering [0, gridSize]² with cells sized
// for queries of the given reach.
func NewFoodGrid(gridSize, reach float64) *FoodGrid {
	cellSize := reach
	if cellSize <= 0 || cellSize > gridSize {
		cellSize = gridSize
	}
	if minCell := gridSize / maxCellsPerAxis; cellSize < minCell {
		cellSize = minCell
	}

	cols := int(gridSize/cellSize) + 1
	rows := cols

	cells := make([][]foodEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]foodEntry, 0, 4)
	}

	return &FoodGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all food from the grid.
func (g *FoodGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds a food item with its iteration order.
func (g *FoodGrid) Insert(e ecs.Entity, order int, x, y float64) {
	col, row := g.cell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], foodEntry{e: e, order: order, x: x, y: y})
	g.count++
}

// Len returns the number of indexed items, eaten or not.
func (g *FoodGrid) Len() int {
	return g.count
}

// Match finds the food an agent at (x, y) eats. Only food strictly closer than
// reach counts, and food for which eaten returns true is skipped. A non-positive
// reach never matches.
func (g *FoodGrid) Match(x, y, reach float64, policy MatchPolicy, eaten func(ecs.Entity) bool) (ecs.Entity, bool) {
	var zero ecs.Entity
	if reach <= 0 || g.count == 0 {
		return zero, false
	}

	reachSq := reach * reach
	cellRadius := int(reach/g.cellSize) + 1
	centerCol, centerRow := g.cell(x, y)

	best := foodEntry{order: -1}
	bestDistSq := 0.0

	for row := max(centerRow-cellRadius, 0); row <= min(centerRow+cellRadius, g.rows-1); row++ {
		for col := max(centerCol-cellRadius, 0); col <= min(centerCol+cellRadius, g.cols-1); col++ {
			for _, f := range g.cells[row*g.cols+col] {
				distSq := distanceSq(x, y, f.x, f.y)
				if distSq >= reachSq {
					continue
				}
				if best.order >= 0 && !better(policy, f, distSq, best, bestDistSq) {
					continue
				}
				if eaten != nil && eaten(f.e) {
					continue
				}
				best = f
				bestDistSq = distSq
			}
		}
	}

	if best.order < 0 {
		return zero, false
	}
	return best.e, true
}

// better reports whether candidate beats the current best under policy.
func better(policy MatchPolicy, cand foodEntry, candDistSq float64, cur foodEntry, curDistSq float64) bool {
	if policy == MatchNearest && candDistSq != curDistSq {
		return candDistSq < curDistSq
	}
	return cand.order < cur.order
}

// cell returns the clamped column and row for a position.
func (g *FoodGrid) cell(x, y float64) (int, int) {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
