package systems

import "math"

// Wrap maps v onto [0, size) with toroidal wraparound.
func Wrap(v, size float64) float64 {
	m := math.Mod(v, size)
	if m < 0 {
		m += size
	}
	// m+size rounds up to size for tiny negative m
	if m >= size {
		m = 0
	}
	return m
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance between two points.
// The grid wraps for movement only; reach is measured in the plane.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(distanceSq(x1, y1, x2, y2))
}
