package core

// The height field, the depth field and the partitioner all agree on one
// linear order: x is the outer dimension, so index = x*H + y. A contiguous
// range of indices is therefore a contiguous band of x values.

// Index returns the linear index for coordinates (x, y).
func (s Size) Index(x, y int) int { return x*s.H + y }

// Coord converts a linear index back into (x, y).
func (s Size) Coord(i int) (int, int) { return i / s.H, i % s.H }

// Contains reports whether (x, y) lies inside the grid.
func (s Size) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.W && y < s.H
}

// OnBorder reports whether (x, y) is on the outermost ring of the grid.
func (s Size) OnBorder(x, y int) bool {
	return x == 0 || y == 0 || x == s.W-1 || y == s.H-1
}

