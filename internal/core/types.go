package core

// Size describes the dimensions of a simulation grid. W counts columns (x)
// and H counts rows (y).
type Size struct {
	W int
	H int
}

// Area returns the number of cells covered by the grid.
func (s Size) Area() int { return s.W * s.H }

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.W > 0 && s.H > 0 }
