package terrain

import (
	"fmt"
	"math"

	"waterflow/internal/core"
)

// HeightField is an immutable grid of elevations. It is written once at
// construction and shared read-only between simulation workers.
type HeightField struct {
	size      core.Size
	elevation []float64 // x-major, see core.Size.Index
}

// New builds a height field from values given row by row (y outer, x inner),
// the order used by the terrain file format.
func New(width, height int, values []float64) (*HeightField, error) {
	size := core.Size{W: width, H: height}
	if !size.Valid() {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	if len(values) != size.Area() {
		return nil, fmt.Errorf("%w: have %d values, need %d", ErrShortData, len(values), size.Area())
	}
	hf := &HeightField{size: size, elevation: make([]float64, size.Area())}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			hf.elevation[size.Index(x, y)] = values[y*width+x]
		}
	}
	return hf, nil
}

// FromFunc builds a height field by sampling fn at every cell.
func FromFunc(width, height int, fn func(x, y int) float64) (*HeightField, error) {
	size := core.Size{W: width, H: height}
	if !size.Valid() {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	hf := &HeightField{size: size, elevation: make([]float64, size.Area())}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			hf.elevation[size.Index(x, y)] = fn(x, y)
		}
	}
	return hf, nil
}

// Width returns the number of columns.
func (h *HeightField) Width() int { return h.size.W }

// Height returns the number of rows.
func (h *HeightField) Height() int { return h.size.H }

// Size returns the grid dimensions.
func (h *HeightField) Size() core.Size { return h.size }

// Elevation returns the height at (x, y). Coordinates must be in range.
func (h *HeightField) Elevation(x, y int) float64 {
	if !h.size.Contains(x, y) {
		panic(fmt.Sprintf("terrain: elevation(%d, %d) outside %dx%d grid", x, y, h.size.W, h.size.H))
	}
	return h.elevation[h.size.Index(x, y)]
}

// At returns the height stored at linear index i.
func (h *HeightField) At(i int) float64 { return h.elevation[i] }

// Range reports the lowest and highest elevation in the field.
func (h *HeightField) Range() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range h.elevation {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
