// Package water holds the mutable depth grid and the cell-level rules that
// move water across a terrain.HeightField.
package water

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"waterflow/internal/core"
	"waterflow/internal/terrain"
)

// Epsilon converts one unit of depth into elevation when comparing surfaces.
const Epsilon = 0.01

// ErrNegative is returned when an update would drive a cell below zero. The
// cell is clamped to zero instead.
var ErrNegative = errors.New("water: depth would become negative")

// Field stores a non-negative integer depth per cell, laid out in the same
// x-major order as the height field. Individual cells are accessed
// atomically so a renderer may read while workers write; check-then-act
// sequences still need external exclusion where two workers can reach the
// same cell.
type Field struct {
	land  *terrain.HeightField
	size  core.Size
	depth []atomic.Int32
}

// NewField returns a dry field covering land.
func NewField(land *terrain.HeightField) *Field {
	size := land.Size()
	return &Field{land: land, size: size, depth: make([]atomic.Int32, size.Area())}
}

// Size returns the grid dimensions.
func (f *Field) Size() core.Size { return f.size }

// Land returns the height field the water sits on.
func (f *Field) Land() *terrain.HeightField { return f.land }

// Depth returns the depth at (x, y).
func (f *Field) Depth(x, y int) int {
	return int(f.depth[f.size.Index(x, y)].Load())
}

// At returns the depth at linear index i.
func (f *Field) At(i int) int { return int(f.depth[i].Load()) }

// Surface returns elevation plus scaled depth at linear index i.
func (f *Field) Surface(i int) float64 {
	return f.land.At(i) + Epsilon*float64(f.depth[i].Load())
}

// SetDelta adds delta to the cell, or empties it when delta is zero.
func (f *Field) SetDelta(x, y, delta int) error {
	return f.setDeltaAt(f.size.Index(x, y), delta)
}

func (f *Field) setDeltaAt(i, delta int) error {
	if delta == 0 {
		f.depth[i].Store(0)
		return nil
	}
	for {
		old := f.depth[i].Load()
		v := int64(old) + int64(delta)
		var err error
		switch {
		case v < 0:
			x, y := f.size.Coord(i)
			err = fmt.Errorf("%w: (%d,%d) delta %d", ErrNegative, x, y, delta)
			v = 0
		case v > math.MaxInt32:
			v = math.MaxInt32
		}
		if f.depth[i].CompareAndSwap(old, int32(v)) {
			return err
		}
	}
}

func clampInt32(v int) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// Drain empties the cell, modelling water leaving the grid.
func (f *Field) Drain(x, y int) {
	f.DrainAt(f.size.Index(x, y))
}

// DrainAt empties the cell at linear index i and reports whether it held water.
func (f *Field) DrainAt(i int) bool {
	return f.depth[i].Swap(0) != 0
}

// neighborOffsets is the fixed Moore scan order. Ties keep the earlier entry.
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Lowest returns the neighbor of (x, y) whose surface is strictly below the
// cell's own and lowest among its neighbors, scanning in fixed order. ok is
// false when no neighbor is strictly lower. (x, y) must not be on the border.
func (f *Field) Lowest(x, y int) (nx, ny int, ok bool) {
	if f.size.OnBorder(x, y) || !f.size.Contains(x, y) {
		panic(fmt.Sprintf("water: neighbor scan at border cell (%d,%d)", x, y))
	}
	best := f.Surface(f.size.Index(x, y))
	for _, off := range neighborOffsets {
		cx, cy := x+off[0], y+off[1]
		if s := f.Surface(f.size.Index(cx, cy)); s < best {
			best = s
			nx, ny, ok = cx, cy, true
		}
	}
	return nx, ny, ok
}

// Transfer moves one unit of water from (x, y) to its lowest neighbor. It is a
// no-op for dry cells and cells with no strictly lower neighbor. (x, y) must
// be an interior cell.
func (f *Field) Transfer(x, y int) (nx, ny int, moved bool) {
	i := f.size.Index(x, y)
	if f.depth[i].Load() == 0 {
		return 0, 0, false
	}
	nx, ny, ok := f.Lowest(x, y)
	if !ok {
		return 0, 0, false
	}
	f.depth[i].Add(-1)
	f.depth[f.size.Index(nx, ny)].Add(1)
	return nx, ny, true
}

// TransferAt is Transfer addressed by linear index.
func (f *Field) TransferAt(i int) bool {
	x, y := f.size.Coord(i)
	_, _, moved := f.Transfer(x, y)
	return moved
}

// Deposit sets every cell in the square of the given radius around (x, y) to
// depth. Cells outside the grid are skipped.
func (f *Field) Deposit(x, y, depth, radius int) {
	if radius < 0 {
		return
	}
	if depth < 0 {
		depth = 0
	}
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			cx, cy := x+dx, y+dy
			if !f.size.Contains(cx, cy) {
				continue
			}
			f.depth[f.size.Index(cx, cy)].Store(clampInt32(depth))
		}
	}
}

// Reset empties every cell.
func (f *Field) Reset() {
	for i := range f.depth {
		f.depth[i].Store(0)
	}
}

// Total returns the sum of all depths.
func (f *Field) Total() int {
	total := 0
	for i := range f.depth {
		total += int(f.depth[i].Load())
	}
	return total
}

// Wet counts cells holding any water.
func (f *Field) Wet() int {
	n := 0
	for i := range f.depth {
		if f.depth[i].Load() > 0 {
			n++
		}
	}
	return n
}

// Snapshot copies the depths in linear order.
func (f *Field) Snapshot() []int32 {
	out := make([]int32, len(f.depth))
	for i := range f.depth {
		out[i] = f.depth[i].Load()
	}
	return out
}
