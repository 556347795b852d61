// Package partition splits the grid's linear index range into contiguous
// per-worker bands and precomputes which cells need synchronized access.
package partition

import (
	"errors"
	"fmt"
	"slices"

	"waterflow/internal/core"
)

// ErrInvalid reports unusable worker counts or grid dimensions.
var ErrInvalid = errors.New("partition: invalid arguments")

// ShuffleFunc permutes n elements through swap; rand.Shuffle has this shape.
type ShuffleFunc func(n int, swap func(i, j int))

// Class tells a worker how to treat a cell during a pass.
type Class uint8

const (
	// Interior cells are touched by exactly one worker per pass.
	Interior Class = iota
	// Margin cells can share neighbors with cells owned by another worker.
	Margin
	// Edge cells lie on the grid border and are drained instead of transferred.
	Edge
)

func (c Class) String() string {
	switch c {
	case Interior:
		return "interior"
	case Margin:
		return "margin"
	case Edge:
		return "edge"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// reach is the Chebyshev distance at which two transfers may touch the same
// cell: each reads and writes its own 3x3 neighborhood.
const reach = 2

// Partition assigns every grid cell to exactly one worker.
type Partition struct {
	size    core.Size
	workers int
	bounds  []int   // band i covers [bounds[i], bounds[i+1])
	orders  [][]int // per-worker visitation order
	owner   []int32
	class   []Class
	guarded []bool
	reach   [][]int // bands within reach, only for guarded cells
}

// Build splits [0, width*height) into workers contiguous bands and shuffles
// each band's visitation order with shuffle. A nil shuffle keeps linear order.
func Build(workers, width, height int, shuffle ShuffleFunc) (*Partition, error) {
	size := core.Size{W: width, H: height}
	if !size.Valid() || workers < 1 || workers > size.Area() {
		return nil, fmt.Errorf("%w: %d workers for %dx%d grid", ErrInvalid, workers, width, height)
	}
	total := size.Area()
	p := &Partition{
		size:    size,
		workers: workers,
		bounds:  make([]int, workers+1),
		orders:  make([][]int, workers),
		owner:   make([]int32, total),
		class:   make([]Class, total),
		guarded: make([]bool, total),
		reach:   make([][]int, total),
	}
	// Every band holds total/workers cells; the last also takes the remainder.
	for i := 0; i < workers; i++ {
		p.bounds[i] = i * (total / workers)
	}
	p.bounds[workers] = total
	for w := 0; w < workers; w++ {
		lo, hi := p.bounds[w], p.bounds[w+1]
		order := make([]int, 0, hi-lo)
		for idx := lo; idx < hi; idx++ {
			order = append(order, idx)
			p.owner[idx] = int32(w)
		}
		if shuffle != nil {
			shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		p.orders[w] = order
	}
	p.classify()
	return p, nil
}

func (p *Partition) classify() {
	for idx := range p.class {
		x, y := p.size.Coord(idx)
		own := int(p.owner[idx])
		bands := []int{own}
		for dx := -reach; dx <= reach; dx++ {
			for dy := -reach; dy <= reach; dy++ {
				cx, cy := x+dx, y+dy
				if !p.size.Contains(cx, cy) {
					continue
				}
				if b := int(p.owner[p.size.Index(cx, cy)]); !slices.Contains(bands, b) {
					bands = append(bands, b)
				}
			}
		}
		shared := len(bands) > 1
		switch {
		case p.size.OnBorder(x, y):
			p.class[idx] = Edge
		case shared:
			p.class[idx] = Margin
		default:
			p.class[idx] = Interior
		}
		if shared {
			slices.Sort(bands)
			p.guarded[idx] = true
			p.reach[idx] = bands
		}
	}
}

// Workers returns the number of bands.
func (p *Partition) Workers() int { return p.workers }

// Size returns the grid dimensions.
func (p *Partition) Size() core.Size { return p.size }

// Order returns the visitation order for worker w. Callers must not modify it.
func (p *Partition) Order(w int) []int { return p.orders[w] }

// Band returns the half-open linear index range owned by worker w.
func (p *Partition) Band(w int) (lo, hi int) { return p.bounds[w], p.bounds[w+1] }

// Owner returns the worker that owns linear index i.
func (p *Partition) Owner(i int) int { return int(p.owner[i]) }

// Classify returns how the owning worker must process linear index i.
func (p *Partition) Classify(i int) Class { return p.class[i] }

// Guarded reports whether cell i can be touched by more than one worker in a
// pass. Margin cells are always guarded; edge cells are when a neighboring
// band's transfer can write them.
func (p *Partition) Guarded(i int) bool { return p.guarded[i] }

// Reach returns the sorted bands whose transfers can touch cell i's
// neighborhood. It is nil for unguarded cells.
func (p *Partition) Reach(i int) []int { return p.reach[i] }

// LinearToCoord converts a linear index into grid coordinates.
func (p *Partition) LinearToCoord(i int) (x, y int) { return p.size.Coord(i) }

// CoordToLinear converts grid coordinates into a linear index.
func (p *Partition) CoordToLinear(x, y int) int { return p.size.Index(x, y) }
