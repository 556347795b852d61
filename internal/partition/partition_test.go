package partition

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterflow/internal/core"
)

func TestBuildCoversEveryCellOnce(t *testing.T) {
	rng := core.NewRNG(11)
	for _, dims := range [][2]int{{1, 1}, {3, 3}, {7, 5}, {16, 9}, {31, 2}} {
		w, h := dims[0], dims[1]
		for workers := 1; workers <= 8 && workers <= w*h; workers++ {
			p, err := Build(workers, w, h, rng.Shuffle)
			require.NoError(t, err)

			seen := make([]int, w*h)
			for wk := 0; wk < workers; wk++ {
				for _, idx := range p.Order(wk) {
					require.GreaterOrEqual(t, idx, 0)
					require.Less(t, idx, w*h)
					seen[idx]++
					require.Equal(t, wk, p.Owner(idx))
				}
			}
			for idx, n := range seen {
				require.Equalf(t, 1, n, "%dx%d/%d workers: index %d visited %d times", w, h, workers, idx, n)
			}
		}
	}
}

func TestBandsAreContiguousAndDeterministic(t *testing.T) {
	a, err := Build(3, 10, 10, core.NewRNG(1).Shuffle)
	require.NoError(t, err)
	b, err := Build(3, 10, 10, core.NewRNG(2).Shuffle)
	require.NoError(t, err)

	prev := 0
	for w := 0; w < 3; w++ {
		lo, hi := a.Band(w)
		assert.Equal(t, prev, lo)
		prev = hi

		blo, bhi := b.Band(w)
		assert.Equal(t, [2]int{lo, hi}, [2]int{blo, bhi}, "band membership must not depend on the shuffle")

		got := slices.Clone(a.Order(w))
		slices.Sort(got)
		want := make([]int, 0, hi-lo)
		for i := lo; i < hi; i++ {
			want = append(want, i)
		}
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 100, prev)
}

func TestLastBandTakesRemainder(t *testing.T) {
	p, err := Build(4, 5, 2, nil)
	require.NoError(t, err)
	for w, want := range [][2]int{{0, 2}, {2, 4}, {4, 6}, {6, 10}} {
		lo, hi := p.Band(w)
		assert.Equalf(t, want, [2]int{lo, hi}, "band %d", w)
	}
}

func TestNilShuffleKeepsLinearOrder(t *testing.T) {
	p, err := Build(2, 3, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, p.Order(0))
	assert.Equal(t, []int{4, 5, 6, 7, 8}, p.Order(1))
}

func TestLinearToCoordIsXMajor(t *testing.T) {
	p, err := Build(1, 4, 3, nil)
	require.NoError(t, err)
	x, y := p.LinearToCoord(7)
	assert.Equal(t, 2, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, 7, p.CoordToLinear(2, 1))
}

func TestClassifySingleWorker(t *testing.T) {
	p, err := Build(1, 3, 3, nil)
	require.NoError(t, err)
	for idx := 0; idx < 9; idx++ {
		x, y := p.LinearToCoord(idx)
		want := Edge
		if x == 1 && y == 1 {
			want = Interior
		}
		assert.Equalf(t, want, p.Classify(idx), "cell (%d,%d)", x, y)
		assert.False(t, p.Guarded(idx))
		assert.Nil(t, p.Reach(idx))
	}
}

func TestClassifyMarginsAroundBandBoundary(t *testing.T) {
	// Two workers on a 10x6 grid: worker 0 owns x in [0,5), worker 1 x in [5,10).
	p, err := Build(2, 10, 6, nil)
	require.NoError(t, err)

	for x := 1; x < 9; x++ {
		idx := p.CoordToLinear(x, 3)
		want := Interior
		if x >= 3 && x <= 6 {
			want = Margin
		}
		assert.Equalf(t, want, p.Classify(idx), "column %d", x)
		if want == Margin {
			assert.Equal(t, []int{0, 1}, p.Reach(idx))
		}
	}

	edge := p.CoordToLinear(4, 0)
	assert.Equal(t, Edge, p.Classify(edge))
	assert.True(t, p.Guarded(edge), "edge cells next to another band are guarded")
	assert.False(t, p.Guarded(p.CoordToLinear(0, 0)))
}

func TestClassifyUnalignedBands(t *testing.T) {
	// 15 cells over 2 workers: the split falls in the middle of column 2.
	p, err := Build(2, 5, 3, nil)
	require.NoError(t, err)
	lo, hi := p.Band(0)
	assert.Equal(t, [2]int{0, 7}, [2]int{lo, hi})
	// Column 2 is split between both bands, so its only interior cell is a margin.
	assert.Equal(t, Margin, p.Classify(p.CoordToLinear(2, 1)))
}

func TestInteriorCellsAreExclusive(t *testing.T) {
	p, err := Build(4, 12, 12, core.NewRNG(3).Shuffle)
	require.NoError(t, err)
	size := p.Size()
	for idx := 0; idx < size.Area(); idx++ {
		if p.Classify(idx) != Interior {
			continue
		}
		x, y := p.LinearToCoord(idx)
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				if !size.Contains(x+dx, y+dy) {
					continue
				}
				require.Equalf(t, p.Owner(idx), p.Owner(size.Index(x+dx, y+dy)),
					"interior cell (%d,%d) within reach of another band", x, y)
			}
		}
	}
}

func TestBuildRejectsInvalidArguments(t *testing.T) {
	for _, tc := range []struct{ workers, w, h int }{
		{0, 3, 3}, {1, 0, 3}, {1, 3, -1}, {10, 3, 3},
	} {
		_, err := Build(tc.workers, tc.w, tc.h, nil)
		assert.ErrorIsf(t, err, ErrInvalid, "%+v", tc)
	}
}
