package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterflow/internal/partition"
)

func TestNewBoundaryLockPolicies(t *testing.T) {
	p, err := partition.Build(2, 10, 6, nil)
	require.NoError(t, err)

	l, err := NewBoundaryLock(LockGlobal, p)
	require.NoError(t, err)
	assert.IsType(t, &globalLock{}, l)

	l, err = NewBoundaryLock("", p)
	require.NoError(t, err)
	assert.IsType(t, &globalLock{}, l)

	l, err = NewBoundaryLock(LockBand, p)
	require.NoError(t, err)
	assert.IsType(t, &bandLock{}, l)

	_, err = NewBoundaryLock("striped", p)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestBandLockTakesEveryBandInReach(t *testing.T) {
	p, err := partition.Build(2, 10, 6, nil)
	require.NoError(t, err)
	l := &bandLock{part: p, mus: make([]sync.Mutex, p.Workers())}

	margin := p.CoordToLinear(4, 3)
	require.Equal(t, []int{0, 1}, p.Reach(margin))

	l.Lock(margin)
	for b := range l.mus {
		assert.Falsef(t, l.mus[b].TryLock(), "band %d should be held", b)
	}
	l.Unlock(margin)
	for b := range l.mus {
		require.Truef(t, l.mus[b].TryLock(), "band %d should be free", b)
		l.mus[b].Unlock()
	}
}
