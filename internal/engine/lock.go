package engine

import (
	"fmt"
	"sync"

	"waterflow/internal/partition"
)

// BoundaryLock serializes work on cells that more than one worker can reach
// during a pass. Lock and Unlock take the linear index of the cell being
// processed.
type BoundaryLock interface {
	Lock(i int)
	Unlock(i int)
}

// NewBoundaryLock returns the lock implementation for policy.
func NewBoundaryLock(policy string, p *partition.Partition) (BoundaryLock, error) {
	switch policy {
	case "", LockGlobal:
		return &globalLock{}, nil
	case LockBand:
		return &bandLock{part: p, mus: make([]sync.Mutex, p.Workers())}, nil
	default:
		return nil, fmt.Errorf("%w: unknown lock policy %q", ErrInvariantViolation, policy)
	}
}

// globalLock funnels every margin update through one mutex.
type globalLock struct {
	mu sync.Mutex
}

func (l *globalLock) Lock(int)   { l.mu.Lock() }
func (l *globalLock) Unlock(int) { l.mu.Unlock() }

// bandLock keeps one mutex per band. A cell locks every band that can reach
// it, in ascending order, so two workers touching the same neighborhood
// always share at least one mutex and never deadlock.
type bandLock struct {
	part *partition.Partition
	mus  []sync.Mutex
}

func (l *bandLock) Lock(i int) {
	for _, b := range l.part.Reach(i) {
		l.mus[b].Lock()
	}
}

func (l *bandLock) Unlock(i int) {
	bands := l.part.Reach(i)
	for k := len(bands) - 1; k >= 0; k-- {
		l.mus[bands[k]].Unlock()
	}
}
