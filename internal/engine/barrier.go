package engine

import (
	"context"
	"errors"
	"sync"
)

// ErrBroken is returned by Barrier.Wait once the barrier can no longer trip,
// either because a waiter's context ended or Break was called.
var ErrBroken = errors.New("engine: barrier broken")

// Barrier is a reusable rendezvous for a fixed number of parties. The last
// party to arrive runs the release action while every other party is still
// blocked, then lets them all continue.
type Barrier struct {
	parties int
	action  func()

	mu     sync.Mutex
	cond   *sync.Cond
	count  int
	phase  uint64
	broken bool
}

// NewBarrier returns a barrier for parties participants. action may be nil.
func NewBarrier(parties int, action func()) *Barrier {
	if parties < 1 {
		parties = 1
	}
	b := &Barrier{parties: parties, action: action}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have arrived. It returns ErrBroken if the
// barrier breaks first; a broken barrier stays broken.
func (b *Barrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.broken {
		return ErrBroken
	}

	phase := b.phase
	b.count++
	if b.count == b.parties {
		if b.action != nil {
			b.action()
		}
		b.count = 0
		b.phase++
		b.cond.Broadcast()
		return nil
	}

	stop := context.AfterFunc(ctx, b.Break)
	defer stop()
	for phase == b.phase && !b.broken {
		b.cond.Wait()
	}
	if phase == b.phase {
		return ErrBroken
	}
	return nil
}

// Break releases every waiter with ErrBroken.
func (b *Barrier) Break() {
	b.mu.Lock()
	b.broken = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Phase returns how many times the barrier has tripped.
func (b *Barrier) Phase() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}
