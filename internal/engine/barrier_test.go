package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrierRunsActionOncePerPhase(t *testing.T) {
	const parties, rounds = 4, 50
	var arrived, actions atomic.Int64
	var mismatch atomic.Bool
	b := NewBarrier(parties, func() {
		if arrived.Load() != int64(parties)*(actions.Load()+1) {
			mismatch.Store(true)
		}
		actions.Add(1)
	})

	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				arrived.Add(1)
				if err := b.Wait(context.Background()); err != nil {
					t.Errorf("unexpected barrier error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(rounds), actions.Load())
	assert.Equal(t, uint64(rounds), b.Phase())
	assert.False(t, mismatch.Load(), "action ran before every party arrived")
}

func TestBarrierBreaksOnContextCancel(t *testing.T) {
	b := NewBarrier(2, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Wait(ctx) }()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrBroken)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter was not released after cancel")
	}

	require.ErrorIs(t, b.Wait(context.Background()), ErrBroken, "broken barrier stays broken")
}

func TestBarrierSinglePartyNeverBlocks(t *testing.T) {
	calls := 0
	b := NewBarrier(1, func() { calls++ })
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Wait(context.Background()))
	}
	assert.Equal(t, 3, calls)
}
