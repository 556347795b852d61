// Package engine runs the water simulation on a fixed pool of workers. Each
// worker owns one band of the grid, walks it once per pass, and meets the
// others at a barrier that advances the generation counter. External requests
// (deposits, resets, single steps) are queued and applied by the barrier's
// release action, when no worker is mid-pass.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"waterflow/internal/core"
	"waterflow/internal/partition"
	"waterflow/internal/terrain"
	"waterflow/internal/water"
)

var (
	// ErrInvariantViolation marks use of an engine that was not built by New
	// or a second call to Run.
	ErrInvariantViolation = errors.New("engine: invariant violation")
	// ErrStopped is returned by requests that can no longer be honored.
	ErrStopped = errors.New("engine: stopped")
	// ErrNotRunning is returned by Step before Run was called.
	ErrNotRunning = errors.New("engine: not running")
	// ErrInterrupted is returned by Step when Play, Pause or Reset cancels it.
	ErrInterrupted = errors.New("engine: step interrupted")
)

type commandKind uint8

const (
	cmdDeposit commandKind = iota
	cmdReset
	cmdStep
)

type command struct {
	kind          commandKind
	x, y          int
	depth, radius int
	passes        int
	done          chan struct{}
	result        chan error
}

// round is what every worker does until the next rendezvous. It is written
// only by the barrier's release action.
type round struct {
	run   bool
	stop  bool
	epoch uint64
}

// Engine drives repeated passes over a depth field.
type Engine struct {
	cfg   Config
	land  *terrain.HeightField
	field *water.Field
	part  *partition.Partition
	lock  BoundaryLock
	log   *slog.Logger

	barrier      *Barrier
	round        round
	ready        chan struct{}
	onGeneration func(uint64)

	generation atomic.Uint64
	dirty      atomic.Bool
	dropDepth  atomic.Int64
	dropRadius atomic.Int64

	mu       sync.Mutex
	wake     *sync.Cond
	paused   bool
	stopped  bool
	started  bool
	running  bool
	epoch    uint64
	pending  []command
	stepLeft int
	stepDone chan error
}

// New builds an engine for land. The engine starts paused; call Run to start
// the workers and Play to let them move water.
func New(land *terrain.HeightField, cfg Config) (*Engine, error) {
	if land == nil {
		return nil, fmt.Errorf("%w: nil height field", ErrInvariantViolation)
	}
	size := land.Size()
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > size.Area() {
		workers = size.Area()
	}
	cfg.Workers = workers
	if cfg.LockPolicy == "" {
		cfg.LockPolicy = LockGlobal
	}

	var shuffle partition.ShuffleFunc
	if !cfg.Ordered {
		shuffle = core.NewRNG(cfg.Seed).Shuffle
	}
	part, err := partition.Build(workers, size.W, size.H, shuffle)
	if err != nil {
		return nil, fmt.Errorf("partition grid: %w", err)
	}
	lock, err := NewBoundaryLock(cfg.LockPolicy, part)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:    cfg,
		land:   land,
		field:  water.NewField(land),
		part:   part,
		lock:   lock,
		log:    logger,
		paused: true,
		ready:  make(chan struct{}),
	}
	e.wake = sync.NewCond(&e.mu)
	e.barrier = NewBarrier(workers, e.release)
	e.dropDepth.Store(int64(cfg.DropDepth))
	e.dropRadius.Store(int64(cfg.DropRadius))
	return e, nil
}

func (e *Engine) check() error {
	if e == nil || e.part == nil || e.field == nil || e.barrier == nil {
		return fmt.Errorf("%w: engine used before partitions were built", ErrInvariantViolation)
	}
	return nil
}

func (e *Engine) mustCheck() {
	if err := e.check(); err != nil {
		panic(err)
	}
}

// OnGeneration registers fn to be called after every completed pass with the
// new generation number. It runs on a worker goroutine while all workers are
// parked at the barrier, so it must not block on the engine. Call it before Run.
func (e *Engine) OnGeneration(fn func(gen uint64)) {
	e.mustCheck()
	e.onGeneration = fn
}

// Run starts the workers and blocks until Stop is called, ctx ends, or a
// worker fails. An engine runs at most once.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.check(); err != nil {
		return err
	}
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return fmt.Errorf("%w: Run called twice", ErrInvariantViolation)
	}
	e.started = true
	e.running = true
	e.round = round{run: !e.paused && !e.stopped, stop: e.stopped, epoch: e.epoch}
	close(e.ready)
	e.mu.Unlock()

	e.log.Info("engine started",
		"workers", e.part.Workers(),
		"width", e.land.Width(),
		"height", e.land.Height(),
		"lock", e.cfg.LockPolicy)

	g, gctx := errgroup.WithContext(ctx)
	unwake := context.AfterFunc(gctx, e.broadcast)
	defer unwake()
	for w := 0; w < e.part.Workers(); w++ {
		g.Go(func() error { return e.work(gctx, w) })
	}
	err := g.Wait()

	e.mu.Lock()
	e.running = false
	e.stopped = true
	e.cancelStepLocked(ErrStopped)
	pending := e.pending
	e.pending = nil
	for _, c := range pending {
		e.applyLocked(c)
	}
	e.mu.Unlock()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		e.log.Error("engine stopped", "generation", e.Generation(), "error", err)
		return err
	}
	e.log.Info("engine stopped", "generation", e.Generation())
	return nil
}

func (e *Engine) work(ctx context.Context, id int) error {
	order := e.part.Order(id)
	for {
		r := e.round
		if r.stop {
			return nil
		}
		if r.run {
			e.pass(order)
		} else {
			e.idle(ctx, r.epoch)
		}
		if err := e.barrier.Wait(ctx); err != nil {
			return fmt.Errorf("worker %d: %w", id, err)
		}
	}
}

func (e *Engine) pass(order []int) {
	changed := false
	for _, idx := range order {
		var moved bool
		switch e.part.Classify(idx) {
		case partition.Edge:
			if e.part.Guarded(idx) {
				e.lock.Lock(idx)
				moved = e.field.DrainAt(idx)
				e.lock.Unlock(idx)
			} else {
				moved = e.field.DrainAt(idx)
			}
		case partition.Margin:
			e.lock.Lock(idx)
			moved = e.field.TransferAt(idx)
			e.lock.Unlock(idx)
		default:
			moved = e.field.TransferAt(idx)
		}
		changed = changed || moved
	}
	if changed {
		e.dirty.Store(true)
	}
}

// idle parks a worker until some control call changes the engine state.
func (e *Engine) idle(ctx context.Context, epoch uint64) {
	e.mu.Lock()
	for e.epoch == epoch && ctx.Err() == nil {
		e.wake.Wait()
	}
	e.mu.Unlock()
}

func (e *Engine) broadcast() {
	e.mu.Lock()
	e.wake.Broadcast()
	e.mu.Unlock()
}

func (e *Engine) bumpLocked() {
	e.epoch++
	e.wake.Broadcast()
}

// release runs once per rendezvous on the last worker to arrive.
func (e *Engine) release() {
	ran := e.round.run
	var gen uint64
	if ran {
		gen = e.generation.Add(1)
	}

	e.mu.Lock()
	if ran && e.stepLeft > 0 {
		e.stepLeft--
		if e.stepLeft == 0 {
			e.paused = true
			e.finishStepLocked(nil)
		}
	}
	pending := e.pending
	e.pending = nil
	for _, c := range pending {
		e.applyLocked(c)
	}
	e.round = round{run: !e.paused && !e.stopped, stop: e.stopped, epoch: e.epoch}
	e.mu.Unlock()

	// A reset applied above discards the pass that just finished.
	if ran && e.generation.Load() == gen {
		if e.log.Enabled(context.Background(), slog.LevelDebug) {
			e.log.Debug("generation complete", "generation", gen, "water", e.field.Total())
		}
		if e.onGeneration != nil {
			e.onGeneration(gen)
		}
	}
}

func (e *Engine) applyLocked(c command) {
	switch c.kind {
	case cmdDeposit:
		e.field.Deposit(c.x, c.y, c.depth, c.radius)
		e.dirty.Store(true)
	case cmdReset:
		e.paused = true
		e.cancelStepLocked(ErrInterrupted)
		e.field.Reset()
		e.generation.Store(0)
		e.dirty.Store(true)
		close(c.done)
		e.log.Info("engine reset")
	case cmdStep:
		if e.stopped {
			c.result <- ErrStopped
			return
		}
		e.cancelStepLocked(ErrInterrupted)
		e.stepLeft = c.passes
		e.stepDone = c.result
		e.paused = false
	}
}

func (e *Engine) finishStepLocked(err error) {
	if e.stepDone != nil {
		e.stepDone <- err
		e.stepDone = nil
	}
}

func (e *Engine) cancelStepLocked(err error) {
	if e.stepLeft > 0 || e.stepDone != nil {
		e.stepLeft = 0
		e.finishStepLocked(err)
	}
}

// dropQueuedStepsLocked fails step requests that have not reached a barrier yet.
func (e *Engine) dropQueuedStepsLocked(err error) {
	kept := e.pending[:0]
	for _, c := range e.pending {
		if c.kind == cmdStep {
			c.result <- err
			continue
		}
		kept = append(kept, c)
	}
	e.pending = kept
}

// Ready is closed once Run has started accepting queued requests.
func (e *Engine) Ready() <-chan struct{} {
	e.mustCheck()
	return e.ready
}

// Play lets the workers run passes continuously.
func (e *Engine) Play() {
	e.mustCheck()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelStepLocked(ErrInterrupted)
	e.dropQueuedStepsLocked(ErrInterrupted)
	e.paused = false
	e.bumpLocked()
}

// Pause stops the workers after their current pass.
func (e *Engine) Pause() {
	e.mustCheck()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelStepLocked(ErrInterrupted)
	e.dropQueuedStepsLocked(ErrInterrupted)
	e.paused = true
	e.bumpLocked()
}

// Stop asks the workers to exit after their current pass. It is terminal.
func (e *Engine) Stop() {
	e.mustCheck()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	e.cancelStepLocked(ErrStopped)
	e.bumpLocked()
}

// Reset pauses the engine, then empties every cell and sets the generation
// back to zero once all workers are parked at the barrier. It blocks until
// the reset has been applied or ctx ends.
func (e *Engine) Reset(ctx context.Context) error {
	if err := e.check(); err != nil {
		return err
	}
	e.mu.Lock()
	e.paused = true
	e.cancelStepLocked(ErrInterrupted)
	if !e.running {
		e.applyLocked(command{kind: cmdReset, done: make(chan struct{})})
		e.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	e.pending = append(e.pending, command{kind: cmdReset, done: done})
	e.bumpLocked()
	e.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step runs exactly n passes and pauses again. It blocks until they complete,
// ctx ends, or another control call interrupts the step.
func (e *Engine) Step(ctx context.Context, n int) error {
	if err := e.check(); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	result := make(chan error, 1)
	e.mu.Lock()
	switch {
	case e.stopped:
		e.mu.Unlock()
		return ErrStopped
	case !e.running:
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.pending = append(e.pending, command{kind: cmdStep, passes: n, result: result})
	e.bumpLocked()
	e.mu.Unlock()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deposit sets depth within the square of radius around (x, y). While the
// workers run, the request is applied between passes. Cells outside the grid
// are ignored.
func (e *Engine) Deposit(x, y, depth, radius int) {
	e.mustCheck()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		e.field.Deposit(x, y, depth, radius)
		e.dirty.Store(true)
		return
	}
	e.pending = append(e.pending, command{kind: cmdDeposit, x: x, y: y, depth: depth, radius: radius})
	e.bumpLocked()
}

// Drop deposits water using the configured drop depth and radius.
func (e *Engine) Drop(x, y int) {
	e.Deposit(x, y, int(e.dropDepth.Load()), int(e.dropRadius.Load()))
}

// Generation returns the number of passes completed since the last reset.
func (e *Engine) Generation() uint64 { return e.generation.Load() }

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Stopped reports whether Stop was called or the workers have exited.
func (e *Engine) Stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// Dimensions returns the grid width and height.
func (e *Engine) Dimensions() (int, int) {
	e.mustCheck()
	return e.land.Width(), e.land.Height()
}

// Size returns the grid dimensions.
func (e *Engine) Size() core.Size {
	e.mustCheck()
	return e.land.Size()
}

// DepthAt returns the water depth at (x, y), or 0 outside the grid.
func (e *Engine) DepthAt(x, y int) int {
	e.mustCheck()
	if !e.land.Size().Contains(x, y) {
		return 0
	}
	return e.field.Depth(x, y)
}

// Dirty reports whether any cell changed since the previous call.
func (e *Engine) Dirty() bool { return e.dirty.Swap(false) }

// Field exposes the depth field for read-only projection.
func (e *Engine) Field() *water.Field {
	e.mustCheck()
	return e.field
}

// Land exposes the height field.
func (e *Engine) Land() *terrain.HeightField {
	e.mustCheck()
	return e.land
}

// Partition exposes the worker partition.
func (e *Engine) Partition() *partition.Partition {
	e.mustCheck()
	return e.part
}
