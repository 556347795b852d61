// Command flow-bench runs the water engine without a window and reports how
// fast each lock policy advances generations on the same terrain.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"waterflow/internal/app"
	"waterflow/internal/core"
	"waterflow/internal/engine"
	"waterflow/internal/terrain"
)

type options struct {
	generations int
	drops       int
	depth       int
	radius      int
	reportEvery int
	workers     int
	seed        int64
}

type scenarioResult struct {
	policy      string
	generations uint64
	elapsed     time.Duration
	water       int
	wet         int
	deposited   int
}

func (r scenarioResult) rate() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.generations) / r.elapsed.Seconds()
}

func main() {
	file := flag.String("file", "", "height-field file; generated terrain is used when empty")
	gen := flag.String("gen", "simplex", "terrain generator name or expr formula")
	width := flag.Int("width", 256, "generated terrain width")
	height := flag.Int("height", 256, "generated terrain height")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines per engine")
	generations := flag.Int("generations", 500, "passes to run per scenario")
	drops := flag.Int("drops", 20, "random water drops before the run")
	depth := flag.Int("drop-depth", 6, "depth of each drop")
	radius := flag.Int("drop-radius", 3, "radius of each drop")
	seed := flag.Int64("seed", 1, "seed for terrain, drops and visitation order")
	locks := flag.String("lock", "global,band", "comma-separated lock policies to compare")
	parallel := flag.Int("parallel", 1, "scenarios to run at once")
	reportEvery := flag.Int("report-every", 100, "log progress every N generations (0 disables)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	level, err := app.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	land, err := app.LoadTerrain(*file, *gen, *width, *height, *seed)
	if err != nil {
		logger.Error("load terrain", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		generations: *generations,
		drops:       *drops,
		depth:       *depth,
		radius:      *radius,
		reportEvery: *reportEvery,
		workers:     *workers,
		seed:        *seed,
	}
	policies := strings.Split(*locks, ",")
	logger.Info("benchmark starting",
		"width", land.Width(),
		"height", land.Height(),
		"workers", opts.workers,
		"generations", opts.generations,
		"policies", len(policies))

	results := make([]scenarioResult, len(policies))
	g, gctx := errgroup.WithContext(ctx)
	if *parallel > 0 {
		g.SetLimit(*parallel)
	}
	for i, policy := range policies {
		policy = strings.TrimSpace(policy)
		g.Go(func() error {
			res, err := runScenario(gctx, land, policy, opts, logger.With("lock", policy))
			if err != nil {
				return fmt.Errorf("lock %s: %w", policy, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("benchmark failed", "error", err)
		os.Exit(1)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].rate() > results[j].rate() })
	for i, res := range results {
		logger.Info("result",
			"rank", i+1,
			"lock", res.policy,
			"generations", res.generations,
			"elapsed", res.elapsed.Round(time.Millisecond),
			"gens_per_sec", fmt.Sprintf("%.1f", res.rate()),
			"deposited", res.deposited,
			"water", res.water,
			"wet", res.wet)
	}
}

func runScenario(ctx context.Context, land *terrain.HeightField, policy string, opts options, logger *slog.Logger) (scenarioResult, error) {
	ecfg := engine.DefaultConfig()
	ecfg.Workers = opts.workers
	ecfg.Seed = opts.seed
	ecfg.LockPolicy = policy
	ecfg.Logger = logger
	e, err := engine.New(land, ecfg)
	if err != nil {
		return scenarioResult{}, err
	}

	// Drops land before Run, so every policy starts from the same water.
	rng := core.NewRNG(opts.seed)
	size := land.Size()
	for i := 0; i < opts.drops; i++ {
		e.Deposit(rng.IntN(size.W), rng.IntN(size.H), opts.depth, opts.radius)
	}
	deposited := e.Field().Total()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- e.Run(runCtx) }()
	<-e.Ready()

	chunk := opts.reportEvery
	if chunk <= 0 || chunk > opts.generations {
		chunk = opts.generations
	}
	start := time.Now()
	for done := 0; done < opts.generations; done += chunk {
		n := min(chunk, opts.generations-done)
		if err := e.Step(ctx, n); err != nil {
			cancel()
			<-errc
			return scenarioResult{}, err
		}
		if opts.reportEvery > 0 {
			logger.Info("progress",
				"generation", e.Generation(),
				"water", e.Field().Total(),
				"wet", e.Field().Wet())
		}
	}
	elapsed := time.Since(start)

	e.Stop()
	if err := <-errc; err != nil {
		return scenarioResult{}, err
	}
	return scenarioResult{
		policy:      policy,
		generations: e.Generation(),
		elapsed:     elapsed,
		water:       e.Field().Total(),
		wet:         e.Field().Wet(),
		deposited:   deposited,
	}, nil
}
