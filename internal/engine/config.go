package engine

import (
	"log/slog"
	"runtime"
	"strconv"
)

// Lock policy names accepted by Config.LockPolicy.
const (
	LockGlobal = "global"
	LockBand   = "band"
)

// Config controls how the engine partitions and synchronizes the grid.
type Config struct {
	// Workers is the number of worker goroutines, fixed for the engine's life.
	Workers int
	// Seed drives the per-band visitation shuffle. Zero seeds from the clock.
	Seed int64
	// Ordered skips the shuffle and visits each band in linear order.
	Ordered bool
	// LockPolicy selects how margin cells are serialized.
	LockPolicy string

	// DropDepth and DropRadius shape deposits requested through the UI.
	DropDepth  int
	DropRadius int

	Logger *slog.Logger
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Workers:    runtime.NumCPU(),
		LockPolicy: LockGlobal,
		DropDepth:  3,
		DropRadius: 3,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Workers = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["ordered"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Ordered = parsed
		}
	}
	if v, ok := cfg["lock"]; ok && (v == LockGlobal || v == LockBand) {
		c.LockPolicy = v
	}
	if v, ok := cfg["drop_depth"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.DropDepth = parsed
		}
	}
	if v, ok := cfg["drop_radius"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.DropRadius = parsed
		}
	}
	return c
}
