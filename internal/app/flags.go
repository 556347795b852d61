package app

import (
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"waterflow/internal/engine"
)

// Config represents the command-line parameters for the GUI.
type Config struct {
	Scale      int
	TPS        int
	Workers    int
	Seed       int64
	Lock       string
	DropDepth  int
	DropRadius int
	LogLevel   string
	Gen        string
	Width      int
	Height     int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	ec := engine.DefaultConfig()
	return &Config{
		Scale:      4,
		TPS:        60,
		Workers:    ec.Workers,
		Lock:       ec.LockPolicy,
		DropDepth:  ec.DropDepth,
		DropRadius: ec.DropRadius,
		LogLevel:   "info",
		Gen:        "simplex",
		Width:      200,
		Height:     150,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "screen refreshes per second")
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of worker goroutines")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for visitation order and terrain (0 = clock)")
	fs.StringVar(&c.Lock, "lock", c.Lock, "margin lock policy: global or band")
	fs.IntVar(&c.DropDepth, "drop-depth", c.DropDepth, "depth of water dropped by a click")
	fs.IntVar(&c.DropRadius, "drop-radius", c.DropRadius, "radius of water dropped by a click")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.Gen, "gen", c.Gen, "terrain generator name or expr formula, used when no file is given")
	fs.IntVar(&c.Width, "width", c.Width, "generated terrain width")
	fs.IntVar(&c.Height, "height", c.Height, "generated terrain height")
}

// Engine converts the flags into an engine configuration.
func (c *Config) Engine(logger *slog.Logger) (engine.Config, error) {
	if c.Lock != engine.LockGlobal && c.Lock != engine.LockBand {
		return engine.Config{}, fmt.Errorf("unknown lock policy %q", c.Lock)
	}
	ec := engine.FromMap(map[string]string{
		"workers":     strconv.Itoa(c.Workers),
		"seed":        strconv.FormatInt(c.Seed, 10),
		"lock":        c.Lock,
		"drop_depth":  strconv.Itoa(c.DropDepth),
		"drop_radius": strconv.Itoa(c.DropRadius),
	})
	ec.Logger = logger
	return ec, nil
}

// ParseLevel maps a -log-level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}
