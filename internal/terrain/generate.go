package terrain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ojrac/opensimplex-go"
)

// Generator synthesizes a height field of the requested size.
type Generator func(width, height int, seed int64) (*HeightField, error)

var generators = map[string]Generator{}

// Register adds a terrain generator under the provided name.
func Register(name string, g Generator) {
	if name == "" || g == nil {
		return
	}
	generators[name] = g
}

// Generators lists the registered generator names in sorted order.
func Generators() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate builds a height field from a registered generator name or, when
// spec is not a known name, from an expr formula.
func Generate(spec string, width, height int, seed int64) (*HeightField, error) {
	if g, ok := generators[strings.TrimSpace(spec)]; ok {
		return g(width, height, seed)
	}
	return Formula(width, height, spec)
}

type octave struct {
	seedOffset   int64
	terrainScale float64
	noiseScale   float64
}

var simplexOctaves = []octave{
	{1, 64, 1.0 / 128},
	{2, 16, 1.0 / 32},
	{3, 4, 1.0 / 8},
	{4, 1, 1.0 / 2},
}

// Simplex sums several opensimplex octaves into a rolling landscape.
func Simplex(width, height int, seed int64) (*HeightField, error) {
	noises := make([]opensimplex.Noise, len(simplexOctaves))
	for i, o := range simplexOctaves {
		noises[i] = opensimplex.New(seed + o.seedOffset)
	}
	return FromFunc(width, height, func(x, y int) float64 {
		sum := 0.0
		for i, o := range simplexOctaves {
			sum += o.terrainScale * noises[i].Eval2(float64(x)*o.noiseScale, float64(y)*o.noiseScale)
		}
		return sum
	})
}

// Bowl is a paraboloid with its lowest point at the grid center.
func Bowl(width, height int, _ int64) (*HeightField, error) {
	cx := float64(width-1) / 2
	cy := float64(height-1) / 2
	return FromFunc(width, height, func(x, y int) float64 {
		dx := float64(x) - cx
		dy := float64(y) - cy
		return (dx*dx + dy*dy) / 100
	})
}

// Flat is a level plane at elevation zero.
func Flat(width, height int, _ int64) (*HeightField, error) {
	return FromFunc(width, height, func(int, int) float64 { return 0 })
}

// formulaEnv is the environment visible to terrain formulas.
type formulaEnv struct {
	X, Y, W, H float64
}

func (formulaEnv) Sin(v float64) float64      { return math.Sin(v) }
func (formulaEnv) Cos(v float64) float64      { return math.Cos(v) }
func (formulaEnv) Sqrt(v float64) float64     { return math.Sqrt(v) }
func (formulaEnv) Abs(v float64) float64      { return math.Abs(v) }
func (formulaEnv) Pow(b, e float64) float64   { return math.Pow(b, e) }
func (formulaEnv) Hypot(a, b float64) float64 { return math.Hypot(a, b) }
func (formulaEnv) Min(a, b float64) float64   { return math.Min(a, b) }
func (formulaEnv) Max(a, b float64) float64   { return math.Max(a, b) }

// Formula evaluates an expr expression at every cell. X and Y are the cell
// coordinates, W and H the grid dimensions.
func Formula(width, height int, src string) (*HeightField, error) {
	path := "expr:" + src
	prog, err := expr.Compile(src, expr.Env(formulaEnv{}))
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	var evalErr error
	hf, err := FromFunc(width, height, func(x, y int) float64 {
		if evalErr != nil {
			return 0
		}
		v, err := evalFormula(prog, formulaEnv{X: float64(x), Y: float64(y), W: float64(width), H: float64(height)})
		if err != nil {
			evalErr = err
		}
		return v
	})
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if evalErr != nil {
		return nil, &LoadError{Path: path, Err: evalErr}
	}
	return hf, nil
}

func evalFormula(prog *vm.Program, env formulaEnv) (float64, error) {
	out, err := vm.Run(prog, env)
	if err != nil {
		return 0, err
	}
	switch v := out.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: formula result %v is not a finite elevation", ErrMalformed, v)
		}
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: formula result %v (%T) is not a number", ErrMalformed, out, out)
	}
}

func init() {
	Register("simplex", Simplex)
	Register("bowl", Bowl)
	Register("flat", Flat)
}
