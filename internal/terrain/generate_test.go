package terrain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplexDeterministic(t *testing.T) {
	a, err := Simplex(16, 12, 5)
	require.NoError(t, err)
	b, err := Simplex(16, 12, 5)
	require.NoError(t, err)
	c, err := Simplex(16, 12, 6)
	require.NoError(t, err)

	same, different := true, false
	for x := 0; x < 16; x++ {
		for y := 0; y < 12; y++ {
			if a.Elevation(x, y) != b.Elevation(x, y) {
				same = false
			}
			if a.Elevation(x, y) != c.Elevation(x, y) {
				different = true
			}
		}
	}
	assert.True(t, same, "same seed should give the same terrain")
	assert.True(t, different, "different seeds should give different terrain")
}

func TestBowlLowestAtCenter(t *testing.T) {
	hf, err := Bowl(5, 5, 0)
	require.NoError(t, err)
	lo, _ := hf.Range()
	assert.Equal(t, lo, hf.Elevation(2, 2))
	assert.Greater(t, hf.Elevation(0, 0), hf.Elevation(1, 1))
}

func TestFormula(t *testing.T) {
	hf, err := Formula(4, 3, "X * 2 + Y / 2 + Max(0.0, Sin(0.0))")
	require.NoError(t, err)
	assert.Equal(t, 6.0, hf.Elevation(3, 0))
	assert.Equal(t, 7.0, hf.Elevation(3, 2))
}

func TestFormulaIntegerResult(t *testing.T) {
	hf, err := Formula(2, 2, "7")
	require.NoError(t, err)
	assert.Equal(t, 7.0, hf.Elevation(1, 1))
}

func TestFormulaErrors(t *testing.T) {
	_, err := Formula(2, 2, "X +")
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "expr:X +", le.Path)

	_, err = Formula(2, 2, `"text"`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Formula(2, 2, "Sqrt(X - 5.0)")
	assert.ErrorIs(t, err, ErrMalformed, "NaN elevations are rejected")
}

func TestGenerateByName(t *testing.T) {
	assert.Equal(t, []string{"bowl", "flat", "simplex"}, Generators())

	hf, err := Generate("flat", 3, 3, 0)
	require.NoError(t, err)
	lo, hi := hf.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)

	hf, err = Generate("X", 3, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, hf.Elevation(2, 0))
}
