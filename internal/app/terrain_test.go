package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterflow/internal/terrain"
)

func TestLoadTerrainFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hills.txt")
	require.NoError(t, os.WriteFile(path, []byte("2 3\n1 2 3\n4 5 6\n"), 0o644))

	hf, err := LoadTerrain(path, "ignored", 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, hf.Width())
	assert.Equal(t, 2, hf.Height())
	assert.Equal(t, 6.0, hf.Elevation(2, 1))
}

func TestLoadTerrainGenerates(t *testing.T) {
	hf, err := LoadTerrain("", "bowl", 7, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, hf.Width())

	_, err = LoadTerrain("", "X +", 4, 4, 0)
	var loadErr *terrain.LoadError
	assert.ErrorAs(t, err, &loadErr)
}
