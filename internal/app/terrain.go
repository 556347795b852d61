package app

import (
	"fmt"

	"waterflow/internal/terrain"
)

// LoadTerrain reads the height field at path, or generates one from gen when
// path is empty.
func LoadTerrain(path, gen string, width, height int, seed int64) (*terrain.HeightField, error) {
	if path != "" {
		return terrain.LoadFile(path)
	}
	hf, err := terrain.Generate(gen, width, height, seed)
	if err != nil {
		return nil, fmt.Errorf("generate %dx%d terrain: %w", width, height, err)
	}
	return hf, nil
}
