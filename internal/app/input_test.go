package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"waterflow/internal/core"
)

func TestDropTargetOnlyOnPress(t *testing.T) {
	size := core.Size{W: 20, H: 10}

	x, y, ok := dropTarget(true, 13, 9, 4, size)
	assert.True(t, ok)
	assert.Equal(t, [2]int{3, 2}, [2]int{x, y})

	_, _, ok = dropTarget(false, 13, 9, 4, size)
	assert.False(t, ok, "a held button must not drop again")

	_, _, ok = dropTarget(true, 20*4+5, 9, 4, size)
	assert.False(t, ok, "clicks on the panel are not drops")
}
