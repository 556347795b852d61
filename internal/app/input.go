package app

import (
	"waterflow/internal/core"
	"waterflow/internal/render"
)

// dropTarget returns the cell a click at (mx, my) drops water on. Only the
// frame the button went down counts; holding it does not repeat the drop.
func dropTarget(justPressed bool, mx, my, scale int, size core.Size) (x, y int, ok bool) {
	if !justPressed {
		return 0, 0, false
	}
	return render.CellAt(mx, my, scale, size)
}
