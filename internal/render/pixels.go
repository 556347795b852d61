// Package render projects the terrain and the water on top of it into RGBA
// pixel buffers. Buffers are row-major (pixel (x, y) at (y*W+x)*4) while the
// simulation stores cells x-major, so every helper here converts between the
// two layouts.
package render

import (
	"image/color"

	"waterflow/internal/core"
	"waterflow/internal/terrain"
)

var (
	// LowLand and HighLand bound the grayscale ramp used for elevation.
	LowLand  = color.RGBA{R: 24, G: 24, B: 24, A: 255}
	HighLand = color.RGBA{R: 236, G: 236, B: 236, A: 255}
	// Shallow and Deep bound the water palette.
	Shallow = color.RGBA{R: 90, G: 160, B: 255, A: 255}
	Deep    = color.RGBA{R: 8, G: 32, B: 140, A: 255}
)

// WaterLevels is the number of distinct water shades; deeper cells share the
// darkest one.
const WaterLevels = 16

// fillTerrainRGBA paints land as a grayscale ramp between low and high. A
// perfectly flat field is painted with low.
func fillTerrainRGBA(buf []byte, land *terrain.HeightField, low, high color.RGBA) {
	size := land.Size()
	min, max := land.Range()
	span := max - min
	for x := 0; x < size.W; x++ {
		for y := 0; y < size.H; y++ {
			t := 0.0
			if span > 0 {
				t = (land.Elevation(x, y) - min) / span
			}
			base := (y*size.W + x) * 4
			buf[base+0] = lerp(low.R, high.R, t)
			buf[base+1] = lerp(low.G, high.G, t)
			buf[base+2] = lerp(low.B, high.B, t)
			buf[base+3] = 255
		}
	}
}

// fillWaterRGBA writes terrain into buf and paints every wet cell with the
// palette entry for its depth. depths is in the simulation's x-major order.
// When the palette is empty only the terrain is copied.
func fillWaterRGBA(buf, terrainBuf []byte, depths []int32, size core.Size, palette []color.RGBA) {
	copy(buf, terrainBuf)
	if len(palette) == 0 {
		return
	}
	last := len(palette) - 1
	for i, d := range depths {
		if d <= 0 {
			continue
		}
		idx := int(d) - 1
		if idx > last {
			idx = last
		}
		x, y := size.Coord(i)
		base := (y*size.W + x) * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// waterPalette returns levels shades running from shallow to deep.
func waterPalette(levels int, shallow, deep color.RGBA) []color.RGBA {
	if levels <= 0 {
		return nil
	}
	palette := make([]color.RGBA, levels)
	for i := range palette {
		t := 0.0
		if levels > 1 {
			t = float64(i) / float64(levels-1)
		}
		palette[i] = color.RGBA{
			R: lerp(shallow.R, deep.R, t),
			G: lerp(shallow.G, deep.G, t),
			B: lerp(shallow.B, deep.B, t),
			A: 255,
		}
	}
	return palette
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// Frame holds the static terrain pixels and composes water over them.
type Frame struct {
	size    core.Size
	terrain []byte
	pixels  []byte
	palette []color.RGBA
}

// NewFrame pre-renders land.
func NewFrame(land *terrain.HeightField) *Frame {
	size := land.Size()
	f := &Frame{
		size:    size,
		terrain: make([]byte, 4*size.Area()),
		pixels:  make([]byte, 4*size.Area()),
		palette: waterPalette(WaterLevels, Shallow, Deep),
	}
	fillTerrainRGBA(f.terrain, land, LowLand, HighLand)
	copy(f.pixels, f.terrain)
	return f
}

// Compose paints depths over the terrain and returns the row-major RGBA
// buffer. The buffer is reused by the next call.
func (f *Frame) Compose(depths []int32) []byte {
	if len(depths) != f.size.Area() {
		return f.pixels
	}
	fillWaterRGBA(f.pixels, f.terrain, depths, f.size, f.palette)
	return f.pixels
}

// Size returns the frame dimensions in cells.
func (f *Frame) Size() core.Size { return f.size }

// CellAt converts a pixel position on a view scaled by scale into a cell
// coordinate. ok is false when the position falls outside the grid.
func CellAt(px, py, scale int, size core.Size) (x, y int, ok bool) {
	if scale <= 0 || px < 0 || py < 0 {
		return 0, 0, false
	}
	x, y = px/scale, py/scale
	return x, y, size.Contains(x, y)
}
