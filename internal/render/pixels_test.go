package render

import (
	"image/color"
	"testing"

	"waterflow/internal/core"
	"waterflow/internal/terrain"
)

func pixelAt(buf []byte, w, x, y int) color.RGBA {
	base := (y*w + x) * 4
	return color.RGBA{R: buf[base], G: buf[base+1], B: buf[base+2], A: buf[base+3]}
}

func TestTerrainIsRowMajorGrayscale(t *testing.T) {
	// 3 columns, 2 rows; the highest point is (2, 0).
	land, err := terrain.New(3, 2, []float64{
		0, 1, 4,
		2, 3, 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf := make([]byte, 4*6)
	fillTerrainRGBA(buf, land, LowLand, HighLand)

	if got := pixelAt(buf, 3, 2, 0); got != HighLand {
		t.Fatalf("expected highest cell to be %v, got %v", HighLand, got)
	}
	if got := pixelAt(buf, 3, 0, 0); got != LowLand {
		t.Fatalf("expected lowest cell to be %v, got %v", LowLand, got)
	}
	mid := pixelAt(buf, 3, 0, 1)
	if mid.R <= LowLand.R || mid.R >= HighLand.R {
		t.Fatalf("expected mid gray for elevation 2, got %v", mid)
	}
}

func TestFlatTerrainUsesLowColor(t *testing.T) {
	land, err := terrain.Flat(2, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf := make([]byte, 16)
	fillTerrainRGBA(buf, land, LowLand, HighLand)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := pixelAt(buf, 2, x, y); got != LowLand {
				t.Fatalf("expected %v at (%d,%d), got %v", LowLand, x, y, got)
			}
		}
	}
}

func TestWaterOverlayFollowsDepth(t *testing.T) {
	size := core.Size{W: 3, H: 2}
	terrainBuf := make([]byte, 4*size.Area())
	for i := range terrainBuf {
		terrainBuf[i] = 7
	}
	palette := []color.RGBA{{R: 1, A: 255}, {R: 2, A: 255}}
	depths := make([]int32, size.Area())
	depths[size.Index(1, 0)] = 1
	depths[size.Index(2, 1)] = 9

	buf := make([]byte, len(terrainBuf))
	fillWaterRGBA(buf, terrainBuf, depths, size, palette)

	if got := pixelAt(buf, 3, 1, 0); got != palette[0] {
		t.Fatalf("expected shallow shade at (1,0), got %v", got)
	}
	if got := pixelAt(buf, 3, 2, 1); got != palette[1] {
		t.Fatalf("expected deepest shade to clamp at (2,1), got %v", got)
	}
	if got := pixelAt(buf, 3, 0, 0); got != (color.RGBA{R: 7, G: 7, B: 7, A: 7}) {
		t.Fatalf("expected dry cell to keep terrain, got %v", got)
	}
}

func TestWaterPaletteEndpoints(t *testing.T) {
	p := waterPalette(WaterLevels, Shallow, Deep)
	if len(p) != WaterLevels {
		t.Fatalf("expected %d shades, got %d", WaterLevels, len(p))
	}
	if p[0] != Shallow || p[len(p)-1] != Deep {
		t.Fatalf("expected palette to run %v..%v, got %v..%v", Shallow, Deep, p[0], p[len(p)-1])
	}
	if waterPalette(0, Shallow, Deep) != nil {
		t.Fatal("expected nil palette for zero levels")
	}
}

func TestFrameComposeIgnoresMismatchedDepths(t *testing.T) {
	land, err := terrain.Bowl(4, 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := NewFrame(land)
	before := append([]byte(nil), f.Compose(make([]int32, 16))...)
	after := f.Compose(make([]int32, 3))
	if string(before) != string(after) {
		t.Fatal("expected short depth slice to leave the frame untouched")
	}

	depths := make([]int32, 16)
	depths[land.Size().Index(1, 2)] = 1
	if got := pixelAt(f.Compose(depths), 4, 1, 2); got != Shallow {
		t.Fatalf("expected shallow water at (1,2), got %v", got)
	}
}

func TestCellAt(t *testing.T) {
	size := core.Size{W: 10, H: 5}
	cases := []struct {
		px, py, scale int
		x, y          int
		ok            bool
	}{
		{0, 0, 4, 0, 0, true},
		{39, 19, 4, 9, 4, true},
		{40, 0, 4, 10, 0, false},
		{-1, 3, 4, 0, 0, false},
		{5, 5, 0, 0, 0, false},
	}
	for _, c := range cases {
		x, y, ok := CellAt(c.px, c.py, c.scale, size)
		if ok != c.ok || (ok && (x != c.x || y != c.y)) {
			t.Fatalf("CellAt(%d,%d,%d): expected (%d,%d,%v), got (%d,%d,%v)", c.px, c.py, c.scale, c.x, c.y, c.ok, x, y, ok)
		}
	}
}
