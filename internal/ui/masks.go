package ui

import (
	"image/color"

	"waterflow/internal/partition"
)

var bandTints = []color.RGBA{
	{R: 120, G: 40, B: 40, A: 70},
	{R: 40, G: 120, B: 40, A: 70},
	{R: 40, G: 40, B: 120, A: 70},
	{R: 120, G: 120, B: 30, A: 70},
}

var (
	marginTint  = color.RGBA{R: 200, G: 90, B: 0, A: 120}
	guardedTint = color.RGBA{R: 200, G: 0, B: 160, A: 120}
)

// BandMask returns alpha-premultiplied row-major RGBA pixels tinting each cell by
// the band that owns it.
func BandMask(p *partition.Partition) []byte {
	size := p.Size()
	buf := make([]byte, 4*size.Area())
	for i := 0; i < size.Area(); i++ {
		putTint(buf, p, i, bandTints[p.Owner(i)%len(bandTints)])
	}
	return buf
}

// MarginMask returns alpha-premultiplied row-major RGBA pixels marking margin cells and guarded
// edge cells; everything else is transparent.
func MarginMask(p *partition.Partition) []byte {
	size := p.Size()
	buf := make([]byte, 4*size.Area())
	for i := 0; i < size.Area(); i++ {
		switch {
		case p.Classify(i) == partition.Margin:
			putTint(buf, p, i, marginTint)
		case p.Guarded(i):
			putTint(buf, p, i, guardedTint)
		}
	}
	return buf
}

// premultiply scales the color channels by alpha, as WritePixels expects.
func premultiply(c color.RGBA) color.RGBA {
	a := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R)*a + 127) / 255),
		G: uint8((uint32(c.G)*a + 127) / 255),
		B: uint8((uint32(c.B)*a + 127) / 255),
		A: c.A,
	}
}

func putTint(buf []byte, p *partition.Partition, i int, c color.RGBA) {
	c = premultiply(c)
	x, y := p.LinearToCoord(i)
	base := (y*p.Size().W + x) * 4
	buf[base+0] = c.R
	buf[base+1] = c.G
	buf[base+2] = c.B
	buf[base+3] = c.A
}
