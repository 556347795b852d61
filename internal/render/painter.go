//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"waterflow/internal/terrain"
)

// GridPainter uploads composed frames into a single ebiten image.
type GridPainter struct {
	frame *Frame
	img   *ebiten.Image
}

// NewGridPainter allocates a painter for land.
func NewGridPainter(land *terrain.HeightField) *GridPainter {
	return &GridPainter{
		frame: NewFrame(land),
		img:   ebiten.NewImage(land.Width(), land.Height()),
	}
}

// Update recomposes the image from depths. Call it only when the water moved.
func (gp *GridPainter) Update(depths []int32) {
	gp.img.WritePixels(gp.frame.Compose(depths))
}

// Blit draws the last composed image scaled onto dst.
func (gp *GridPainter) Blit(dst *ebiten.Image, scale int) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) {
	s := gp.frame.Size()
	return s.W, s.H
}
