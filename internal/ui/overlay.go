//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"waterflow/internal/partition"
)

// Overlay tints cells by worker band (key 1) and highlights the margin and
// guarded edge cells (key 2).
type Overlay struct {
	part  *partition.Partition
	scale int

	showBands   bool
	showMargins bool
	bandsImg    *ebiten.Image
	marginsImg  *ebiten.Image
}

// NewOverlay constructs an overlay for part.
func NewOverlay(part *partition.Partition, scale int) *Overlay {
	return &Overlay{part: part, scale: scale}
}

// Update toggles the visible layers.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showBands = !o.showBands
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showMargins = !o.showMargins
	}
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.part == nil {
		return
	}
	if o.showBands {
		if o.bandsImg == nil {
			o.bandsImg = o.layer(BandMask(o.part))
		}
		o.blit(screen, o.bandsImg)
	}
	if o.showMargins {
		if o.marginsImg == nil {
			o.marginsImg = o.layer(MarginMask(o.part))
		}
		o.blit(screen, o.marginsImg)
	}
}

// The partition never changes, so each layer is built once.
func (o *Overlay) layer(pix []byte) *ebiten.Image {
	size := o.part.Size()
	img := ebiten.NewImage(size.W, size.H)
	img.WritePixels(pix)
	return img
}

func (o *Overlay) blit(screen, img *ebiten.Image) {
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(img, op)
}
