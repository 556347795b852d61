//go:build ebiten

package app

import (
	"context"
	"errors"
	"log/slog"

	"waterflow/internal/core"
	"waterflow/internal/engine"
	"waterflow/internal/render"
	"waterflow/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hudWidth is the width of the parameter panel in pixels.
const hudWidth = 220

// Game adapts a running engine to the ebiten.Game interface. The engine's
// workers run on their own goroutines; Game only reads depths and forwards
// input.
type Game struct {
	ctx     context.Context
	engine  *engine.Engine
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	repaint *core.FixedStep
	log     *slog.Logger

	scale int
	fresh bool
}

// New constructs a Game for e. ctx bounds the blocking engine calls made on
// behalf of key presses.
func New(ctx context.Context, e *engine.Engine, scale, tps int, logger *slog.Logger) *Game {
	if scale <= 0 {
		scale = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		ctx:     ctx,
		engine:  e,
		painter: render.NewGridPainter(e.Land()),
		hud:     ui.NewHUD(e, hudWidth),
		overlay: ui.NewOverlay(e.Partition(), scale),
		repaint: core.NewFixedStep(tps),
		log:     logger,
		scale:   scale,
		fresh:   true,
	}
}

// Update handles input and decides whether the water image needs a refresh.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.engine.Stop()
		return ebiten.Termination
	}
	if g.engine.Stopped() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.engine.Paused() {
			g.engine.Play()
		} else {
			g.engine.Pause()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.background("step", func() error { return g.engine.Step(g.ctx, 1) })
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.background("reset", func() error { return g.engine.Reset(g.ctx) })
	}
	mx, my := ebiten.CursorPosition()
	if x, y, ok := dropTarget(inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft), mx, my, g.scale, g.engine.Size()); ok {
		g.engine.Drop(x, y)
	}

	g.overlay.Update()
	w, _ := g.engine.Dimensions()
	g.hud.Update(w * g.scale)

	if g.repaint.ShouldStep() && g.engine.Dirty() {
		g.fresh = true
	}
	return nil
}

// background runs a blocking engine call off the ebiten goroutine.
func (g *Game) background(what string, fn func() error) {
	go func() {
		err := fn()
		switch {
		case err == nil:
		case errors.Is(err, engine.ErrInterrupted):
			g.log.Debug("request interrupted", "request", what)
		default:
			g.log.Warn("request failed", "request", what, "error", err)
		}
	}()
}

// Draw renders the terrain, the water and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.fresh {
		g.painter.Update(g.engine.Field().Snapshot())
		g.fresh = false
	}
	g.painter.Blit(screen, g.scale)
	g.overlay.Draw(screen)
	w, h := g.engine.Dimensions()
	g.hud.Draw(screen, w*g.scale, h*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.engine.Dimensions()
	return w*g.scale + g.hud.Width(), h * g.scale
}
