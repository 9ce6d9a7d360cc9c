package main

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/core"
	"github.com/hubastard/grove2d/engine/gfx/render"
	"github.com/hubastard/grove2d/engine/graphics"
	"github.com/hubastard/grove2d/engine/profiler"
	"github.com/hubastard/grove2d/engine/scene"
)

const (
	tileSize  = 16
	sheetSize = 4 // tiles per side
	insetSize = 256
)

// ------- A simple 2D Layer demo -------
type Layer2D struct {
	cam   *scene.OrthoCamera2D
	ctrl  *scene.OrthoController2D
	sheet int
	batch *graphics.SpriteBatch
	tiles []graphics.SubTexture

	inset      int // small surface redrawn every frame
	sceneSurf  int // full screen surface for the offscreen path
	offscreen  bool
	t          float32
	polygon    []graphics.Vertex
	polyline   []float32
	sceneW     int
	sceneH     int
	wantResize bool
}

func (l *Layer2D) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewOrtho2D(w, h)
	l.cam.SetPosition(0, 0)
	l.ctrl = scene.NewOrthoController2D(l.cam)

	var err error
	l.sheet, err = e.Graphics.LoadTextureFromImage(spriteSheet())
	if err != nil {
		e.Log.Error("sprite sheet", "err", err)
	}
	e.Graphics.SetTextureSmooth(l.sheet, false)
	for cy := range sheetSize {
		for cx := range sheetSize {
			l.tiles = append(l.tiles, e.Graphics.GridCell(l.sheet, cx, cy, tileSize, tileSize))
		}
	}
	l.batch = e.Graphics.NewSpriteBatch(256)

	l.inset = e.Graphics.CreateSurface(insetSize, insetSize)
	l.sceneSurf = render.InvalidID
	l.sceneW, l.sceneH = w, h

	l.polygon = []graphics.Vertex{
		{X: -60, Y: -40, Color: colors.Red},
		{X: 60, Y: -40, Color: colors.Green},
		{X: 80, Y: 30, Color: colors.Blue},
		{X: 0, Y: 70, Color: colors.Yellow},
		{X: -80, Y: 30, Color: colors.Magenta},
	}
	for i := range 32 {
		x := float32(i)*12 - 190
		l.polyline = append(l.polyline, x, 0)
	}
}

func (l *Layer2D) OnDetach(e *core.Engine) {
	e.Graphics.DeleteSurface(l.inset)
	e.Graphics.DeleteSurface(l.sceneSurf)
	e.Graphics.DeleteTexture(l.sheet)
}

func (l *Layer2D) OnUpdate(e *core.Engine, dt float64) {
	l.ctrl.Update(e.Input, float32(dt))
	l.t += float32(dt)

	for i := 1; i < len(l.polyline); i += 2 {
		x := l.polyline[i-1]
		l.polyline[i] = 20 * math32.Sin(x*0.05+l.t*3)
	}

	if e.Input.IsKeyPressed(core.KeyM) {
		l.SetOffscreen(e, !l.offscreen)
	}
	if e.Input.IsKeyDown(core.KeyEscape) {
		e.Window.RequestClose()
	}
}

// SetOffscreen routes the whole scene through a surface that is presented
// at the end of the layer.
func (l *Layer2D) SetOffscreen(e *core.Engine, on bool) {
	l.offscreen = on
	if !on {
		e.Graphics.DeleteSurface(l.sceneSurf)
		l.sceneSurf = render.InvalidID
		return
	}
	l.wantResize = true
}

// Offscreen reports whether the scene is drawn through a surface.
func (l *Layer2D) Offscreen() bool { return l.offscreen }

// RecreateSurfaces rebuilds the surfaces, picking up a new sample count.
func (l *Layer2D) RecreateSurfaces(e *core.Engine) {
	e.Graphics.DeleteSurface(l.inset)
	l.inset = e.Graphics.CreateSurface(insetSize, insetSize)
	if l.offscreen {
		l.wantResize = true
	}
}

func (l *Layer2D) OnRender(e *core.Engine, alpha float64) {
	defer profiler.Start("Layer2D.OnRender")()
	g := e.Graphics

	if l.offscreen && l.wantResize {
		g.DeleteSurface(l.sceneSurf)
		l.sceneSurf = g.CreateSurface(l.sceneW, l.sceneH)
		l.wantResize = false
	}

	l.renderInset(g)

	if l.offscreen {
		g.SetSurface(l.sceneSurf)
		g.Clear()
	}
	l.cam.Apply(g)

	l.renderPrimitives(g)
	l.renderSprites(g)

	g.SetTintColor(colors.White)
	g.DrawTexture(g.SurfaceTexture(l.inset), 220, -insetSize/2)

	if l.offscreen {
		g.PresentSurface(l.sceneSurf)
	}
}

// renderInset draws a spinning fan into the small surface. Its edges show
// the effect of multisampling once the surface is sampled.
func (l *Layer2D) renderInset(g *graphics.Graphics) {
	prev := g.Surface()
	g.SetSurface(l.inset)
	g.Clear()

	g.PushMatrix()
	g.TranslateMatrix(insetSize/2, insetSize/2)
	g.RotateMatrix(l.t * 45)
	g.SetFillColor(colors.Cyan)
	g.SetOutlineColor(colors.White)
	for i := range 6 {
		g.PushMatrix()
		g.RotateMatrix(float32(i) * 60)
		g.DrawTriangle(0, 0, 100, -12, 100, 12)
		g.PopMatrix()
	}
	g.PopMatrix()

	g.SetSurface(prev)
}

func (l *Layer2D) renderPrimitives(g *graphics.Graphics) {
	g.SetFillColor(colors.Blue.WithAlpha(0.6))
	g.SetOutlineColor(colors.White)
	g.DrawRectangle(-300, -200, 120, 80)
	g.DrawCircle(-120, -160, 40+8*math32.Sin(l.t*2))

	g.SetFillColor(colors.Green)
	g.DrawTriangle(-40, -200, 20, -120, -100, -120)

	g.SetLineColor(colors.Yellow)
	g.DrawLine(-300, 100, 300, 100)
	g.PushMatrix()
	g.TranslateMatrix(0, 140)
	g.DrawPolyline(l.polyline)
	g.PopMatrix()

	g.SetPointColor(colors.Red)
	for i := range 10 {
		g.DrawPoint(-300+float32(i)*8, 180)
	}

	g.PushMatrix()
	g.TranslateMatrix(-20, 20)
	g.RotateMatrix(l.t * 30)
	g.DrawPolygon(l.polygon)
	g.PopMatrix()
}

func (l *Layer2D) renderSprites(g *graphics.Graphics) {
	g.SetTintColor(colors.White)
	for i, tile := range l.tiles {
		x := -300 + float32(i%8)*40
		y := 240 + float32(i/8)*40
		l.batch.Draw(tile, x, y, 32, 32, l.t*90*float32(i%3))
	}
	l.batch.Flush()

	g.SetTintColor(colors.White.WithAlpha(0.8))
	g.DrawTextureEx(l.sheet, 120, -160, 2, 2, l.t*20, sheetSize*tileSize/2, sheetSize*tileSize/2)
	g.DrawTextureFragment(l.sheet,
		graphics.Rect{X: 0, Y: 0, W: tileSize * 2, H: tileSize},
		graphics.Rect{X: 120, Y: 220, W: 128, H: 64})
}

func (l *Layer2D) OnEvent(e *core.Engine, ev core.Event) bool {
	if v, ok := ev.(core.EventResize); ok && v.W > 0 && v.H > 0 {
		l.sceneW, l.sceneH = v.W, v.H
		if l.offscreen {
			l.wantResize = true
		}
	}
	return l.ctrl.HandleEvent(ev)
}

// spriteSheet generates a sheet of sheetSize x sheetSize checkered tiles.
func spriteSheet() *image.RGBA {
	n := sheetSize * tileSize
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			cx, cy := x/tileSize, y/tileSize
			c := color.RGBA{
				R: uint8(40 + 200*cx/(sheetSize-1)),
				G: uint8(40 + 200*cy/(sheetSize-1)),
				B: 160,
				A: 255,
			}
			if (x/4+y/4)%2 == 0 {
				c.R, c.G, c.B = c.R/2, c.G/2, c.B/2
			}
			if x%tileSize == 0 || y%tileSize == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
