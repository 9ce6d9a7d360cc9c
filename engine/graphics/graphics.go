// Package graphics is the immediate mode 2D drawing API.
//
// Coordinates are pixels with the origin at the top-left corner and Y
// growing downwards. Primitives are emitted in local space; the model-view
// matrix built with PushMatrix/TranslateMatrix/... places them, the
// projection (default or SetView) maps them to the target.
//
// A Graphics must only be used from the goroutine that owns the GPU context.
package graphics

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/gfx/device"
	"github.com/hubastard/grove2d/engine/gfx/render"
	"github.com/hubastard/grove2d/engine/gfx/transform"
	"github.com/hubastard/grove2d/engine/scratch"
)

// Backend is the renderer the facade drives. *render.Renderer implements it.
type Backend interface {
	Resize(width, height int)
	SetClearColor(c [4]float32)
	Clear()
	SetProjection(m [16]float32)
	SetModelView(m [16]float32)
	SetDrawColor(c [4]float32)
	SetBlend(src, dst device.BlendFactor, eq device.BlendEquation)

	DrawSolid(prim device.Primitive, verts []float32)
	DrawColored(prim device.Primitive, verts []float32)
	DrawTextured(id int, prim device.Primitive, verts []float32)
	DrawFont(id int, verts []float32)

	CreateTexture(width, height, channels int) int
	UpdateTexture(id, x, y, width, height int, pixels []byte)
	DeleteTexture(id int)
	TextureSize(id int) (int, int)
	SetTextureSmooth(id int, smooth bool)

	CreateSurface(width, height int) int
	BindSurface(id int)
	BoundSurface() int
	DeleteSurface(id int)
	SurfaceTexture(id int) int
	SurfaceSize(id int) (int, int)
	PresentSurface(id int)

	Process()
	PostProcess()
	Stats() render.Stats
}

var _ Backend = (*render.Renderer)(nil)

// Option configures a Graphics.
type Option func(*Graphics)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graphics) { g.log = l }
}

// WithCircleError sets the maximum distance in pixels between a circle and
// the chords approximating it.
func WithCircleError(e float32) Option {
	return func(g *Graphics) {
		if e > 0 {
			g.circleError = e
		}
	}
}

// Graphics holds the drawing state: colors, matrix stack, projection and
// current render target.
type Graphics struct {
	r   Backend
	log *slog.Logger

	width, height int
	surface       int

	stack      transform.Stack
	projection mgl32.Mat4

	pointColor   colors.Color
	lineColor    colors.Color
	outlineColor colors.Color
	fillColor    colors.Color
	tint         colors.Color
	clearColor   colors.Color

	circleError float32
	verts       *scratch.Floats
}

// New wraps r for a width x height display and uploads the default
// projection and an identity model-view.
func New(r Backend, width, height int, opts ...Option) *Graphics {
	g := &Graphics{
		r:            r,
		log:          slog.New(slog.DiscardHandler),
		width:        width,
		height:       height,
		surface:      render.InvalidID,
		pointColor:   colors.White,
		lineColor:    colors.White,
		outlineColor: colors.White,
		fillColor:    colors.White,
		tint:         colors.White,
		clearColor:   colors.Black,
		circleError:  DefaultCircleError,
		verts:        scratch.NewFloats(4096),
	}
	for _, o := range opts {
		o(g)
	}
	g.stack.Reset()
	g.r.SetClearColor(g.clearColor)
	g.ResetView()
	g.uploadModelView()
	return g
}

// Backend returns the renderer behind g.
func (g *Graphics) Backend() Backend { return g.r }

// Size returns the display size.
func (g *Graphics) Size() (int, int) { return g.width, g.height }

// Resize updates the display size, the viewport and the default projection.
// When drawing to the display, a view set with SetView is discarded and the
// default projection for the new size takes its place; call SetView again
// after resizing mid-frame. A view on a bound surface is kept.
func (g *Graphics) Resize(width, height int) {
	g.width, g.height = width, height
	g.r.Resize(width, height)
	if g.surface == render.InvalidID {
		g.ResetView()
	}
	g.log.Debug("graphics resized", slog.Int("width", width), slog.Int("height", height))
}

// --- colors ---

func (g *Graphics) SetPointColor(c colors.Color)   { g.pointColor = c }
func (g *Graphics) SetLineColor(c colors.Color)    { g.lineColor = c }
func (g *Graphics) SetOutlineColor(c colors.Color) { g.outlineColor = c }
func (g *Graphics) SetFillColor(c colors.Color)    { g.fillColor = c }

// SetTintColor sets the color textures are multiplied with. White leaves
// them unchanged.
func (g *Graphics) SetTintColor(c colors.Color) { g.tint = c }

func (g *Graphics) PointColor() colors.Color   { return g.pointColor }
func (g *Graphics) LineColor() colors.Color    { return g.lineColor }
func (g *Graphics) OutlineColor() colors.Color { return g.outlineColor }
func (g *Graphics) FillColor() colors.Color    { return g.fillColor }
func (g *Graphics) TintColor() colors.Color    { return g.tint }

func (g *Graphics) SetClearColor(c colors.Color) {
	g.clearColor = c
	g.r.SetClearColor(c)
}

// Clear clears the current target.
func (g *Graphics) Clear() { g.r.Clear() }

// SetBlendMode selects the blend function. The default is
// SrcAlpha, OneMinusSrcAlpha, FuncAdd.
func (g *Graphics) SetBlendMode(src, dst device.BlendFactor, eq device.BlendEquation) {
	g.r.SetBlend(src, dst, eq)
}

// --- matrices ---

// PushMatrix saves the current model-view. Beyond transform.MaxDepth
// levels it does nothing.
func (g *Graphics) PushMatrix() {
	if !g.stack.Push() {
		g.log.Debug("matrix stack full", slog.Int("depth", g.stack.Depth()))
	}
}

// PopMatrix restores the previously pushed model-view. At the bottom of the
// stack it does nothing.
func (g *Graphics) PopMatrix() {
	if g.stack.Pop() {
		g.uploadModelView()
	}
}

func (g *Graphics) TranslateMatrix(dx, dy float32) {
	g.stack.Translate(dx, dy)
	g.uploadModelView()
}

func (g *Graphics) ScaleMatrix(sx, sy float32) {
	g.stack.Scale(sx, sy)
	g.uploadModelView()
}

// RotateMatrix rotates by degrees, clockwise on screen.
func (g *Graphics) RotateMatrix(degrees float32) {
	g.stack.Rotate(degrees)
	g.uploadModelView()
}

// ModelView returns the current model-view matrix.
func (g *Graphics) ModelView() mgl32.Mat3 { return g.stack.Top() }

// MatrixDepth returns how many matrices are pushed.
func (g *Graphics) MatrixDepth() int { return g.stack.Depth() }

func (g *Graphics) uploadModelView() {
	g.r.SetModelView([16]float32(transform.Expand(g.stack.Top())))
}

// --- projection ---

// SetView replaces the projection with a w x h window centered on (x, y)
// and rotated by angle degrees. It lasts until the end of the frame.
func (g *Graphics) SetView(x, y, w, h, angle float32) {
	g.projection = transform.View(x, y, w, h, angle)
	g.uploadProjection()
}

// ResetView restores the default projection of the current target.
func (g *Graphics) ResetView() {
	w, h := g.targetSize()
	g.projection = transform.Ortho(w, h)
	g.uploadProjection()
}

// Projection returns the current projection as set by SetView or
// ResetView.
func (g *Graphics) Projection() mgl32.Mat4 { return g.projection }

func (g *Graphics) uploadProjection() {
	p := g.projection
	if g.surface != render.InvalidID {
		p = transform.FlipY(p)
	}
	g.r.SetProjection([16]float32(p))
}

func (g *Graphics) targetSize() (int, int) {
	if g.surface != render.InvalidID {
		return g.r.SurfaceSize(g.surface)
	}
	return g.width, g.height
}

// --- frame ---

// Process submits the frame's draws.
func (g *Graphics) Process() { g.r.Process() }

// PostProcess ends the frame: vertex buffers rewind, the matrix stack goes
// back to a single identity and the default projection is restored, so a
// custom view has to be set again every frame.
func (g *Graphics) PostProcess() {
	g.r.PostProcess()
	g.stack.Reset()
	g.uploadModelView()
	g.ResetView()
}

// Stats returns the counters of the last completed frame.
func (g *Graphics) Stats() render.Stats { return g.r.Stats() }
