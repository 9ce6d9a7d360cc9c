package graphics

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/grove2d/engine/assets"
	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/gfx/device"
	"github.com/hubastard/grove2d/engine/gfx/null"
	"github.com/hubastard/grove2d/engine/gfx/render"
	"github.com/hubastard/grove2d/engine/gfx/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraphics(t *testing.T, w, h int) (*Graphics, *null.Device) {
	t.Helper()
	dev := null.New()
	r := render.New(dev, render.Config{Width: w, Height: h, Antialiasing: 4})
	require.NoError(t, r.Initialize())
	t.Cleanup(r.Terminate)
	return New(r, w, h), dev
}

func lastDraw(t *testing.T, dev *null.Device) null.DrawCall {
	t.Helper()
	require.NotEmpty(t, dev.Draws)
	return dev.Draws[len(dev.Draws)-1]
}

func mat4(t *testing.T, u []float32) mgl32.Mat4 {
	t.Helper()
	require.Len(t, u, 16)
	return mgl32.Mat4([16]float32(u))
}

func TestCircleSegments(t *testing.T) {
	assert.Equal(t, 15, CircleSegments(10, DefaultCircleError))
	assert.Equal(t, 5, CircleSegments(1, DefaultCircleError))
	assert.Equal(t, 45, CircleSegments(100, DefaultCircleError))
	assert.Equal(t, 3, CircleSegments(0.25, DefaultCircleError))
	assert.Equal(t, 3, CircleSegments(-4, DefaultCircleError))
	assert.LessOrEqual(t, CircleSegments(1e9, DefaultCircleError), 4096)
}

func TestCircleEmitsPerimeter(t *testing.T) {
	g, dev := newGraphics(t, 100, 100)
	g.FillCircle(0, 0, 10)

	d := lastDraw(t, dev)
	assert.Equal(t, device.TriangleFan, d.Primitive)
	require.Equal(t, 15, d.Count)
	for i := 0; i < d.Count; i++ {
		x, y := d.Vertices[2*i], d.Vertices[2*i+1]
		assert.InDelta(t, 10, mgl32.Vec2{x, y}.Len(), 1e-4)
	}

	g.OutlineCircle(0, 0, 10)
	assert.Equal(t, device.LineLoop, lastDraw(t, dev).Primitive)
	assert.Equal(t, 15, lastDraw(t, dev).Count)
}

func TestDefaultProjectionCenter(t *testing.T) {
	g, dev := newGraphics(t, 512, 512)
	x, y := transform.Apply(g.Projection(), g.ModelView(), 256, 256)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)

	g.DrawPoint(256, 256)
	d := lastDraw(t, dev)
	x, y = transform.Apply(mat4(t, d.Uniforms["uProjection"]), mgl32.Ident3(), 256, 256)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)
}

func TestDrawColorReachesEveryProgram(t *testing.T) {
	g, dev := newGraphics(t, 64, 64)
	red := colors.Red

	g.SetFillColor(red)
	g.FillRectangle(0, 0, 4, 4)
	assert.Equal(t, red[:], lastDraw(t, dev).Uniforms["uColor"])

	// colored program in between, no uColor
	g.DrawPolygon([]Vertex{{0, 0, colors.Blue}, {4, 0, colors.Blue}, {0, 4, colors.Blue}})
	assert.NotContains(t, lastDraw(t, dev).Uniforms, "uColor")

	tex := g.CreateTexture(2, 2, 4)
	g.SetTintColor(red)
	g.DrawTexture(tex, 0, 0)
	d := lastDraw(t, dev)
	assert.Equal(t, 4, d.Count)
	assert.Equal(t, red[:], d.Uniforms["uColor"])
}

func TestDrawVariantsFillThenOutline(t *testing.T) {
	g, dev := newGraphics(t, 64, 64)
	g.SetFillColor(colors.Green)
	g.SetOutlineColor(colors.Yellow)
	g.DrawRectangle(1, 2, 3, 4)
	g.DrawTriangle(0, 0, 1, 0, 0, 1)

	require.Len(t, dev.Draws, 4)
	green, yellow := colors.Green, colors.Yellow
	assert.Equal(t, device.TriangleFan, dev.Draws[0].Primitive)
	assert.Equal(t, green[:], dev.Draws[0].Uniforms["uColor"])
	assert.Equal(t, device.LineLoop, dev.Draws[1].Primitive)
	assert.Equal(t, yellow[:], dev.Draws[1].Uniforms["uColor"])
	assert.Equal(t, []float32{1, 2, 4, 2, 4, 6, 1, 6}, dev.Draws[1].Vertices)
	assert.Equal(t, device.Triangles, dev.Draws[2].Primitive)
	assert.Equal(t, device.LineLoop, dev.Draws[3].Primitive)
}

func TestModelViewUploads(t *testing.T) {
	g, dev := newGraphics(t, 64, 64)
	g.PushMatrix()
	g.TranslateMatrix(10, 20)
	g.DrawPoint(0, 0)
	want := transform.Expand(mgl32.Translate2D(10, 20))
	assert.Equal(t, want[:], lastDraw(t, dev).Uniforms["uModelView"])

	g.PopMatrix()
	g.DrawPoint(0, 0)
	ident := mgl32.Ident4()
	assert.Equal(t, ident[:], lastDraw(t, dev).Uniforms["uModelView"])

	// popping the bottom is harmless
	g.PopMatrix()
	assert.Equal(t, 0, g.MatrixDepth())
	for i := 0; i < 40; i++ {
		g.PushMatrix()
	}
	assert.Equal(t, transform.MaxDepth-1, g.MatrixDepth())
}

func TestCustomViewResetsEachFrame(t *testing.T) {
	g, dev := newGraphics(t, 200, 100)
	def := g.Projection()

	g.SetView(0, 0, 50, 50, 30)
	g.DrawPoint(0, 0)
	assert.NotEqual(t, def[:], lastDraw(t, dev).Uniforms["uProjection"])

	g.TranslateMatrix(5, 5)
	g.Process()
	g.PostProcess()

	assert.Equal(t, def, g.Projection())
	assert.Equal(t, mgl32.Ident3(), g.ModelView())
	g.DrawPoint(0, 0)
	assert.Equal(t, def[:], lastDraw(t, dev).Uniforms["uProjection"])
	assert.Equal(t, 1, g.Stats().DrawCalls)
}

func TestResizeRebuildsProjection(t *testing.T) {
	g, dev := newGraphics(t, 200, 100)
	g.Resize(400, 300)
	assert.Equal(t, transform.Ortho(400, 300), g.Projection())
	assert.Equal(t, [4]int{0, 0, 400, 300}, dev.ViewportRect)
}

func TestResizeDropsDisplayViewKeepsSurfaceView(t *testing.T) {
	g, _ := newGraphics(t, 200, 100)
	g.SetView(10, 10, 50, 50, 0)
	g.Resize(400, 300)
	assert.Equal(t, transform.Ortho(400, 300), g.Projection())

	s := g.CreateSurface(32, 16)
	require.NotEqual(t, render.InvalidID, s)
	g.SetSurface(s)
	g.SetView(0, 0, 8, 8, 0)
	view := g.Projection()
	g.Resize(500, 200)
	assert.Equal(t, view, g.Projection())
}

func TestSurfaceTargetIsFlipped(t *testing.T) {
	g, dev := newGraphics(t, 200, 100)
	s := g.CreateSurface(32, 16)
	require.NotEqual(t, render.InvalidID, s)

	g.SetSurface(s)
	assert.Equal(t, s, g.Surface())
	assert.Equal(t, transform.Ortho(32, 16), g.Projection())
	g.DrawPoint(0, 0)
	_, y := transform.Apply(mat4(t, lastDraw(t, dev).Uniforms["uProjection"]), mgl32.Ident3(), 0, 0)
	assert.Equal(t, float32(-1), y, "first row is stored at the bottom of the target")

	g.PresentSurface(s)
	assert.Equal(t, render.InvalidID, g.Surface())
	assert.Equal(t, transform.Ortho(200, 100), g.Projection())
	assert.NotZero(t, lastDraw(t, dev).Sampled)
}

func TestDeleteCurrentSurface(t *testing.T) {
	g, dev := newGraphics(t, 200, 100)
	s := g.CreateSurface(8, 8)
	g.SetSurface(s)
	g.DeleteSurface(s)
	assert.Equal(t, render.InvalidID, g.Surface())
	assert.Equal(t, [4]int{0, 0, 200, 100}, dev.ViewportRect)
	assert.Equal(t, render.InvalidID, g.SurfaceTexture(s))
}

func TestDrawTextureFragmentUV(t *testing.T) {
	g, dev := newGraphics(t, 64, 64)
	tex := g.CreateTexture(4, 4, 4)
	g.DrawTextureFragment(tex, Rect{X: 2, Y: 0, W: 2, H: 2}, Rect{X: 0, Y: 0, W: 8, H: 8})

	assert.Equal(t, []float32{
		0, 0, 0.5, 0,
		0, 8, 0.5, 0.5,
		8, 0, 1, 0,
		8, 8, 1, 0.5,
	}, lastDraw(t, dev).Vertices)

	n := len(dev.Draws)
	g.DrawTexture(render.InvalidID, 0, 0)
	g.DrawTextureEx(99, 0, 0, 1, 1, 45, 0, 0)
	assert.Len(t, dev.Draws, n)
}

func TestDrawTextureExRotatesAroundOrigin(t *testing.T) {
	g, dev := newGraphics(t, 64, 64)
	tex := g.CreateTexture(2, 4, 4)
	g.DrawTextureEx(tex, 10, 10, 1, 1, 90, 0, 0)

	v := lastDraw(t, dev).Vertices
	require.Len(t, v, 16)
	// (0,0) stays on the origin, (2,0) turns onto +Y
	assert.InDelta(t, 10, v[0], 1e-5)
	assert.InDelta(t, 10, v[1], 1e-5)
	assert.InDelta(t, 10, v[8], 1e-5)
	assert.InDelta(t, 12, v[9], 1e-5)
}

func TestLoadTextureFromMemory(t *testing.T) {
	g, dev := newGraphics(t, 64, 64)
	img := image.NewNRGBA(image.Rect(0, 0, 3, 5))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	id, err := g.LoadTextureFromMemory(buf.Bytes())
	require.NoError(t, err)
	w, h := g.TextureSize(id)
	assert.Equal(t, 3, w)
	assert.Equal(t, 5, h)
	assert.Equal(t, 1, dev.LiveTextures())

	_, err = g.LoadTextureFromMemory([]byte("nope"))
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestLoadTextureFromImage(t *testing.T) {
	g, _ := newGraphics(t, 64, 64)
	id, err := g.LoadTextureFromImage(image.NewGray(image.Rect(0, 0, 8, 2)))
	require.NoError(t, err)
	w, h := g.TextureSize(id)
	assert.Equal(t, [2]int{8, 2}, [2]int{w, h})

	id, err = g.LoadTextureFromImage(image.NewRGBA(image.Rect(0, 0, 0, 4)))
	assert.ErrorIs(t, err, assets.ErrEmptyImage)
	assert.Equal(t, render.InvalidID, id)
}

func TestSpriteBatchMergesByTexture(t *testing.T) {
	g, dev := newGraphics(t, 64, 64)
	a := g.CreateTexture(32, 32, 4)
	b := g.CreateTexture(16, 16, 4)
	cell := g.GridCell(a, 1, 0, 16, 16)
	assert.Equal(t, SubTexture{Texture: a, U0: 0.5, V0: 0, U1: 1, V1: 0.5}, cell)

	batch := g.NewSpriteBatch(2)
	n := len(dev.Draws)
	batch.Draw(cell, 10, 10, 4, 2, 0)
	batch.Draw(cell, 20, 20, 4, 2, 0)
	batch.Draw(cell, 30, 30, 4, 2, 0) // over capacity
	batch.Draw(g.SubTexture(b, 0, 0, 16, 16), 0, 0, 1, 1, 0)
	batch.Flush()
	batch.Flush()

	require.Len(t, dev.Draws, n+3)
	assert.Equal(t, 3, batch.Draws())
	first := dev.Draws[n]
	assert.Equal(t, device.Triangles, first.Primitive)
	assert.Equal(t, 12, first.Count)
	assert.Equal(t, []float32{8, 9, 0.5, 0}, first.Vertices[:4])
	assert.Equal(t, []float32{12, 11, 1, 0.5}, first.Vertices[20:24])
	assert.Equal(t, 6, dev.Draws[n+1].Count)
	assert.Equal(t, 6, dev.Draws[n+2].Count)
}
