package render

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hubastard/grove2d/engine/gfx/device"
	"github.com/hubastard/grove2d/engine/gfx/null"
	"github.com/hubastard/grove2d/engine/gfx/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tri = []float32{0, 0, 10, 0, 0, 10}

var texturedQuad = []float32{
	0, 0, 0, 0,
	8, 0, 1, 0,
	0, 8, 0, 1,
}

func newRenderer(t *testing.T, dev *null.Device, aa int) *Renderer {
	t.Helper()
	r := New(dev, Config{Width: 320, Height: 200, Antialiasing: aa, VertexBufferSize: 256})
	require.NoError(t, r.Initialize())
	t.Cleanup(r.Terminate)
	return r
}

func countOps(dev *null.Device, prefix string) int {
	n := 0
	for _, op := range dev.Ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

func TestSurfaceResolvedBeforeSampling(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 4)

	s := r.CreateSurface(64, 64)
	require.NotEqual(t, InvalidID, s)
	tex := r.SurfaceTexture(s)

	r.BindSurface(s)
	r.DrawSolid(device.Triangles, tri)
	r.BindSurface(InvalidID)
	r.DrawTextured(tex, device.Triangles, texturedQuad)

	require.Len(t, dev.Draws, 2)
	drawn, sampled := dev.Draws[0], dev.Draws[1]
	assert.NotEqual(t, device.DefaultFramebuffer, drawn.Framebuffer)
	assert.Equal(t, device.DefaultFramebuffer, sampled.Framebuffer)
	assert.Equal(t, r.textures.Get(tex).handle, sampled.Texture)
	assert.NotZero(t, sampled.Sampled, "texture sampled before the multisample resolve")
	assert.Equal(t, 1, countOps(dev, "BlitFramebuffer"))
}

func TestSamplingBoundSurfaceResolvesFirst(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 4)
	s := r.CreateSurface(32, 32)
	r.BindSurface(s)
	r.Clear()
	r.DrawSolid(device.Triangles, tri)
	r.DrawTextured(r.SurfaceTexture(s), device.Triangles, texturedQuad)

	require.Len(t, dev.Draws, 2)
	assert.Equal(t, dev.Draws[0].Framebuffer, dev.Draws[1].Framebuffer, "draw target restored after resolve")
	assert.NotZero(t, dev.Draws[1].Sampled)
	assert.Equal(t, 1, r.FrameStats().Resolves)

	// the textured draw dirtied the target again
	r.BindTexture(r.SurfaceTexture(s), 0)
	assert.Equal(t, 2, r.FrameStats().Resolves)
	// no draw in between: nothing to resolve
	r.BindTexture(r.SurfaceTexture(s), 0)
	assert.Equal(t, 2, r.FrameStats().Resolves)
}

func TestSingleSampledSurfaceNeedsNoBlit(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	s := r.CreateSurface(16, 16)
	r.BindSurface(s)
	r.DrawSolid(device.Triangles, tri)
	r.BindSurface(InvalidID)
	r.DrawTextured(r.SurfaceTexture(s), device.Triangles, texturedQuad)

	assert.Zero(t, countOps(dev, "BlitFramebuffer"))
	assert.NotZero(t, dev.Draws[1].Sampled)
}

func TestSamplesClampedToDevice(t *testing.T) {
	dev := null.New()
	dev.MaxSamples = 2
	r := newRenderer(t, dev, 16)
	r.CreateSurface(8, 8)
	assert.Equal(t, 1, countOpsContaining(dev, "kind=1 samples=2"))

	dev = null.New()
	dev.MaxSamples = 1
	r = newRenderer(t, dev, 16)
	s := r.CreateSurface(8, 8)
	assert.Equal(t, 1, r.surfaces.Get(s).samples)
	assert.Equal(t, 1, dev.LiveFramebuffers())
}

func countOpsContaining(dev *null.Device, sub string) int {
	n := 0
	for _, op := range dev.Ops {
		if strings.Contains(op, sub) {
			n++
		}
	}
	return n
}

func TestTextureChannelRejection(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	before := countOps(dev, "CreateTexture")

	assert.Equal(t, InvalidID, r.CreateTexture(64, 64, 5))
	assert.Equal(t, InvalidID, r.CreateTexture(64, 64, 0))
	assert.Equal(t, InvalidID, r.CreateTexture(-1, 64, 4))
	assert.Equal(t, before, countOps(dev, "CreateTexture"))
	assert.Zero(t, dev.LiveTextures())

	id := r.CreateTexture(0, 0, 1)
	assert.NotEqual(t, InvalidID, id)
}

func TestUpdateTextureWholeAndSub(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	id := r.CreateTexture(2, 2, 1)
	h := r.textures.Get(id).handle

	r.UpdateTexture(id, 0, 0, WholeTexture, WholeTexture, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{1, 2, 3, 4}, dev.TexturePixels(h))

	r.UpdateTexture(id, 1, 1, 1, 1, []byte{9})
	assert.Equal(t, []byte{1, 2, 3, 9}, dev.TexturePixels(h))

	n := len(dev.Ops)
	r.UpdateTexture(id+7, 0, 0, WholeTexture, WholeTexture, []byte{0})
	assert.Len(t, dev.Ops, n)
}

func TestUpdateTextureRejectsOutOfBounds(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	id := r.CreateTexture(2, 2, 1)
	h := r.textures.Get(id).handle
	r.UpdateTexture(id, 0, 0, WholeTexture, WholeTexture, []byte{1, 2, 3, 4})
	n := len(dev.Ops)

	for _, tc := range []struct {
		name       string
		x, y, w, h int
		pixels     []byte
	}{
		{"negative x", -2, 0, 1, 1, []byte{9}},
		{"negative y", 0, -1, 1, 1, []byte{9}},
		{"past right edge", 1, 0, 2, 1, []byte{9, 9}},
		{"past bottom edge", 0, 1, 1, 2, []byte{9, 9}},
		{"short pixels", 0, 0, 2, 2, []byte{9}},
		{"short whole", 0, 0, WholeTexture, WholeTexture, []byte{9}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() { r.UpdateTexture(id, tc.x, tc.y, tc.w, tc.h, tc.pixels) })
		})
	}
	assert.Len(t, dev.Ops, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, dev.TexturePixels(h))
}

func TestTextureAccessorsOnInvalidID(t *testing.T) {
	r := newRenderer(t, null.New(), 0)
	w, h := r.TextureSize(3)
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, InvalidID, r.TextureChannels(InvalidID))
	assert.Equal(t, InvalidID, r.SurfaceTexture(9))
	assert.NotPanics(t, func() {
		r.BindTexture(InvalidID, 0)
		r.DeleteTexture(42)
		r.DeleteSurface(42)
		r.SetTextureSmooth(5, true)
		r.DrawTextured(12, device.Triangles, texturedQuad)
	})
}

func TestSetTextureSmooth(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	id := r.CreateTexture(4, 4, 4)
	h := r.textures.Get(id).handle

	r.SetTextureSmooth(id, true)
	assert.Equal(t, device.Linear, dev.TextureFilter(h))
	n := countOps(dev, "SetTextureFilter")
	r.SetTextureSmooth(id, true)
	assert.Equal(t, n, countOps(dev, "SetTextureFilter"))
}

func TestDeleteSurfaceFreesEverything(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 4)
	s := r.CreateSurface(32, 32)
	tex := r.SurfaceTexture(s)
	require.Equal(t, 1, dev.LiveTextures())
	require.Equal(t, 2, dev.LiveFramebuffers())

	// owned by the surface
	r.DeleteTexture(tex)
	assert.Equal(t, 1, dev.LiveTextures())

	r.BindSurface(s)
	r.DeleteSurface(s)
	assert.Equal(t, InvalidID, r.BoundSurface())
	assert.Equal(t, device.DefaultFramebuffer, dev.BoundFramebuffer())
	assert.Zero(t, dev.LiveTextures())
	assert.Zero(t, dev.LiveFramebuffers())
	assert.Zero(t, dev.LiveRenderbuffers())
	assert.Equal(t, InvalidID, r.TextureChannels(tex))
	assert.Equal(t, InvalidID, r.SurfaceTexture(s))
}

func TestIncompleteFramebufferPanics(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	dev.FailFramebuffers = true
	assert.Panics(t, func() { r.CreateSurface(16, 16) })
}

func TestBindSurfaceSetsViewport(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	s := r.CreateSurface(40, 30)
	r.BindSurface(s)
	assert.Equal(t, [4]int{0, 0, 40, 30}, dev.ViewportRect)
	r.BindSurface(InvalidID)
	assert.Equal(t, [4]int{0, 0, 320, 200}, dev.ViewportRect)

	r.BindSurface(s)
	r.Resize(800, 600)
	assert.Equal(t, [4]int{0, 0, 40, 30}, dev.ViewportRect, "resize leaves a surface viewport alone")
	r.BindSurface(InvalidID)
	assert.Equal(t, [4]int{0, 0, 800, 600}, dev.ViewportRect)
}

func TestDrawsUseAppendedOffsets(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	r.DrawSolid(device.Triangles, tri)
	r.DrawSolid(device.LineStrip, []float32{1, 1, 2, 2})
	r.DrawColored(device.Points, []float32{5, 5, 1, 0, 0, 1})

	require.Len(t, dev.Draws, 3)
	assert.Equal(t, 0, dev.Draws[0].First)
	assert.Equal(t, 3, dev.Draws[1].First)
	assert.Equal(t, 2, dev.Draws[1].Count)
	assert.Equal(t, []float32{1, 1, 2, 2}, dev.Draws[1].Vertices)
	assert.Equal(t, 0, dev.Draws[2].First)
	assert.Equal(t, r.programs.Handle(shader.Colored), dev.Draws[2].Program)

	// a partial trailing vertex is dropped, an empty list draws nothing
	r.DrawSolid(device.Points, []float32{1})
	assert.Len(t, dev.Draws, 3)
}

func TestDrawGrowsBufferMidFrame(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	verts := make([]float32, 2*100)
	for i := range verts {
		verts[i] = float32(i)
	}
	r.DrawSolid(device.Points, verts[:20])
	r.DrawSolid(device.Points, verts)

	last := dev.Draws[len(dev.Draws)-1]
	assert.Equal(t, 10, last.First)
	assert.Equal(t, verts, last.Vertices)
	assert.GreaterOrEqual(t, r.Buffers().Capacity(device.Position), 220*4)
}

func TestFrameLifecycle(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 0)
	r.DrawSolid(device.Triangles, tri)
	r.Process()
	assert.Equal(t, 1, dev.Flushes)

	r.PostProcess()
	assert.Zero(t, r.Buffers().Offset(device.Position))
	assert.Equal(t, 1, r.Stats().DrawCalls)
	assert.Equal(t, 3, r.Stats().Vertices)
	assert.Zero(t, r.FrameStats().DrawCalls)
	assert.Equal(t, "draw_calls=1 vertices=3 texture_binds=0 resolves=0 buffer_bytes=768",
		strings.Join(statsAttrs(r.Stats()), " "))
}

func statsAttrs(s Stats) []string {
	var out []string
	for _, a := range s.LogValue().Group() {
		out = append(out, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	return out
}

func TestPresentSurfaceUsesBackbufferProgram(t *testing.T) {
	dev := null.New()
	r := newRenderer(t, dev, 4)
	s := r.CreateSurface(16, 16)
	r.BindSurface(s)
	r.DrawSolid(device.Triangles, tri)
	r.PresentSurface(s)

	last := dev.Draws[len(dev.Draws)-1]
	assert.Equal(t, r.programs.Handle(shader.Backbuffer), last.Program)
	assert.Equal(t, device.DefaultFramebuffer, last.Framebuffer)
	assert.Equal(t, device.TriangleStrip, last.Primitive)
	assert.Equal(t, 4, last.Count)
	assert.NotZero(t, last.Sampled)
	assert.Equal(t, InvalidID, r.BoundSurface())
}

func TestInitializeAndTerminateAreIdempotent(t *testing.T) {
	dev := null.New()
	r := New(dev, Config{Width: 10, Height: 10})
	require.NoError(t, r.Initialize())
	n := len(dev.Ops)
	require.NoError(t, r.Initialize())
	assert.Len(t, dev.Ops, n)

	r.CreateTexture(4, 4, 4)
	r.CreateSurface(4, 4)
	r.Terminate()
	r.Terminate()
	assert.Zero(t, dev.LiveTextures())
	assert.Zero(t, dev.LiveBuffers())
	assert.Zero(t, dev.LiveFramebuffers())
}

func TestUseOutsideInitializeIsNoop(t *testing.T) {
	dev := null.New()
	r := New(dev, Config{Width: 32, Height: 32, VertexBufferSize: 64})

	exercise := func() {
		r.Clear()
		r.SetDrawColor([4]float32{1, 1, 1, 1})
		r.DrawSolid(device.Triangles, tri)
		assert.Equal(t, InvalidID, r.CreateTexture(4, 4, 4))
		assert.Equal(t, InvalidID, r.CreateSurface(4, 4))
		r.BindSurface(0)
		r.DrawTextured(0, device.Triangles, texturedQuad)
		r.PresentSurface(0)
		r.UpdateTexture(0, 0, 0, WholeTexture, WholeTexture, nil)
		r.DeleteSurface(0)
		r.Process()
		r.PostProcess()
	}
	exercise()

	require.NoError(t, r.Initialize())
	r.Terminate()
	ops := len(dev.Ops)

	done := make(chan struct{})
	go func() {
		defer close(done)
		exercise()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drawing on a terminated renderer did not return")
	}

	assert.Empty(t, dev.Draws)
	assert.Zero(t, dev.LiveBuffers())
	assert.Len(t, dev.Ops, ops)
}
