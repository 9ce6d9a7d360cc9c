// Package render is the backend-agnostic renderer: it owns the texture and
// surface pools, the program cache and the per-format vertex buffers, and
// drives a device.Device.
//
// A Renderer must only be used from the goroutine that owns the GPU context.
package render

import (
	"fmt"
	"log/slog"

	"github.com/hubastard/grove2d/engine/gfx/device"
	"github.com/hubastard/grove2d/engine/gfx/shader"
	"github.com/hubastard/grove2d/engine/gfx/vbuf"
	"github.com/hubastard/grove2d/engine/pool"
)

// InvalidID is returned for failed creations and names "no resource".
const InvalidID = -1

// Config sets up a Renderer.
type Config struct {
	Width, Height int // display size in pixels
	// Antialiasing is the sample count requested for new surfaces. Values
	// below 2 disable multisampling.
	Antialiasing int
	// VertexBufferSize is the initial size in bytes of each vertex buffer.
	VertexBufferSize int
	// TexturePoolSize and SurfacePoolSize are initial pool capacities.
	TexturePoolSize int
	SurfacePoolSize int
	Logger          *slog.Logger
}

// Renderer implements the drawing entry points on top of a device.
type Renderer struct {
	dev  device.Device
	info device.Info
	cfg  Config
	log  *slog.Logger

	textures *pool.Pool[texture]
	surfaces *pool.Pool[surface]
	programs *shader.Cache
	buffers  *vbuf.Manager

	width, height int
	antialiasing  int
	bound         int // surface, or InvalidID for the screen
	clearColor    [4]float32

	stats       Stats
	lastStats   Stats
	initialized bool
}

// New returns a renderer over dev. Call Initialize before drawing.
func New(dev device.Device, cfg Config) *Renderer {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	r := &Renderer{
		dev:          dev,
		cfg:          cfg,
		log:          cfg.Logger,
		width:        cfg.Width,
		height:       cfg.Height,
		antialiasing: cfg.Antialiasing,
		bound:        InvalidID,
	}
	// pools exist for the renderer's whole life so lookups outside
	// Initialize/Terminate find nothing instead of panicking
	r.textures = pool.New(max(cfg.TexturePoolSize, 16), r.destroyTexture)
	r.surfaces = pool.New(max(cfg.SurfacePoolSize, 4), r.destroySurface)
	return r
}

// Initialize builds programs, buffers and pools. Calling it again is a no-op.
func (r *Renderer) Initialize() error {
	if r.initialized {
		return nil
	}
	srcs, err := shader.Sources(r.dev.Dialect())
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	r.info = r.dev.Info()
	r.programs = shader.NewCache(r.dev, srcs, r.log)
	r.buffers = vbuf.New(r.dev, r.cfg.VertexBufferSize, r.log)

	r.dev.SetBlend(device.SrcAlpha, device.OneMinusSrcAlpha, device.FuncAdd)
	r.dev.BindFramebuffer(device.DefaultFramebuffer)
	r.dev.Viewport(0, 0, r.width, r.height)
	r.initialized = true

	r.log.Info("renderer initialized",
		slog.String("backend", r.info.Name),
		slog.String("vendor", r.info.Vendor),
		slog.String("renderer", r.info.Renderer),
		slog.String("version", r.info.Version),
		slog.Int("max_samples", r.info.MaxSamples))
	return nil
}

// Terminate releases every GPU object the renderer created. Calling it on a
// terminated renderer is a no-op.
func (r *Renderer) Terminate() {
	if !r.initialized {
		return
	}
	if r.bound != InvalidID {
		r.BindSurface(InvalidID)
	}
	// surfaces first: they remove their textures from the texture pool
	r.surfaces.Terminate()
	r.textures.Terminate()
	r.programs.Release()
	r.buffers.Release()
	r.initialized = false
}

// Info describes the device the renderer drives.
func (r *Renderer) Info() device.Info { return r.info }

// Resize records the new display size and fixes the viewport when the
// screen is the current target.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	if r.bound == InvalidID {
		r.dev.Viewport(0, 0, width, height)
	}
}

// DisplaySize returns the last known display size.
func (r *Renderer) DisplaySize() (int, int) { return r.width, r.height }

// SetClearColor caches the color used by Clear.
func (r *Renderer) SetClearColor(c [4]float32) { r.clearColor = c }

// Clear clears the current target with the cached clear color.
func (r *Renderer) Clear() {
	if !r.initialized {
		return
	}
	r.dev.Clear(r.clearColor)
	r.touchTarget()
}

// Uniform setters are dropped while the renderer is not initialized.
func (r *Renderer) SetProjection(m [16]float32) {
	if r.initialized {
		r.programs.SetProjection(m)
	}
}

func (r *Renderer) SetModelView(m [16]float32) {
	if r.initialized {
		r.programs.SetModelView(m)
	}
}

func (r *Renderer) SetDrawColor(c [4]float32) {
	if r.initialized {
		r.programs.SetDrawColor(c)
	}
}

// SetBlend selects the blend function for subsequent draws.
func (r *Renderer) SetBlend(src, dst device.BlendFactor, eq device.BlendEquation) {
	r.dev.SetBlend(src, dst, eq)
}

// Process flushes the frame's commands to the GPU.
func (r *Renderer) Process() {
	r.dev.Flush()
}

// PostProcess ends the frame: vertex data is considered consumed and the
// buffers rewind.
func (r *Renderer) PostProcess() {
	if !r.initialized {
		return
	}
	r.stats.BufferBytes = r.buffers.Bytes()
	r.lastStats = r.stats
	r.stats = Stats{}
	r.buffers.ResetAll()
}

// Stats returns the counters of the last completed frame.
func (r *Renderer) Stats() Stats { return r.lastStats }

// FrameStats returns the counters of the frame in progress.
func (r *Renderer) FrameStats() Stats { return r.stats }

// Programs exposes the program cache.
func (r *Renderer) Programs() *shader.Cache { return r.programs }

// Buffers exposes the vertex buffer manager.
func (r *Renderer) Buffers() *vbuf.Manager { return r.buffers }

// DrawSolid draws x,y pairs with the current draw color.
func (r *Renderer) DrawSolid(prim device.Primitive, verts []float32) {
	r.draw(device.Position, shader.Solid, prim, verts)
}

// DrawColored draws x,y,r,g,b,a vertices.
func (r *Renderer) DrawColored(prim device.Primitive, verts []float32) {
	r.draw(device.PositionColor, shader.Colored, prim, verts)
}

// DrawTextured draws x,y,u,v vertices sampling texture id, modulated by
// the current draw color. Invalid ids draw nothing.
func (r *Renderer) DrawTextured(id int, prim device.Primitive, verts []float32) {
	if !r.bindTexture(id, 0) {
		return
	}
	r.draw(device.PositionTexcoord, shader.Textured, prim, verts)
}

// DrawFont draws glyph triangles (x,y,u,v) whose texture holds coverage in
// its first channel, tinted by the current draw color.
func (r *Renderer) DrawFont(id int, verts []float32) {
	if !r.bindTexture(id, 0) {
		return
	}
	r.draw(device.PositionTexcoord, shader.Font, device.Triangles, verts)
}

// PresentSurface copies surface id onto the whole screen with the
// backbuffer program. The screen becomes the current target.
func (r *Renderer) PresentSurface(id int) {
	s := r.surfaces.Get(id)
	if s == nil {
		return
	}
	tex := s.texture
	r.BindSurface(InvalidID)
	if !r.bindTexture(tex, 0) {
		return
	}
	r.draw(device.PositionTexcoord, shader.Backbuffer, device.TriangleStrip, backbufferQuad[:])
}

// backbufferQuad is a full screen strip in NDC. Surfaces store their first
// row at v=0, so the top of the screen samples v=0.
var backbufferQuad = [16]float32{
	-1, 1, 0, 0,
	-1, -1, 0, 1,
	1, 1, 1, 0,
	1, -1, 1, 1,
}

// draw is a no-op outside Initialize/Terminate.
func (r *Renderer) draw(f device.VertexFormat, p shader.Program, prim device.Primitive, verts []float32) {
	if !r.initialized {
		return
	}
	floats := f.Floats()
	n := len(verts) / floats
	if n == 0 {
		return
	}
	off := r.buffers.AppendFloats(f, verts[:n*floats])
	r.programs.Bind(p)
	r.dev.Draw(f, prim, off/f.Stride(), n)
	r.touchTarget()

	r.stats.DrawCalls++
	r.stats.Vertices += n
}

func (r *Renderer) fatal(msg string, err error) {
	r.log.Error(msg, slog.Any("error", err))
	panic(fmt.Errorf("render: %s: %w", msg, err))
}
