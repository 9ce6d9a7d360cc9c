package render

import (
	"log/slog"

	"github.com/hubastard/grove2d/engine/gfx/device"
)

// WholeTexture as both width and height of an update at (0,0) replaces the
// entire texture.
const WholeTexture = -1

type texture struct {
	handle                  device.Texture
	width, height, channels int
	smooth                  bool
	owned                   bool // backing store of a surface
}

type surface struct {
	texture       int
	fbo           device.Framebuffer
	depth         device.Renderbuffer
	msaaFBO       device.Framebuffer
	msaaColor     device.Renderbuffer
	msaaDepth     device.Renderbuffer
	samples       int
	width, height int
	// pending is set by draws into a multisampled surface whose result has
	// not been blitted to the texture yet.
	pending bool
}

func (s *surface) multisampled() bool { return s.samples > 1 }

// target is the framebuffer draws go to while s is bound.
func (s *surface) target() device.Framebuffer {
	if s.multisampled() {
		return s.msaaFBO
	}
	return s.fbo
}

func (r *Renderer) destroyTexture(t *texture) {
	r.dev.DeleteTexture(t.handle)
}

func (r *Renderer) destroySurface(s *surface) {
	if s.multisampled() {
		r.dev.DeleteFramebuffer(s.msaaFBO)
		r.dev.DeleteRenderbuffer(s.msaaColor)
		r.dev.DeleteRenderbuffer(s.msaaDepth)
	}
	r.dev.DeleteFramebuffer(s.fbo)
	r.dev.DeleteRenderbuffer(s.depth)
	r.textures.Remove(s.texture)
}

// CreateTexture allocates an empty texture with nearest filtering. It
// returns InvalidID, without touching the device, for negative sizes, a
// channel count outside 1..4 or an uninitialized renderer.
func (r *Renderer) CreateTexture(width, height, channels int) int {
	if !r.initialized {
		return InvalidID
	}
	if width < 0 || height < 0 || channels < 1 || channels > 4 {
		r.log.Warn("invalid texture", slog.Int("width", width), slog.Int("height", height), slog.Int("channels", channels))
		return InvalidID
	}
	h := r.dev.CreateTexture(width, height, channels, device.Nearest)
	return r.textures.Add(texture{handle: h, width: width, height: height, channels: channels})
}

// UpdateTexture uploads pixels in the texture's channel layout. An update at
// (0,0) with WholeTexture sizes replaces the whole image. Regions that do
// not lie inside the texture, or with too few pixels, are rejected.
func (r *Renderer) UpdateTexture(id, x, y, width, height int, pixels []byte) {
	t := r.textures.Get(id)
	if t == nil {
		return
	}
	if x == 0 && y == 0 && width == WholeTexture && height == WholeTexture {
		x, y, width, height = 0, 0, t.width, t.height
	}
	if width <= 0 || height <= 0 {
		return
	}
	if x < 0 || y < 0 || x+width > t.width || y+height > t.height || len(pixels) < width*height*t.channels {
		r.log.Warn("texture update rejected",
			slog.Int("id", id), slog.Int("x", x), slog.Int("y", y),
			slog.Int("width", width), slog.Int("height", height), slog.Int("bytes", len(pixels)))
		return
	}
	if width == t.width && height == t.height {
		r.dev.TexImage(t.handle, t.width, t.height, t.channels, pixels)
		return
	}
	r.dev.TexSubImage(t.handle, x, y, width, height, t.channels, pixels)
}

// DeleteTexture frees a texture. Surface textures are freed with their
// surface and are ignored here.
func (r *Renderer) DeleteTexture(id int) {
	t := r.textures.Get(id)
	if t == nil || t.owned {
		return
	}
	r.textures.Remove(id)
}

// BindTexture binds texture id to a sampler unit, resolving it first if it
// backs the multisampled surface being drawn to.
func (r *Renderer) BindTexture(id, unit int) {
	r.bindTexture(id, unit)
}

func (r *Renderer) bindTexture(id, unit int) bool {
	t := r.textures.Get(id)
	if t == nil || !r.initialized {
		return false
	}
	if s := r.surfaces.Get(r.bound); s != nil && s.texture == id && s.pending {
		r.resolve(s)
		r.dev.BindFramebuffer(s.target())
	}
	r.dev.BindTexture(unit, t.handle)
	r.stats.TextureBinds++
	return true
}

// TextureSize returns the size of a texture, or 0,0 for invalid ids.
func (r *Renderer) TextureSize(id int) (int, int) {
	if t := r.textures.Get(id); t != nil {
		return t.width, t.height
	}
	return 0, 0
}

// TextureChannels returns the channel count of a texture, or InvalidID.
func (r *Renderer) TextureChannels(id int) int {
	if t := r.textures.Get(id); t != nil {
		return t.channels
	}
	return InvalidID
}

// SetTextureSmooth switches a texture between linear and nearest filtering.
func (r *Renderer) SetTextureSmooth(id int, smooth bool) {
	t := r.textures.Get(id)
	if t == nil || t.smooth == smooth {
		return
	}
	t.smooth = smooth
	f := device.Nearest
	if smooth {
		f = device.Linear
	}
	r.dev.SetTextureFilter(t.handle, f)
}

// SetAntialiasing sets the sample count for surfaces created afterwards.
func (r *Renderer) SetAntialiasing(samples int) { r.antialiasing = samples }

func (r *Renderer) Antialiasing() int { return r.antialiasing }

// CreateSurface allocates an offscreen render target with a smooth RGBA
// texture and a depth buffer. With antialiasing enabled drawing goes to a
// multisampled framebuffer that is resolved into the texture on demand.
// The current target stays bound.
func (r *Renderer) CreateSurface(width, height int) int {
	if !r.initialized || width <= 0 || height <= 0 {
		return InvalidID
	}
	th := r.dev.CreateTexture(width, height, 4, device.Linear)
	tex := r.textures.Add(texture{handle: th, width: width, height: height, channels: 4, smooth: true, owned: true})

	s := surface{texture: tex, width: width, height: height, samples: 1}
	s.depth = r.dev.CreateRenderbuffer(device.DepthBuffer, width, height, 1)
	fbo, err := r.dev.CreateFramebuffer(th, 0, s.depth)
	if err != nil {
		r.fatal("surface framebuffer incomplete", err)
	}
	s.fbo = fbo

	if samples := min(r.antialiasing, r.info.MaxSamples); samples > 1 {
		s.samples = samples
		s.msaaColor = r.dev.CreateRenderbuffer(device.ColorBuffer, width, height, samples)
		s.msaaDepth = r.dev.CreateRenderbuffer(device.DepthBuffer, width, height, samples)
		s.msaaFBO, err = r.dev.CreateFramebuffer(0, s.msaaColor, s.msaaDepth)
		if err != nil {
			r.fatal("multisample framebuffer incomplete", err)
		}
	}
	r.dev.BindFramebuffer(r.currentTarget())

	id := r.surfaces.Add(s)
	r.log.Debug("surface created", slog.Int("id", id), slog.Int("width", width), slog.Int("height", height), slog.Int("samples", s.samples))
	return id
}

// BindSurface makes surface id the render target, or the screen for
// InvalidID. A multisampled surface being left is resolved first.
func (r *Renderer) BindSurface(id int) {
	if !r.initialized {
		return
	}
	if prev := r.surfaces.Get(r.bound); prev != nil && prev.multisampled() {
		r.resolve(prev)
	}
	s := r.surfaces.Get(id)
	if s == nil {
		r.bound = InvalidID
		r.dev.BindFramebuffer(device.DefaultFramebuffer)
		r.dev.Viewport(0, 0, r.width, r.height)
		return
	}
	r.bound = id
	r.dev.BindFramebuffer(s.target())
	r.dev.Viewport(0, 0, s.width, s.height)
}

// BoundSurface returns the current surface, or InvalidID for the screen.
func (r *Renderer) BoundSurface() int { return r.bound }

// DeleteSurface frees a surface and its texture.
func (r *Renderer) DeleteSurface(id int) {
	if !r.surfaces.Check(id) {
		return
	}
	if r.bound == id {
		r.BindSurface(InvalidID)
	}
	r.surfaces.Remove(id)
}

// SurfaceTexture returns the texture a surface renders into, or InvalidID.
func (r *Renderer) SurfaceTexture(id int) int {
	if s := r.surfaces.Get(id); s != nil {
		return s.texture
	}
	return InvalidID
}

// SurfaceSize returns the size of a surface, or 0,0 for invalid ids.
func (r *Renderer) SurfaceSize(id int) (int, int) {
	if s := r.surfaces.Get(id); s != nil {
		return s.width, s.height
	}
	return 0, 0
}

// resolve blits the multisampled color of s into its texture. The
// framebuffer binding is unspecified afterwards.
func (r *Renderer) resolve(s *surface) {
	r.dev.BlitFramebuffer(s.msaaFBO, s.fbo, s.width, s.height)
	s.pending = false
	r.stats.Resolves++
}

func (r *Renderer) currentTarget() device.Framebuffer {
	if s := r.surfaces.Get(r.bound); s != nil {
		return s.target()
	}
	return device.DefaultFramebuffer
}

// touchTarget records that the bound surface has unresolved content.
func (r *Renderer) touchTarget() {
	if s := r.surfaces.Get(r.bound); s != nil && s.multisampled() {
		s.pending = true
	}
}
