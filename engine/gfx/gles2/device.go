// Package gles2backend implements device.Device on OpenGL ES 2.0.
//
// ES2 has no vertex array objects, no buffer to buffer copies and no
// multisampled renderbuffers. Attribute pointers are set up per draw, every
// vertex buffer keeps a CPU shadow used for copies, and MaxSamples is 1 so
// surfaces are never multisampled.
package gles2backend

import (
	"fmt"
	"log/slog"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/hubastard/grove2d/engine/gfx/device"
)

type Device struct {
	log     *slog.Logger
	info    device.Info
	shadows map[device.Buffer][]byte
	layouts [device.NumFormats]device.Buffer
	enabled [2]bool
}

var _ device.Device = (*Device)(nil)

// New loads the GLES function pointers. An ES 2.0 context must be current.
func New(log *slog.Logger) (*Device, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gles2 init: %w", err)
	}
	d := &Device{log: log, shadows: map[device.Buffer][]byte{}}
	d.info = device.Info{
		Name:       "gles2",
		Vendor:     gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer:   gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:    gl.GoStr(gl.GetString(gl.VERSION)),
		MaxSamples: 1,
	}
	log.Info("gles2 context", slog.String("version", d.info.Version), slog.String("renderer", d.info.Renderer))

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	return d, nil
}

func (d *Device) Info() device.Info { return d.info }
func (d *Device) Dialect() string   { return "glsl100" }

// --- buffers ---

func (d *Device) CreateBuffer(size int) device.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	gl.BindBuffer(gl.ARRAY_BUFFER, b)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	d.shadows[device.Buffer(b)] = make([]byte, size)
	return device.Buffer(b)
}

func (d *Device) BufferSubData(b device.Buffer, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	copy(d.shadows[b][offset:], data)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	gl.BufferSubData(gl.ARRAY_BUFFER, offset, len(data), gl.Ptr(data))
}

// CopyBuffer uploads the CPU shadow of src into dst.
func (d *Device) CopyBuffer(src, dst device.Buffer, size int) {
	if size <= 0 {
		return
	}
	d.BufferSubData(dst, 0, d.shadows[src][:size])
}

func (d *Device) DeleteBuffer(b device.Buffer) {
	delete(d.shadows, b)
	h := uint32(b)
	gl.DeleteBuffers(1, &h)
}

// BindVertexLayout only remembers the buffer; pointers are set per draw.
func (d *Device) BindVertexLayout(f device.VertexFormat, b device.Buffer) {
	d.layouts[f] = b
}

// --- programs ---

func (d *Device) CreateProgram(vs, fs string) (device.Program, error) {
	p, err := buildProgram(vs, fs)
	return device.Program(p), err
}

func (d *Device) UniformLocation(p device.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *Device) UseProgram(p device.Program) { gl.UseProgram(uint32(p)) }

func (d *Device) UniformMatrix4(loc int32, m *[16]float32) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) Uniform4(loc int32, v [4]float32) {
	gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
}

func (d *Device) DeleteProgram(p device.Program) { gl.DeleteProgram(uint32(p)) }

// --- textures ---

func (d *Device) CreateTexture(width, height, channels int, filter device.Filter) device.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	gl.BindTexture(gl.TEXTURE_2D, t)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	setFilter(filter)
	format := textureFormat(channels)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(format), int32(width), int32(height), 0, format, gl.UNSIGNED_BYTE, nil)
	return device.Texture(t)
}

func (d *Device) TexImage(t device.Texture, width, height, channels int, pixels []byte) {
	if len(pixels) < width*height*channels || len(pixels) == 0 {
		return
	}
	format := textureFormat(channels)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(format), int32(width), int32(height), 0, format, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Device) TexSubImage(t device.Texture, x, y, width, height, channels int, pixels []byte) {
	if len(pixels) < width*height*channels || len(pixels) == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(width), int32(height), textureFormat(channels), gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Device) SetTextureFilter(t device.Texture, f device.Filter) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	setFilter(f)
}

func (d *Device) BindTexture(unit int, t device.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *Device) DeleteTexture(t device.Texture) {
	h := uint32(t)
	gl.DeleteTextures(1, &h)
}

func setFilter(f device.Filter) {
	mode := int32(gl.NEAREST)
	if f == device.Linear {
		mode = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, mode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, mode)
}

func textureFormat(channels int) uint32 {
	switch channels {
	case 1:
		return gl.LUMINANCE
	case 2:
		return gl.LUMINANCE_ALPHA
	case 3:
		return gl.RGB
	default:
		return gl.RGBA
	}
}

// --- render targets ---

// CreateRenderbuffer ignores samples.
func (d *Device) CreateRenderbuffer(kind device.RenderbufferKind, width, height, samples int) device.Renderbuffer {
	internal := uint32(gl.DEPTH_COMPONENT16)
	if kind == device.ColorBuffer {
		internal = gl.RGBA4
	}
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rb)
	gl.RenderbufferStorage(gl.RENDERBUFFER, internal, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	return device.Renderbuffer(rb)
}

func (d *Device) DeleteRenderbuffer(rb device.Renderbuffer) {
	h := uint32(rb)
	gl.DeleteRenderbuffers(1, &h)
}

func (d *Device) CreateFramebuffer(color device.Texture, colorRB, depth device.Renderbuffer) (device.Framebuffer, error) {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	if color != 0 {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(color), 0)
	} else {
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, uint32(colorRB))
	}
	if depth != 0 {
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, uint32(depth))
	}
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fb)
		return 0, fmt.Errorf("framebuffer status 0x%x", status)
	}
	return device.Framebuffer(fb), nil
}

func (d *Device) DeleteFramebuffer(fb device.Framebuffer) {
	h := uint32(fb)
	gl.DeleteFramebuffers(1, &h)
}

func (d *Device) BindFramebuffer(fb device.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

// BlitFramebuffer is never reached: MaxSamples is 1.
func (d *Device) BlitFramebuffer(src, dst device.Framebuffer, width, height int) {
	d.log.Warn("gles2: framebuffer blit not supported", slog.Any("src", src), slog.Any("dst", dst))
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

// --- state and drawing ---

var blendFactors = [...]uint32{
	device.Zero:             gl.ZERO,
	device.One:              gl.ONE,
	device.SrcColor:         gl.SRC_COLOR,
	device.OneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	device.DstColor:         gl.DST_COLOR,
	device.OneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
	device.SrcAlpha:         gl.SRC_ALPHA,
	device.OneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	device.DstAlpha:         gl.DST_ALPHA,
	device.OneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
}

var blendEquations = [...]uint32{
	device.FuncAdd:             gl.FUNC_ADD,
	device.FuncSubtract:        gl.FUNC_SUBTRACT,
	device.FuncReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
}

var primitives = [...]uint32{
	device.Points:        gl.POINTS,
	device.Lines:         gl.LINES,
	device.LineStrip:     gl.LINE_STRIP,
	device.LineLoop:      gl.LINE_LOOP,
	device.Triangles:     gl.TRIANGLES,
	device.TriangleStrip: gl.TRIANGLE_STRIP,
	device.TriangleFan:   gl.TRIANGLE_FAN,
}

func (d *Device) SetBlend(src, dst device.BlendFactor, eq device.BlendEquation) {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(blendFactors[src], blendFactors[dst])
	gl.BlendEquation(blendEquations[eq])
}

func (d *Device) Clear(c [4]float32) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Draw(f device.VertexFormat, prim device.Primitive, first, count int) {
	l := f.Layout()
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(d.layouts[f]))
	var used [2]bool
	for _, a := range l.Attributes {
		used[a.Location] = true
		gl.VertexAttribPointer(a.Location, a.Size, gl.FLOAT, false, l.Stride, gl.PtrOffset(a.Offset))
	}
	for loc := range d.enabled {
		if used[loc] == d.enabled[loc] {
			continue
		}
		if used[loc] {
			gl.EnableVertexAttribArray(uint32(loc))
		} else {
			gl.DisableVertexAttribArray(uint32(loc))
		}
		d.enabled[loc] = used[loc]
	}
	gl.DrawArrays(primitives[prim], int32(first), int32(count))
}

func (d *Device) Flush() { gl.Flush() }

func (d *Device) Release() {
	for loc := range d.enabled {
		if d.enabled[loc] {
			gl.DisableVertexAttribArray(uint32(loc))
			d.enabled[loc] = false
		}
	}
	clear(d.shadows)
}
