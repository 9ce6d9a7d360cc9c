// Package glbackend implements device.Device on desktop OpenGL 3.3 core.
package glbackend

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/grove2d/engine/gfx/device"
)

// Device drives the GL context current on the calling thread.
type Device struct {
	log  *slog.Logger
	info device.Info
	vaos [device.NumFormats]uint32
}

var _ device.Device = (*Device)(nil)

// New loads the GL function pointers. A 3.3 core context must be current.
func New(log *slog.Logger) (*Device, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	var samples int32
	gl.GetIntegerv(gl.MAX_SAMPLES, &samples)

	d := &Device{log: log}
	d.info = device.Info{
		Name:       "gl",
		Vendor:     gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer:   gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:    gl.GoStr(gl.GetString(gl.VERSION)),
		MaxSamples: max(int(samples), 1),
	}
	log.Info("gl context", slog.String("version", d.info.Version), slog.String("renderer", d.info.Renderer))

	gl.GenVertexArrays(int32(len(d.vaos)), &d.vaos[0])
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	return d, nil
}

func (d *Device) Info() device.Info { return d.info }
func (d *Device) Dialect() string   { return "glsl330" }

// --- buffers ---

func (d *Device) CreateBuffer(size int) device.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	gl.BindBuffer(gl.ARRAY_BUFFER, b)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	return device.Buffer(b)
}

func (d *Device) BufferSubData(b device.Buffer, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	gl.BufferSubData(gl.ARRAY_BUFFER, offset, len(data), gl.Ptr(data))
}

func (d *Device) CopyBuffer(src, dst device.Buffer, size int) {
	gl.BindBuffer(gl.COPY_READ_BUFFER, uint32(src))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, uint32(dst))
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, size)
}

func (d *Device) DeleteBuffer(b device.Buffer) {
	h := uint32(b)
	gl.DeleteBuffers(1, &h)
}

// BindVertexLayout records the attribute pointers of f into its vertex array.
func (d *Device) BindVertexLayout(f device.VertexFormat, b device.Buffer) {
	l := f.Layout()
	gl.BindVertexArray(d.vaos[f])
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	for _, a := range l.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointer(a.Location, a.Size, gl.FLOAT, false, l.Stride, gl.PtrOffset(a.Offset))
	}
	gl.BindVertexArray(0)
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
	internal, format := textureFormat(channels)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, format, gl.UNSIGNED_BYTE, nil)
	if swz := swizzle(channels); swz != nil {
		gl.TexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_RGBA, &swz[0])
	}
	return device.Texture(t)
}

func (d *Device) TexImage(t device.Texture, width, height, channels int, pixels []byte) {
	if len(pixels) < width*height*channels || len(pixels) == 0 {
		return
	}
	internal, format := textureFormat(channels)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, format, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Device) TexSubImage(t device.Texture, x, y, width, height, channels int, pixels []byte) {
	if len(pixels) < width*height*channels || len(pixels) == 0 {
		return
	}
	_, format := textureFormat(channels)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(width), int32(height), format, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
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

// One and two channel textures are stored as RED / RG and swizzled so they
// sample like the GLES2 luminance formats.
func textureFormat(channels int) (internal int32, format uint32) {
	switch channels {
	case 1:
		return gl.R8, gl.RED
	case 2:
		return gl.RG8, gl.RG
	case 3:
		return gl.RGB8, gl.RGB
	default:
		return gl.RGBA8, gl.RGBA
	}
}

func swizzle(channels int) []int32 {
	switch channels {
	case 1:
		return []int32{gl.RED, gl.RED, gl.RED, gl.ONE}
	case 2:
		return []int32{gl.RED, gl.RED, gl.RED, gl.GREEN}
	}
	return nil
}

// --- render targets ---

func (d *Device) CreateRenderbuffer(kind device.RenderbufferKind, width, height, samples int) device.Renderbuffer {
	internal := uint32(gl.DEPTH_COMPONENT24)
	if kind == device.ColorBuffer {
		internal = gl.RGBA8
	}
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rb)
	if samples > 1 {
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, int32(samples), internal, int32(width), int32(height))
	} else {
		gl.RenderbufferStorage(gl.RENDERBUFFER, internal, int32(width), int32(height))
	}
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	return device.Renderbuffer(rb)
}

func (d *Device) DeleteRenderbuffer(rb device.Renderbuffer) {
	h := uint32(rb)
	gl.DeleteRenderbuffers(1, &h)
}

// CreateFramebuffer leaves the new framebuffer bound.
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

func (d *Device) BlitFramebuffer(src, dst device.Framebuffer, width, height int) {
	w, h := int32(width), int32(height)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, uint32(src))
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, uint32(dst))
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, gl.NEAREST)
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
	gl.BindVertexArray(d.vaos[f])
	gl.DrawArrays(primitives[prim], int32(first), int32(count))
}

func (d *Device) Flush() { gl.Flush() }

func (d *Device) Release() {
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(int32(len(d.vaos)), &d.vaos[0])
	d.vaos = [device.NumFormats]uint32{}
}
