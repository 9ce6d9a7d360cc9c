// Package null implements device.Device on the CPU without drawing anything.
//
// It keeps enough state to answer questions about what a real GPU would have
// seen: buffer contents, uniform values per program, which framebuffer a draw
// went to and what a sampled texture contained. Headless runs and the
// renderer tests use it.
package null

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hubastard/grove2d/engine/gfx/device"
)

// ErrIncomplete is returned by CreateFramebuffer when FailFramebuffers is set.
var ErrIncomplete = errors.New("null: framebuffer incomplete")

// DrawCall is a snapshot of the state a draw was issued with.
type DrawCall struct {
	Program     device.Program
	Format      device.VertexFormat
	Primitive   device.Primitive
	First       int
	Count       int
	Framebuffer device.Framebuffer
	Texture     device.Texture
	// Sampled is the content serial of Texture at draw time (0 = never drawn to).
	Sampled  int
	Uniforms map[string][]float32
	Vertices []float32
}

type program struct {
	vs, fs   string
	locs     map[string]int32
	names    map[int32]string
	uniforms map[string][]float32
}

type texture struct {
	width, height, channels int
	filter                  device.Filter
	pixels                  []byte
	content                 int
}

type renderbuffer struct {
	kind                   device.RenderbufferKind
	width, height, samples int
	content                int
}

type framebuffer struct {
	color   device.Texture
	colorRB device.Renderbuffer
	depth   device.Renderbuffer
}

// Device is a recording device.Device.
type Device struct {
	// MaxSamples is reported through Info. Defaults to 8.
	MaxSamples int
	// FailFramebuffers makes every CreateFramebuffer fail.
	FailFramebuffers bool
	// FailPrograms makes every CreateProgram fail.
	FailPrograms bool

	// Ops is the ordered log of state changing calls.
	Ops   []string
	Draws []DrawCall

	ViewportRect [4]int
	Blend        [3]int
	Cleared      [][4]float32
	Flushes      int

	next          uint32
	serial        int
	buffers       map[device.Buffer][]byte
	layouts       [device.NumFormats]device.Buffer
	programs      map[device.Program]*program
	textures      map[device.Texture]*texture
	renderbuffers map[device.Renderbuffer]*renderbuffer
	framebuffers  map[device.Framebuffer]*framebuffer
	active        device.Program
	boundFB       device.Framebuffer
	units         [8]device.Texture
}

var _ device.Device = (*Device)(nil)

func New() *Device {
	return &Device{
		MaxSamples:    8,
		buffers:       map[device.Buffer][]byte{},
		programs:      map[device.Program]*program{},
		textures:      map[device.Texture]*texture{},
		renderbuffers: map[device.Renderbuffer]*renderbuffer{},
		framebuffers:  map[device.Framebuffer]*framebuffer{},
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) op(format string, args ...any) {
	d.Ops = append(d.Ops, fmt.Sprintf(format, args...))
}

func (d *Device) Info() device.Info {
	return device.Info{Name: "null", Vendor: "grove2d", Renderer: "null", Version: "0", MaxSamples: d.MaxSamples}
}

func (d *Device) Dialect() string { return "glsl330" }

// --- buffers ---

func (d *Device) CreateBuffer(size int) device.Buffer {
	b := device.Buffer(d.id())
	d.buffers[b] = make([]byte, size)
	d.op("CreateBuffer %d %d", b, size)
	return b
}

func (d *Device) BufferSubData(b device.Buffer, offset int, data []byte) {
	buf, ok := d.buffers[b]
	if !ok || offset+len(data) > len(buf) {
		panic(fmt.Sprintf("null: BufferSubData out of range: buffer %d offset %d len %d", b, offset, len(data)))
	}
	copy(buf[offset:], data)
}

func (d *Device) CopyBuffer(src, dst device.Buffer, size int) {
	copy(d.buffers[dst][:size], d.buffers[src][:size])
	d.op("CopyBuffer %d %d %d", src, dst, size)
}

func (d *Device) DeleteBuffer(b device.Buffer) {
	delete(d.buffers, b)
	d.op("DeleteBuffer %d", b)
}

func (d *Device) BindVertexLayout(f device.VertexFormat, b device.Buffer) {
	d.layouts[f] = b
	d.op("BindVertexLayout %s %d", f, b)
}

// BufferData returns the live contents of b, or nil if it was deleted.
func (d *Device) BufferData(b device.Buffer) []byte { return d.buffers[b] }

// LiveBuffers counts buffers not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// --- programs ---

func (d *Device) CreateProgram(vs, fs string) (device.Program, error) {
	if d.FailPrograms {
		return 0, &device.BuildError{Stage: "link", Log: "null device refuses to link"}
	}
	p := device.Program(d.id())
	d.programs[p] = &program{
		vs: vs, fs: fs,
		locs:     map[string]int32{},
		names:    map[int32]string{},
		uniforms: map[string][]float32{},
	}
	d.op("CreateProgram %d", p)
	return p, nil
}

// UniformLocation hands out locations for names declared as uniforms in
// either stage, -1 otherwise.
func (d *Device) UniformLocation(p device.Program, name string) int32 {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	if loc, ok := prog.locs[name]; ok {
		return loc
	}
	if !declares(prog.vs, name) && !declares(prog.fs, name) {
		return -1
	}
	loc := int32(len(prog.locs))
	prog.locs[name] = loc
	prog.names[loc] = name
	return loc
}

func declares(src, name string) bool {
	for _, line := range strings.Split(src, "\n") {
		f := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		if len(f) >= 3 && f[0] == "uniform" && f[len(f)-1] == name {
			return true
		}
	}
	return false
}

func (d *Device) UseProgram(p device.Program) {
	d.active = p
	d.op("UseProgram %d", p)
}

func (d *Device) setUniform(loc int32, v []float32) {
	prog, ok := d.programs[d.active]
	if !ok || loc < 0 {
		return
	}
	if name, ok := prog.names[loc]; ok {
		prog.uniforms[name] = v
		d.op("Uniform %d %s", d.active, name)
	}
}

func (d *Device) UniformMatrix4(loc int32, m *[16]float32) {
	d.setUniform(loc, append([]float32(nil), m[:]...))
}

func (d *Device) Uniform4(loc int32, v [4]float32) {
	d.setUniform(loc, append([]float32(nil), v[:]...))
}

func (d *Device) DeleteProgram(p device.Program) {
	delete(d.programs, p)
	d.op("DeleteProgram %d", p)
}

// ActiveProgram returns the program last passed to UseProgram.
func (d *Device) ActiveProgram() device.Program { return d.active }

// UniformValue returns the value last uploaded to a uniform of p.
func (d *Device) UniformValue(p device.Program, name string) []float32 {
	if prog, ok := d.programs[p]; ok {
		return prog.uniforms[name]
	}
	return nil
}

// --- textures ---

func (d *Device) CreateTexture(width, height, channels int, filter device.Filter) device.Texture {
	t := device.Texture(d.id())
	d.textures[t] = &texture{
		width: width, height: height, channels: channels,
		filter: filter,
		pixels: make([]byte, width*height*channels),
	}
	d.op("CreateTexture %d %dx%dx%d", t, width, height, channels)
	return t
}

func (d *Device) TexImage(t device.Texture, width, height, channels int, pixels []byte) {
	tex, ok := d.textures[t]
	if !ok {
		return
	}
	tex.width, tex.height, tex.channels = width, height, channels
	tex.pixels = make([]byte, width*height*channels)
	copy(tex.pixels, pixels)
	d.op("TexImage %d", t)
}

func (d *Device) TexSubImage(t device.Texture, x, y, width, height, channels int, pixels []byte) {
	tex, ok := d.textures[t]
	if !ok || x < 0 || y < 0 {
		return
	}
	for row := 0; row < height && y+row < tex.height; row++ {
		dst := ((y+row)*tex.width + x) * tex.channels
		src := row * width * channels
		n := min(width, tex.width-x) * channels
		if src+n > len(pixels) || n <= 0 {
			break
		}
		copy(tex.pixels[dst:dst+n], pixels[src:src+n])
	}
	d.op("TexSubImage %d %d,%d %dx%d", t, x, y, width, height)
}

func (d *Device) SetTextureFilter(t device.Texture, f device.Filter) {
	if tex, ok := d.textures[t]; ok {
		tex.filter = f
		d.op("SetTextureFilter %d %d", t, f)
	}
}

func (d *Device) BindTexture(unit int, t device.Texture) {
	d.units[unit] = t
	d.op("BindTexture %d %d", unit, t)
}

func (d *Device) DeleteTexture(t device.Texture) {
	delete(d.textures, t)
	d.op("DeleteTexture %d", t)
}

// LiveTextures counts textures not yet deleted.
func (d *Device) LiveTextures() int { return len(d.textures) }

// TextureFilter reports the filter of t.
func (d *Device) TextureFilter(t device.Texture) device.Filter {
	if tex, ok := d.textures[t]; ok {
		return tex.filter
	}
	return device.Nearest
}

// TexturePixels returns the CPU copy of t's storage.
func (d *Device) TexturePixels(t device.Texture) []byte {
	if tex, ok := d.textures[t]; ok {
		return tex.pixels
	}
	return nil
}

// TextureContent returns the serial of the last draw resolved into t.
func (d *Device) TextureContent(t device.Texture) int {
	if tex, ok := d.textures[t]; ok {
		return tex.content
	}
	return 0
}

// --- render targets ---

func (d *Device) CreateRenderbuffer(kind device.RenderbufferKind, width, height, samples int) device.Renderbuffer {
	rb := device.Renderbuffer(d.id())
	d.renderbuffers[rb] = &renderbuffer{kind: kind, width: width, height: height, samples: samples}
	d.op("CreateRenderbuffer %d kind=%d samples=%d", rb, kind, samples)
	return rb
}

func (d *Device) DeleteRenderbuffer(rb device.Renderbuffer) {
	delete(d.renderbuffers, rb)
	d.op("DeleteRenderbuffer %d", rb)
}

func (d *Device) CreateFramebuffer(color device.Texture, colorRB, depth device.Renderbuffer) (device.Framebuffer, error) {
	if d.FailFramebuffers {
		return 0, ErrIncomplete
	}
	fb := device.Framebuffer(d.id())
	d.framebuffers[fb] = &framebuffer{color: color, colorRB: colorRB, depth: depth}
	d.op("CreateFramebuffer %d", fb)
	return fb, nil
}

func (d *Device) DeleteFramebuffer(fb device.Framebuffer) {
	delete(d.framebuffers, fb)
	d.op("DeleteFramebuffer %d", fb)
}

func (d *Device) BindFramebuffer(fb device.Framebuffer) {
	d.boundFB = fb
	d.op("BindFramebuffer %d", fb)
}

func (d *Device) BlitFramebuffer(src, dst device.Framebuffer, width, height int) {
	d.setContent(dst, d.content(src))
	d.op("BlitFramebuffer %d %d", src, dst)
}

func (d *Device) content(fb device.Framebuffer) int {
	f, ok := d.framebuffers[fb]
	if !ok {
		return 0
	}
	if tex, ok := d.textures[f.color]; ok {
		return tex.content
	}
	if rb, ok := d.renderbuffers[f.colorRB]; ok {
		return rb.content
	}
	return 0
}

func (d *Device) setContent(fb device.Framebuffer, serial int) {
	f, ok := d.framebuffers[fb]
	if !ok {
		return
	}
	if tex, ok := d.textures[f.color]; ok {
		tex.content = serial
	}
	if rb, ok := d.renderbuffers[f.colorRB]; ok {
		rb.content = serial
	}
}

// BoundFramebuffer returns the current render target.
func (d *Device) BoundFramebuffer() device.Framebuffer { return d.boundFB }

// LiveFramebuffers counts framebuffers not yet deleted.
func (d *Device) LiveFramebuffers() int { return len(d.framebuffers) }

// LiveRenderbuffers counts renderbuffers not yet deleted.
func (d *Device) LiveRenderbuffers() int { return len(d.renderbuffers) }

func (d *Device) Viewport(x, y, width, height int) {
	d.ViewportRect = [4]int{x, y, width, height}
}

// --- state and drawing ---

func (d *Device) SetBlend(src, dst device.BlendFactor, eq device.BlendEquation) {
	d.Blend = [3]int{int(src), int(dst), int(eq)}
}

func (d *Device) Clear(c [4]float32) {
	d.Cleared = append(d.Cleared, c)
	d.serial++
	d.setContent(d.boundFB, d.serial)
	d.op("Clear %d", d.boundFB)
}

func (d *Device) Draw(f device.VertexFormat, prim device.Primitive, first, count int) {
	d.serial++
	call := DrawCall{
		Program:     d.active,
		Format:      f,
		Primitive:   prim,
		First:       first,
		Count:       count,
		Framebuffer: d.boundFB,
		Texture:     d.units[0],
		Uniforms:    map[string][]float32{},
	}
	if tex, ok := d.textures[call.Texture]; ok {
		call.Sampled = tex.content
	}
	if prog, ok := d.programs[d.active]; ok {
		for k, v := range prog.uniforms {
			call.Uniforms[k] = v
		}
	}
	call.Vertices = d.vertices(f, first, count)
	d.Draws = append(d.Draws, call)
	d.setContent(d.boundFB, d.serial)
	d.op("Draw %s %d %d", f, first, count)
}

func (d *Device) vertices(f device.VertexFormat, first, count int) []float32 {
	buf := d.buffers[d.layouts[f]]
	stride := f.Stride()
	start, end := first*stride, (first+count)*stride
	if end > len(buf) {
		return nil
	}
	out := make([]float32, 0, count*f.Floats())
	for i := start; i < end; i += 4 {
		out = append(out, math.Float32frombits(binary.NativeEndian.Uint32(buf[i:i+4])))
	}
	return out
}

func (d *Device) Flush() { d.Flushes++ }

func (d *Device) Release() { d.op("Release") }

// Reset forgets recorded draws and ops, keeping all objects alive.
func (d *Device) Reset() {
	d.Ops = d.Ops[:0]
	d.Draws = d.Draws[:0]
	d.Cleared = d.Cleared[:0]
}
