// Package device defines the thin GPU abstraction every backend implements.
//
// A Device only records commands; all state machines (buffer growth, uniform
// caching, surface resolve) live above it in vbuf, shader and render, so that
// a new backend only has to translate these calls to its API.
package device

import "fmt"

// GPU object names. Zero is never a valid object except for Framebuffer,
// where it names the default (window) framebuffer.
type (
	Buffer       uint32
	Texture      uint32
	Framebuffer  uint32
	Renderbuffer uint32
	Program      uint32
)

// DefaultFramebuffer is the window's back buffer.
const DefaultFramebuffer Framebuffer = 0

// Info describes the active backend.
type Info struct {
	Name       string
	Vendor     string
	Renderer   string
	Version    string
	MaxSamples int
}

// Device is the set of GPU operations the renderer needs. Implementations
// must only be used from the goroutine that owns the GPU context.
type Device interface {
	Info() Info
	// Dialect names the shading language the device compiles, e.g. "glsl330".
	Dialect() string

	CreateBuffer(size int) Buffer
	BufferSubData(b Buffer, offset int, data []byte)
	// CopyBuffer copies the first size bytes of src into dst.
	CopyBuffer(src, dst Buffer, size int)
	DeleteBuffer(b Buffer)
	// BindVertexLayout ties the attribute layout of f to buffer b. It must be
	// called again whenever the buffer backing a format changes.
	BindVertexLayout(f VertexFormat, b Buffer)

	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)
	UniformLocation(p Program, name string) int32
	UseProgram(p Program)
	// Uniform setters apply to the program currently in use.
	UniformMatrix4(loc int32, m *[16]float32)
	Uniform4(loc int32, v [4]float32)
	DeleteProgram(p Program)

	// CreateTexture allocates empty storage with the given filter and
	// clamp-to-edge wrapping.
	CreateTexture(width, height, channels int, filter Filter) Texture
	TexImage(t Texture, width, height, channels int, pixels []byte)
	TexSubImage(t Texture, x, y, width, height, channels int, pixels []byte)
	SetTextureFilter(t Texture, f Filter)
	BindTexture(unit int, t Texture)
	DeleteTexture(t Texture)

	CreateRenderbuffer(kind RenderbufferKind, width, height, samples int) Renderbuffer
	DeleteRenderbuffer(rb Renderbuffer)
	// CreateFramebuffer binds a color attachment (a texture, or a
	// renderbuffer when color is zero) and a depth renderbuffer together.
	// It fails if the result is incomplete.
	CreateFramebuffer(color Texture, colorRB, depth Renderbuffer) (Framebuffer, error)
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(fb Framebuffer)
	// BlitFramebuffer resolves the color of src into dst with nearest filtering.
	BlitFramebuffer(src, dst Framebuffer, width, height int)
	Viewport(x, y, width, height int)

	SetBlend(src, dst BlendFactor, eq BlendEquation)
	Clear(c [4]float32)
	// Draw issues count vertices of format f starting at vertex first of the
	// buffer last bound with BindVertexLayout.
	Draw(f VertexFormat, prim Primitive, first, count int)
	Flush()

	Release()
}

// VertexFormat identifies one of the fixed vertex layouts.
type VertexFormat int

const (
	Position         VertexFormat = iota // x, y
	PositionColor                        // x, y, r, g, b, a
	PositionTexcoord                     // x, y, u, v
	NumFormats
)

// VertexAttrib describes a float32 attribute inside a vertex.
type VertexAttrib struct {
	Location uint32
	Size     int32 // components
	Offset   int   // bytes
}

// VertexLayout describes an interleaved vertex format.
type VertexLayout struct {
	Stride     int32 // bytes
	Attributes []VertexAttrib
}

var layouts = [NumFormats]VertexLayout{
	Position: {
		Stride:     2 * 4,
		Attributes: []VertexAttrib{{Location: 0, Size: 2, Offset: 0}},
	},
	PositionColor: {
		Stride: 6 * 4,
		Attributes: []VertexAttrib{
			{Location: 0, Size: 2, Offset: 0},
			{Location: 1, Size: 4, Offset: 2 * 4},
		},
	},
	PositionTexcoord: {
		Stride: 4 * 4,
		Attributes: []VertexAttrib{
			{Location: 0, Size: 2, Offset: 0},
			{Location: 1, Size: 2, Offset: 2 * 4},
		},
	},
}

// Layout returns the attribute layout of f.
func (f VertexFormat) Layout() VertexLayout { return layouts[f] }

// Stride returns the size of one vertex in bytes.
func (f VertexFormat) Stride() int { return int(layouts[f].Stride) }

// Floats returns the number of float32 components per vertex.
func (f VertexFormat) Floats() int { return f.Stride() / 4 }

func (f VertexFormat) String() string {
	switch f {
	case Position:
		return "position"
	case PositionColor:
		return "position+color"
	case PositionTexcoord:
		return "position+texcoord"
	}
	return fmt.Sprintf("VertexFormat(%d)", int(f))
}

// Primitive is the topology of a draw.
type Primitive int

const (
	Points Primitive = iota
	Lines
	LineStrip
	LineLoop
	Triangles
	TriangleStrip
	TriangleFan
)

type Filter int

const (
	Nearest Filter = iota
	Linear
)

type RenderbufferKind int

const (
	DepthBuffer RenderbufferKind = iota
	ColorBuffer
)

// BlendFactor mirrors the GL blend factors.
type BlendFactor int

const (
	Zero BlendFactor = iota
	One
	SrcColor
	OneMinusSrcColor
	DstColor
	OneMinusDstColor
	SrcAlpha
	OneMinusSrcAlpha
	DstAlpha
	OneMinusDstAlpha
)

// BlendEquation mirrors the GL blend equations.
type BlendEquation int

const (
	FuncAdd BlendEquation = iota
	FuncSubtract
	FuncReverseSubtract
)

// BuildError is returned by CreateProgram when a stage fails to compile or
// the program fails to link. Log is the driver's info log.
type BuildError struct {
	Stage string // "vertex", "fragment" or "link"
	Log   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s shader: %s", e.Stage, e.Log)
}
