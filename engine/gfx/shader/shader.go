// Package shader owns the fixed set of shader programs and defers uniform
// uploads until the program that needs them is bound.
package shader

import (
	"embed"
	"fmt"
	"log/slog"
	"path"

	"github.com/hubastard/grove2d/engine/assets"
	"github.com/hubastard/grove2d/engine/gfx/device"
)

// Program names one of the built-in programs.
type Program int

const (
	Solid      Program = iota // uniform draw color
	Colored                   // per-vertex color
	Textured                  // texture modulated by draw color
	Font                      // single channel coverage tinted by draw color
	Backbuffer                // fixed NDC quad copying a texture to the screen
	NumPrograms

	None Program = -1
)

var programNames = [NumPrograms]string{"solid", "colored", "textured", "font", "backbuffer"}

func (p Program) String() string {
	if p >= 0 && p < NumPrograms {
		return programNames[p]
	}
	return fmt.Sprintf("Program(%d)", int(p))
}

// Uniform is a bit set of the cached uniforms.
type Uniform uint8

const (
	Projection Uniform = 1 << iota
	ModelView
	DrawColor

	AllUniforms = Projection | ModelView | DrawColor
)

var uniformNames = [...]string{"uProjection", "uModelView", "uColor"}

// Source holds the two stages of a program.
type Source struct {
	Vertex, Fragment string
}

//go:embed glsl
var glslFS embed.FS

var dialects = map[string]string{
	"glsl330": "glsl/330",
	"glsl100": "glsl/100",
}

// Sources returns the built-in program sources for a shading dialect.
func Sources(dialect string) ([NumPrograms]Source, error) {
	var out [NumPrograms]Source
	dir, ok := dialects[dialect]
	if !ok {
		return out, fmt.Errorf("shader: unsupported dialect %q", dialect)
	}
	for p := Program(0); p < NumPrograms; p++ {
		vs, err := assets.LoadShader(glslFS, path.Join(dir, programNames[p]+".vert"))
		if err != nil {
			return out, err
		}
		fs, err := assets.LoadShader(glslFS, path.Join(dir, programNames[p]+".frag"))
		if err != nil {
			return out, err
		}
		out[p] = Source{Vertex: vs, Fragment: fs}
	}
	return out, nil
}

type entry struct {
	handle device.Program
	locs   [3]int32
	uses   Uniform
	dirty  Uniform
}

// Cache is the program set plus the current value of each shared uniform.
type Cache struct {
	dev    device.Device
	log    *slog.Logger
	progs  [NumPrograms]entry
	active Program

	projection [16]float32
	modelView  [16]float32
	color      [4]float32
}

// NewCache compiles and links every program. A program that fails to build
// is logged and left with handle 0, which draws nothing.
func NewCache(dev device.Device, srcs [NumPrograms]Source, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Cache{dev: dev, log: log, active: None}
	for p := Program(0); p < NumPrograms; p++ {
		e := &c.progs[p]
		h, err := dev.CreateProgram(srcs[p].Vertex, srcs[p].Fragment)
		if err != nil {
			log.Error("shader program failed", slog.String("program", p.String()), slog.Any("error", err))
		}
		e.handle = h
		for i, name := range uniformNames {
			e.locs[i] = -1
			if h == 0 {
				continue
			}
			e.locs[i] = dev.UniformLocation(h, name)
			if e.locs[i] >= 0 {
				e.uses |= 1 << i
			}
		}
		// nothing has been uploaded yet
		e.dirty = e.uses
	}
	return c
}

// Handle returns the device program behind p.
func (c *Cache) Handle(p Program) device.Program { return c.progs[p].handle }

// Active returns the bound program, or None.
func (c *Cache) Active() Program { return c.active }

// Dirty returns the uniforms p still has to upload.
func (c *Cache) Dirty(p Program) Uniform { return c.progs[p].dirty }

// Bind makes p current and uploads its pending uniforms.
func (c *Cache) Bind(p Program) {
	if c.active == p {
		return
	}
	c.dev.UseProgram(c.progs[p].handle)
	c.active = p
	c.apply(p)
}

// SetDirty marks u on p. The upload happens now if p is bound, otherwise on
// its next Bind.
func (c *Cache) SetDirty(p Program, u Uniform) {
	e := &c.progs[p]
	e.dirty |= u & e.uses
	if c.active == p {
		c.apply(p)
	}
}

func (c *Cache) markAll(u Uniform) {
	for p := Program(0); p < NumPrograms; p++ {
		c.SetDirty(p, u)
	}
}

func (c *Cache) SetProjection(m [16]float32) {
	if m == c.projection {
		return
	}
	c.projection = m
	c.markAll(Projection)
}

func (c *Cache) SetModelView(m [16]float32) {
	if m == c.modelView {
		return
	}
	c.modelView = m
	c.markAll(ModelView)
}

func (c *Cache) SetDrawColor(col [4]float32) {
	if col == c.color {
		return
	}
	c.color = col
	c.markAll(DrawColor)
}

func (c *Cache) DrawColor() [4]float32 { return c.color }

func (c *Cache) apply(p Program) {
	e := &c.progs[p]
	if e.dirty == 0 {
		return
	}
	if e.dirty&Projection != 0 {
		c.dev.UniformMatrix4(e.locs[0], &c.projection)
	}
	if e.dirty&ModelView != 0 {
		c.dev.UniformMatrix4(e.locs[1], &c.modelView)
	}
	if e.dirty&DrawColor != 0 {
		c.dev.Uniform4(e.locs[2], c.color)
	}
	e.dirty = 0
}

// Release deletes every program.
func (c *Cache) Release() {
	for p := range c.progs {
		if c.progs[p].handle != 0 {
			c.dev.DeleteProgram(c.progs[p].handle)
		}
		c.progs[p] = entry{}
	}
	c.active = None
}
