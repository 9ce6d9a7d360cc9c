// Package ui is a small retained layout toolkit for overlays: views stack
// children along an axis, labels draw text and buttons report clicks.
// Trees are cheap to rebuild every frame.
package ui

import (
	"math"

	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/text"
)

type SizeMode int

const (
	SizeModeFit SizeMode = iota
	SizeModeFixed
	SizeModeExpand
)

type Constraints struct {
	Min [2]float32
	Max [2]float32 // 0 means unbounded
}

type LayoutResult struct {
	Size [2]float32
}

// Painter draws widget backgrounds and glyphs. *graphics.Graphics
// implements it.
type Painter interface {
	text.Drawer
	SetFillColor(c colors.Color)
	FillRectangle(x, y, w, h float32)
}

// Context carries what a frame of UI needs.
type Context struct {
	Viewport [4]float32 // x, y, w, h
	Text     *text.Renderer
	Painter  Painter

	// pointer state in viewport pixels
	MouseX, MouseY float32
	Clicked        bool
}

type UIElement interface {
	Node() *Base
	Layout(ctx *Context, constraints Constraints) LayoutResult
	Draw(ctx *Context)
}

type Base struct {
	parent   UIElement
	children []UIElement
	position [2]float32
	offset   [2]float32 // from the parent's position
	size     [2]float32
	color    colors.Color
	mode     [2]SizeMode
	fixed    [2]float32
	padding  [4]float32 // left, top, right, bottom
}

func (b *Base) Parent() UIElement       { return b.parent }
func (b *Base) Children() []UIElement   { return b.children }
func (b *Base) Pos() (x, y float32)     { return b.position[0], b.position[1] }
func (b *Base) Size() (w, h float32)    { return b.size[0], b.size[1] }
func (b *Base) SetPos(x, y float32)     { b.position = [2]float32{x, y} }
func (b *Base) SetSize(w, h float32)    { b.size = [2]float32{w, h} }
func (b *Base) SetColor(c colors.Color) { b.color = c }
func (b *Base) Padding() [4]float32     { return b.padding }
func (b *Base) SetPadding(l, t, r, btm float32) {
	b.padding = [4]float32{l, t, r, btm}
}

// Contains reports whether (x, y) is inside the laid out box.
func (b *Base) Contains(x, y float32) bool {
	return x >= b.position[0] && x <= b.position[0]+b.size[0] &&
		y >= b.position[1] && y <= b.position[1]+b.size[1]
}

// pad returns the padding along axis: 0 horizontal, 1 vertical.
func (b *Base) pad(axis int) float32 {
	return b.padding[axis] + b.padding[axis+2]
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

func unbounded(limit float32) float32 {
	if limit == 0 {
		return math.MaxFloat32
	}
	return limit
}

// resolve picks the outer size along axis from the content size.
func (b *Base) resolve(axis int, content float32, c Constraints) float32 {
	lo, hi := c.Min[axis], unbounded(c.Max[axis])
	switch b.mode[axis] {
	case SizeModeFixed:
		if b.fixed[axis] > 0 {
			return clamp(b.fixed[axis], lo, hi)
		}
	case SizeModeExpand:
		if c.Max[axis] > 0 {
			return clamp(hi, lo, hi)
		}
	}
	return clamp(content, lo, hi)
}

func (b *Base) drawBackground(ctx *Context, c colors.Color) {
	if c[3] <= 0 || ctx.Painter == nil {
		return
	}
	ctx.Painter.SetFillColor(c)
	ctx.Painter.FillRectangle(b.position[0], b.position[1], b.size[0], b.size[1])
}

// layoutRoot lays out a parentless element over the whole viewport.
func layoutRoot(ctx *Context, e UIElement) {
	n := e.Node()
	if n.parent != nil {
		return
	}
	n.SetPos(ctx.Viewport[0], ctx.Viewport[1])
	e.Layout(ctx, Constraints{Max: [2]float32{ctx.Viewport[2], ctx.Viewport[3]}})
}

// drawChildren places the children at their offsets and draws them.
func (b *Base) drawChildren(ctx *Context) {
	for _, c := range b.children {
		n := c.Node()
		n.position = [2]float32{b.position[0] + n.offset[0], b.position[1] + n.offset[1]}
		c.Draw(ctx)
	}
}

// ------ Helper ------

// Common implements the chainable setters shared by every widget.
type Common[T any] struct {
	owner T
	base  Base
}

func NewCommon[T any](owner T) Common[T] {
	return Common[T]{owner: owner}
}

func (c *Common[T]) Node() *Base              { return &c.base }
func (c *Common[T]) Position(x, y float32) T  { c.base.SetPos(x, y); return c.owner }
func (c *Common[T]) Size(w, h float32) T      { c.base.SetSize(w, h); return c.owner }
func (c *Common[T]) Color(col colors.Color) T { c.base.SetColor(col); return c.owner }

func (c *Common[T]) WidthFit() T { c.base.mode[0] = SizeModeFit; return c.owner }

func (c *Common[T]) WidthFixed(width float32) T {
	c.base.mode[0], c.base.fixed[0] = SizeModeFixed, width
	return c.owner
}

func (c *Common[T]) WidthExpand() T { c.base.mode[0] = SizeModeExpand; return c.owner }

func (c *Common[T]) HeightFit() T { c.base.mode[1] = SizeModeFit; return c.owner }

func (c *Common[T]) HeightFixed(height float32) T {
	c.base.mode[1], c.base.fixed[1] = SizeModeFixed, height
	return c.owner
}

func (c *Common[T]) HeightExpand() T { c.base.mode[1] = SizeModeExpand; return c.owner }

func (c *Common[T]) Padding(all float32) T {
	c.base.SetPadding(all, all, all, all)
	return c.owner
}

func (c *Common[T]) Padding2(horizontal, vertical float32) T {
	c.base.SetPadding(horizontal, vertical, horizontal, vertical)
	return c.owner
}

func (c *Common[T]) Padding4(left, top, right, bottom float32) T {
	c.base.SetPadding(left, top, right, bottom)
	return c.owner
}

func (c *Common[T]) Children(kids ...UIElement) T {
	c.base.children = append(c.base.children, kids...)
	for _, k := range kids {
		k.Node().parent = any(c.owner).(UIElement)
	}
	return c.owner
}
