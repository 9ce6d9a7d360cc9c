// Package scene holds 2D camera helpers on top of the graphics view.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/grove2d/engine/gfx/transform"
)

// Viewer receives a camera's view. *graphics.Graphics implements it.
type Viewer interface {
	SetView(x, y, w, h, angle float32)
}

// OrthoCamera2D looks at (X, Y) in world pixels. Zoom 2 shows half as many
// pixels in each direction.
type OrthoCamera2D struct {
	X, Y     float32
	Rotation float32 // degrees
	Zoom     float32 // 1 = no zoom

	width, height float32
}

func NewOrtho2D(width, height int) *OrthoCamera2D {
	c := &OrthoCamera2D{Zoom: 1}
	c.SetViewportPixels(width, height)
	c.X, c.Y = c.width*0.5, c.height*0.5
	return c
}

// SetViewportPixels sets the size of the target the camera renders to.
func (c *OrthoCamera2D) SetViewportPixels(w, h int) {
	c.width, c.height = float32(w), float32(h)
}

func (c *OrthoCamera2D) SetPosition(x, y float32) { c.X, c.Y = x, y }
func (c *OrthoCamera2D) Move(dx, dy float32)      { c.X += dx; c.Y += dy }
func (c *OrthoCamera2D) Rotate(degrees float32)   { c.Rotation += degrees }
func (c *OrthoCamera2D) SetZoom(z float32) {
	if z < 0.05 {
		z = 0.05
	}
	c.Zoom = z
}

// Width and Height are the viewport size in pixels.
func (c *OrthoCamera2D) Width() float32  { return c.width }
func (c *OrthoCamera2D) Height() float32 { return c.height }

// ViewSize returns the world area visible through the camera.
func (c *OrthoCamera2D) ViewSize() (float32, float32) {
	return c.width / c.Zoom, c.height / c.Zoom
}

// Apply sets the camera as v's view for the rest of the frame.
func (c *OrthoCamera2D) Apply(v Viewer) {
	w, h := c.ViewSize()
	v.SetView(c.X, c.Y, w, h, c.Rotation)
}

// Projection returns the matrix Apply installs.
func (c *OrthoCamera2D) Projection() mgl32.Mat4 {
	w, h := c.ViewSize()
	return transform.View(c.X, c.Y, w, h, c.Rotation)
}

// ScreenToWorld maps a window position in pixels to world coordinates.
func (c *OrthoCamera2D) ScreenToWorld(sx, sy float32) (float32, float32) {
	if c.width == 0 || c.height == 0 {
		return c.X, c.Y
	}
	ndc := mgl32.Vec4{2*sx/c.width - 1, 1 - 2*sy/c.height, 0, 1}
	p := c.Projection().Inv().Mul4x1(ndc)
	return p[0] / p[3], p[1] / p[3]
}
