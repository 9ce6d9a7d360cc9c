package graphics

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/hubastard/grove2d/engine/assets"
	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/gfx/device"
	"github.com/hubastard/grove2d/engine/gfx/render"
)

// ErrTextureRejected is returned when the renderer refuses an image.
var ErrTextureRejected = errors.New("graphics: texture rejected")

// Rect is an axis aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float32
}

// CreateTexture allocates an empty texture. See render.Renderer.CreateTexture.
func (g *Graphics) CreateTexture(width, height, channels int) int {
	return g.r.CreateTexture(width, height, channels)
}

// UpdateTexture uploads pixels into a texture region, or the whole texture
// for render.WholeTexture sizes at (0,0).
func (g *Graphics) UpdateTexture(id, x, y, width, height int, pixels []byte) {
	g.r.UpdateTexture(id, x, y, width, height, pixels)
}

func (g *Graphics) DeleteTexture(id int)                 { g.r.DeleteTexture(id) }
func (g *Graphics) TextureSize(id int) (int, int)        { return g.r.TextureSize(id) }
func (g *Graphics) SetTextureSmooth(id int, smooth bool) { g.r.SetTextureSmooth(id, smooth) }

// LoadTextureFromFile decodes an image file into a new texture.
func (g *Graphics) LoadTextureFromFile(path string) (int, error) {
	px, err := assets.LoadImage(path)
	if err != nil {
		return render.InvalidID, err
	}
	return g.textureFromPixels(px)
}

// LoadTextureFromMemory decodes an encoded image into a new texture.
func (g *Graphics) LoadTextureFromMemory(data []byte) (int, error) {
	px, err := assets.DecodeImage(data)
	if err != nil {
		return render.InvalidID, fmt.Errorf("decode image: %w", err)
	}
	return g.textureFromPixels(px)
}

// LoadTextureFromImage uploads an already decoded or generated image.
func (g *Graphics) LoadTextureFromImage(img image.Image) (int, error) {
	px, err := assets.FromImage(img)
	if err != nil {
		return render.InvalidID, err
	}
	return g.textureFromPixels(px)
}

func (g *Graphics) textureFromPixels(px assets.Pixels) (int, error) {
	id := g.r.CreateTexture(px.Width, px.Height, px.Channels)
	if id == render.InvalidID {
		return id, fmt.Errorf("%w: %dx%d with %d channels", ErrTextureRejected, px.Width, px.Height, px.Channels)
	}
	g.r.UpdateTexture(id, 0, 0, render.WholeTexture, render.WholeTexture, px.Data)
	return id, nil
}

// DrawTexture draws a whole texture with its top-left corner at (x, y).
func (g *Graphics) DrawTexture(id int, x, y float32) {
	w, h := g.r.TextureSize(id)
	g.quad(id, Rect{X: x, Y: y, W: float32(w), H: float32(h)}, 0, 0, 1, 1)
}

// DrawTextureFragment draws the src region of a texture into dst.
func (g *Graphics) DrawTextureFragment(id int, src, dst Rect) {
	w, h := g.r.TextureSize(id)
	if w == 0 || h == 0 {
		return
	}
	tw, th := float32(w), float32(h)
	g.quad(id, dst, src.X/tw, src.Y/th, (src.X+src.W)/tw, (src.Y+src.H)/th)
}

// DrawTextureEx draws a whole texture scaled by (sx, sy) and rotated by
// angle degrees around (ox, oy), given in unscaled texture pixels. The
// origin lands on (x, y).
func (g *Graphics) DrawTextureEx(id int, x, y, sx, sy, angle, ox, oy float32) {
	w, h := g.r.TextureSize(id)
	if w == 0 || h == 0 {
		return
	}
	s, c := math32.Sincos(angle * math32.Pi / 180)
	corner := func(px, py float32) (float32, float32) {
		lx, ly := (px-ox)*sx, (py-oy)*sy
		return x + lx*c - ly*s, y + lx*s + ly*c
	}
	fw, fh := float32(w), float32(h)
	x0, y0 := corner(0, 0)
	x1, y1 := corner(0, fh)
	x2, y2 := corner(fw, 0)
	x3, y3 := corner(fw, fh)

	g.r.SetDrawColor(g.tint)
	g.verts.Reset()
	g.verts.Append4(x0, y0, 0, 0)
	g.verts.Append4(x1, y1, 0, 1)
	g.verts.Append4(x2, y2, 1, 0)
	g.verts.Append4(x3, y3, 1, 1)
	g.r.DrawTextured(id, device.TriangleStrip, g.verts.Floats())
}

func (g *Graphics) quad(id int, dst Rect, u0, v0, u1, v1 float32) {
	if dst.W == 0 || dst.H == 0 {
		return
	}
	x0, y0, x1, y1 := dst.X, dst.Y, dst.X+dst.W, dst.Y+dst.H
	g.r.SetDrawColor(g.tint)
	g.verts.Reset()
	g.verts.Append4(x0, y0, u0, v0)
	g.verts.Append4(x0, y1, u0, v1)
	g.verts.Append4(x1, y0, u1, v0)
	g.verts.Append4(x1, y1, u1, v1)
	g.r.DrawTextured(id, device.TriangleStrip, g.verts.Floats())
}

// DrawGlyphs draws x,y,u,v glyph triangles from a coverage atlas in color c.
func (g *Graphics) DrawGlyphs(atlas int, verts []float32, c colors.Color) {
	g.r.SetDrawColor(c)
	g.r.DrawFont(atlas, verts)
}

// --- surfaces ---

// CreateSurface allocates an offscreen target. It does not become current.
func (g *Graphics) CreateSurface(width, height int) int {
	return g.r.CreateSurface(width, height)
}

// SurfaceTexture returns the texture a surface renders into.
func (g *Graphics) SurfaceTexture(id int) int { return g.r.SurfaceTexture(id) }

// SetSurface redirects drawing to a surface, or back to the screen for
// render.InvalidID. The projection resets to the target's default.
func (g *Graphics) SetSurface(id int) {
	g.r.BindSurface(id)
	g.surface = g.r.BoundSurface()
	g.ResetView()
}

// Surface returns the current target, render.InvalidID for the screen.
func (g *Graphics) Surface() int { return g.surface }

// DeleteSurface frees a surface and its texture. Deleting the current
// target switches back to the screen.
func (g *Graphics) DeleteSurface(id int) {
	current := id == g.surface
	g.r.DeleteSurface(id)
	if current {
		g.surface = render.InvalidID
		g.ResetView()
	}
}

// PresentSurface copies a surface onto the whole screen, which becomes the
// current target.
func (g *Graphics) PresentSurface(id int) {
	g.r.PresentSurface(id)
	if bound := g.r.BoundSurface(); bound != g.surface {
		g.surface = bound
		g.ResetView()
	}
}
