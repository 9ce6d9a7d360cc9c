package graphics

import (
	"github.com/chewxy/math32"
	"github.com/hubastard/grove2d/engine/gfx/device"
	"github.com/hubastard/grove2d/engine/scratch"
)

// SubTexture is a UV rectangle of a texture, top-left to bottom-right.
type SubTexture struct {
	Texture int
	U0, V0  float32
	U1, V1  float32
}

// SubTexture builds a sub texture from pixel coordinates inside texture id.
// It is empty for unknown textures.
func (g *Graphics) SubTexture(id, x, y, w, h int) SubTexture {
	tw, th := g.r.TextureSize(id)
	if tw == 0 || th == 0 {
		return SubTexture{Texture: id}
	}
	fw, fh := float32(tw), float32(th)
	return SubTexture{
		Texture: id,
		U0:      float32(x) / fw,
		V0:      float32(y) / fh,
		U1:      float32(x+w) / fw,
		V1:      float32(y+h) / fh,
	}
}

// GridCell returns cell (cx, cy) of a sheet of cw x ch tiles.
func (g *Graphics) GridCell(id, cx, cy, cw, ch int) SubTexture {
	return g.SubTexture(id, cx*cw, cy*ch, cw, ch)
}

// SpriteBatch merges consecutive quads that share a texture into a single
// textured triangle list draw.
type SpriteBatch struct {
	g        *Graphics
	tex      int
	verts    *scratch.Floats
	quads    int
	maxQuads int
	draws    int
}

// NewSpriteBatch returns a batch that flushes every maxQuads quads.
func (g *Graphics) NewSpriteBatch(maxQuads int) *SpriteBatch {
	if maxQuads <= 0 {
		maxQuads = 1024
	}
	return &SpriteBatch{g: g, maxQuads: maxQuads, verts: scratch.NewFloats(maxQuads * 6 * 4)}
}

// Draw queues sub as a w x h quad centered on (x, y) and rotated by
// rotation degrees around its center. Quads take the tint color current at
// flush time.
func (b *SpriteBatch) Draw(sub SubTexture, x, y, w, h, rotation float32) {
	if b.quads > 0 && (sub.Texture != b.tex || b.quads >= b.maxQuads) {
		b.Flush()
	}
	b.tex = sub.Texture

	hw, hh := w*0.5, h*0.5
	s, c := math32.Sincos(rotation * math32.Pi / 180)
	corner := func(px, py, u, v float32) {
		b.verts.Append4(x+px*c-py*s, y+px*s+py*c, u, v)
	}
	// two triangles: TL BL TR, TR BL BR
	corner(-hw, -hh, sub.U0, sub.V0)
	corner(-hw, hh, sub.U0, sub.V1)
	corner(hw, -hh, sub.U1, sub.V0)
	corner(hw, -hh, sub.U1, sub.V0)
	corner(-hw, hh, sub.U0, sub.V1)
	corner(hw, hh, sub.U1, sub.V1)
	b.quads++
}

// Flush submits the queued quads.
func (b *SpriteBatch) Flush() {
	if b.quads == 0 {
		return
	}
	b.g.r.SetDrawColor(b.g.tint)
	b.g.r.DrawTextured(b.tex, device.Triangles, b.verts.Floats())
	b.verts.Reset()
	b.quads = 0
	b.draws++
}

// Draws returns how many flushes reached the renderer.
func (b *SpriteBatch) Draws() int { return b.draws }
