package text

import (
	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/scratch"
)

// Drawer receives glyph triangles (x, y, u, v per vertex).
// *graphics.Graphics implements it.
type Drawer interface {
	DrawGlyphs(atlas int, verts []float32, c colors.Color)
}

// Renderer lays out strings with a Font. Keep one per font; the vertex
// staging buffer is reused between calls.
type Renderer struct {
	Font  *Font
	verts *scratch.Floats
}

func NewRenderer(f *Font) *Renderer {
	return &Renderer{Font: f, verts: scratch.NewFloats(6 * 4 * 128)}
}

// Draw draws s with its top-left corner at (x, y). Positive Y goes downward.
func (tr *Renderer) Draw(d Drawer, s string, x, y float32, c colors.Color) {
	font := tr.Font
	penX := x
	baseY := y + font.Ascent
	var prev rune = -1

	tr.verts.Reset()
	for _, r := range s {
		if r == '\n' {
			penX = x
			baseY += LineHeight(font)
			prev = -1
			continue
		}

		g, ok := font.Glyphs[r]
		if !ok {
			if sp, ok2 := font.Glyphs[' ']; ok2 {
				penX += sp.Advance
			}
			prev = r
			continue
		}

		if prev >= 0 && font.Face != nil {
			penX += float32(font.Face.Kern(prev, r).Round())
		}

		if g.W > 0 && g.H > 0 {
			x0 := penX + g.BearingX
			y0 := baseY - g.BearingY
			x1, y1 := x0+float32(g.W), y0+float32(g.H)
			tr.verts.Append4(x0, y0, g.U0, g.V0)
			tr.verts.Append4(x0, y1, g.U0, g.V1)
			tr.verts.Append4(x1, y0, g.U1, g.V0)
			tr.verts.Append4(x1, y0, g.U1, g.V0)
			tr.verts.Append4(x0, y1, g.U0, g.V1)
			tr.verts.Append4(x1, y1, g.U1, g.V1)
		}

		penX += g.Advance
		prev = r
	}
	if tr.verts.Len() > 0 {
		d.DrawGlyphs(font.Texture, tr.verts.Floats(), c)
	}
}

// Measure returns the size of s at the font's pixel size.
func (tr *Renderer) Measure(s string) (width, height float32) {
	return MeasureText(tr.Font, s, tr.Font.SizePx)
}

// MeasureText returns the size of s when drawn at size pixels.
func MeasureText(font *Font, s string, size float32) (width, height float32) {
	var lineW float32
	var prev rune = -1
	lineH := LineHeight(font)
	height = lineH

	scale := size / font.SizePx

	for _, r := range s {
		if r == '\n' {
			width = max(width, lineW)
			lineW = 0
			height += lineH
			prev = -1
			continue
		}

		g, ok := font.Glyphs[r]
		if !ok {
			if sp, ok2 := font.Glyphs[' ']; ok2 {
				lineW += sp.Advance
			}
			prev = r
			continue
		}

		if prev >= 0 && font.Face != nil {
			lineW += float32(font.Face.Kern(prev, r).Round())
		}

		lineW += g.Advance
		prev = r
	}

	width = max(width, lineW)
	return width * scale, height * scale
}

// Baseline-to-top distance (useful to position text by top-left).
func BaselineToTop(font *Font) float32    { return font.Ascent }
func BaselineToBottom(font *Font) float32 { return -font.Descent }
func LineHeight(font *Font) float32       { return font.Ascent - font.Descent + font.LineGap }
