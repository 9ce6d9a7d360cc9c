// Package text rasterizes a font into a single channel glyph atlas and
// draws strings through the renderer's font program.
package text

import (
	"errors"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hubastard/grove2d/engine/gfx/render"
)

// WholeTexture is the size sentinel Uploader.UpdateTexture understands.
const WholeTexture = render.WholeTexture

// MaxAtlasSize bounds the atlas edge in pixels.
const MaxAtlasSize = 4096

var ErrAtlasTooLarge = errors.New("text: font atlas too large")

// Uploader is the texture side of the renderer the atlas needs. An
// UpdateTexture at (0,0) with WholeTexture as width and height must replace
// the entire image, as *render.Renderer does.
type Uploader interface {
	CreateTexture(width, height, channels int) int
	UpdateTexture(id, x, y, width, height int, pixels []byte)
	DeleteTexture(id int)
}

type Glyph struct {
	Rune     rune
	Advance  float32 // pixels
	BearingX float32 // left bearing in pixels
	BearingY float32 // distance from baseline to glyph top
	W, H     int     // glyph bitmap size
	U0, V0   float32 // UVs in atlas
	U1, V1   float32
}

// Font is a rasterized face at one pixel size.
type Font struct {
	SizePx                   float32
	Ascent, Descent, LineGap float32
	Glyphs                   map[rune]Glyph
	Texture                  int
	AtlasSize                int
	Face                     font.Face
}

// LoadDefault builds an atlas from the Go Regular font.
func LoadDefault(up Uploader, sizePx float32) (*Font, error) {
	return Load(up, goregular.TTF, sizePx)
}

// LoadFile builds an atlas from a TTF or OTF file.
func LoadFile(up Uploader, path string, sizePx float32) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return Load(up, data, sizePx)
}

// Load rasterizes runes 32..255 of an OpenType font into a coverage atlas
// and uploads it as a one channel texture.
func Load(up Uploader, ttf []byte, sizePx float32) (*Font, error) {
	ft, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(sizePx), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}

	m := face.Metrics()
	ascent := float32(m.Ascent.Round())
	descent := float32(-m.Descent.Round())
	lineGap := float32(m.Height.Round()) - ascent + descent

	type meas struct {
		r      rune
		w, h   int
		adv    float32
		bx, by int
	}
	var measure []meas
	for r := rune(32); r <= 255; r++ {
		br, adv, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		x0, y0 := br.Min.X.Floor(), br.Min.Y.Floor()
		x1, y1 := br.Max.X.Ceil(), br.Max.Y.Ceil()
		measure = append(measure, meas{
			r: r,
			w: x1 - x0, h: y1 - y0,
			adv: float32(adv.Round()),
			bx:  x0,
			by:  -y0,
		})
	}

	// Shelf packer: start at 256² and double until everything fits.
	const padding = 2
	size := 256
	var pos map[rune]image.Point
	for {
		x, y, rowH := padding, padding, 0
		fits := true
		pos = make(map[rune]image.Point, len(measure))
		for _, g := range measure {
			if g.w == 0 || g.h == 0 {
				continue
			}
			if x+g.w+padding > size {
				x = padding
				y += rowH + padding
				rowH = 0
			}
			if g.w+2*padding > size || y+g.h+padding > size {
				fits = false
				break
			}
			pos[g.r] = image.Pt(x, y)
			x += g.w + padding
			rowH = max(rowH, g.h)
		}
		if fits {
			break
		}
		size *= 2
		if size > MaxAtlasSize {
			_ = face.Close()
			return nil, fmt.Errorf("%w (>%d)", ErrAtlasTooLarge, MaxAtlasSize)
		}
	}

	atlas := image.NewAlpha(image.Rect(0, 0, size, size))
	drawer := &font.Drawer{Dst: atlas, Src: image.White, Face: face}

	inv := 1 / float32(size)
	glyphs := make(map[rune]Glyph, len(measure))
	for _, g := range measure {
		gl := Glyph{
			Rune: g.r, Advance: g.adv,
			BearingX: float32(g.bx), BearingY: float32(g.by),
			W: g.w, H: g.h,
		}
		if p, ok := pos[g.r]; ok {
			// dot sits on the baseline, shifted left by the bearing
			drawer.Dot = fixed.P(p.X-g.bx, p.Y+g.by)
			drawer.DrawString(string(g.r))
			gl.U0, gl.V0 = float32(p.X)*inv, float32(p.Y)*inv
			gl.U1, gl.V1 = float32(p.X+g.w)*inv, float32(p.Y+g.h)*inv
		}
		glyphs[g.r] = gl
	}

	tex := up.CreateTexture(size, size, 1)
	if tex < 0 {
		_ = face.Close()
		return nil, fmt.Errorf("text: atlas texture %dx%d rejected", size, size)
	}
	up.UpdateTexture(tex, 0, 0, WholeTexture, WholeTexture, atlas.Pix)

	return &Font{
		SizePx: sizePx,
		Ascent: ascent, Descent: descent, LineGap: lineGap,
		Glyphs:    glyphs,
		Texture:   tex,
		AtlasSize: size,
		Face:      face,
	}, nil
}

// Close frees the atlas texture and the face.
func (f *Font) Close(up Uploader) {
	if f == nil || f.Face == nil {
		return
	}
	up.DeleteTexture(f.Texture)
	_ = f.Face.Close()
	f.Face = nil
}
