package text

import (
	"strings"
	"testing"

	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/gfx/null"
	"github.com/hubastard/grove2d/engine/gfx/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTextures struct {
	created  [][3]int
	uploads  [][]byte
	deleted  []int
	draws    [][]float32
	drawTint []colors.Color
}

func (f *fakeTextures) CreateTexture(w, h, ch int) int {
	f.created = append(f.created, [3]int{w, h, ch})
	return len(f.created) - 1
}

func (f *fakeTextures) UpdateTexture(id, x, y, w, h int, px []byte) {
	f.uploads = append(f.uploads, px)
}

func (f *fakeTextures) DeleteTexture(id int) { f.deleted = append(f.deleted, id) }

func (f *fakeTextures) DrawGlyphs(atlas int, verts []float32, c colors.Color) {
	f.draws = append(f.draws, append([]float32(nil), verts...))
	f.drawTint = append(f.drawTint, c)
}

func loadDefault(t *testing.T) (*Font, *fakeTextures) {
	t.Helper()
	fake := &fakeTextures{}
	f, err := LoadDefault(fake, 16)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close(fake) })
	return f, fake
}

func TestAtlasIsSingleChannel(t *testing.T) {
	f, fake := loadDefault(t)
	require.Len(t, fake.created, 1)
	assert.Equal(t, [3]int{f.AtlasSize, f.AtlasSize, 1}, fake.created[0])
	require.Len(t, fake.uploads, 1)
	assert.Len(t, fake.uploads[0], f.AtlasSize*f.AtlasSize)

	var covered int
	for _, b := range fake.uploads[0] {
		if b != 0 {
			covered++
		}
	}
	assert.Positive(t, covered)
	assert.Positive(t, f.Ascent)
}

func TestGlyphsHaveUVsInsideAtlas(t *testing.T) {
	f, _ := loadDefault(t)
	g, ok := f.Glyphs['A']
	require.True(t, ok)
	assert.Positive(t, g.W)
	assert.Positive(t, g.Advance)
	assert.Less(t, g.U0, g.U1)
	assert.Less(t, g.V0, g.V1)
	assert.LessOrEqual(t, g.U1, float32(1))

	sp := f.Glyphs[' ']
	assert.Zero(t, sp.W)
	assert.Positive(t, sp.Advance)
}

func TestDrawEmitsTwoTrianglesPerVisibleGlyph(t *testing.T) {
	f, fake := loadDefault(t)
	tr := NewRenderer(f)
	tr.Draw(fake, "A B", 10, 20, colors.Red)

	require.Len(t, fake.draws, 1)
	assert.Len(t, fake.draws[0], 2*6*4)
	assert.Equal(t, colors.Red, fake.drawTint[0])

	// nothing visible, nothing drawn
	tr.Draw(fake, "  \n ", 0, 0, colors.Red)
	assert.Len(t, fake.draws, 1)
}

func TestMeasureLines(t *testing.T) {
	f, _ := loadDefault(t)
	tr := NewRenderer(f)
	w1, h1 := tr.Measure("AB")
	w2, h2 := tr.Measure("AB\nA")
	assert.Equal(t, w1, w2)
	assert.Equal(t, LineHeight(f), h1)
	assert.Equal(t, 2*h1, h2)

	w, _ := MeasureText(f, "AB", 2*f.SizePx)
	assert.Equal(t, 2*w1, w)
}

func TestCloseDeletesAtlas(t *testing.T) {
	fake := &fakeTextures{}
	f, err := LoadDefault(fake, 12)
	require.NoError(t, err)
	f.Close(fake)
	f.Close(fake)
	assert.Equal(t, []int{f.Texture}, fake.deleted)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(&fakeTextures{}, []byte("not a font"), 12)
	assert.Error(t, err)
}

func TestAtlasUploadsWholeImageToRenderer(t *testing.T) {
	dev := null.New()
	r := render.New(dev, render.Config{Width: 64, Height: 64})
	require.NoError(t, r.Initialize())
	t.Cleanup(r.Terminate)

	f, err := LoadDefault(r, 12)
	require.NoError(t, err)
	w, h := r.TextureSize(f.Texture)
	assert.Equal(t, f.AtlasSize, w)
	assert.Equal(t, f.AtlasSize, h)

	var whole, sub int
	for _, op := range dev.Ops {
		switch {
		case strings.HasPrefix(op, "TexImage"):
			whole++
		case strings.HasPrefix(op, "TexSubImage"):
			sub++
		}
	}
	assert.Equal(t, 1, whole)
	assert.Zero(t, sub)

	f.Close(r)
	assert.Zero(t, dev.LiveTextures())
}
