package ui

import (
	"testing"

	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rect struct{ x, y, w, h float32 }

type painter struct {
	fill   colors.Color
	rects  []rect
	fills  []colors.Color
	glyphs int
	origin [][2]float32
}

func (p *painter) SetFillColor(c colors.Color) { p.fill = c }
func (p *painter) FillRectangle(x, y, w, h float32) {
	p.rects = append(p.rects, rect{x, y, w, h})
	p.fills = append(p.fills, p.fill)
}
func (p *painter) DrawGlyphs(atlas int, verts []float32, c colors.Color) {
	p.glyphs += len(verts) / 24
	p.origin = append(p.origin, [2]float32{verts[0], verts[1]})
}

// monoFont has 10px wide glyphs and a 10px line.
func monoFont() *text.Font {
	g := func(r rune, w int) text.Glyph {
		return text.Glyph{Rune: r, Advance: 10, W: w, H: w, BearingY: 8, U1: 1, V1: 1}
	}
	return &text.Font{
		SizePx: 10, Ascent: 8, Descent: -2,
		Glyphs: map[rune]text.Glyph{'A': g('A', 8), 'B': g('B', 8), ' ': g(' ', 0)},
	}
}

func newCtx(w, h float32) (*Context, *painter) {
	p := &painter{}
	return &Context{
		Viewport: [4]float32{0, 0, w, h},
		Text:     text.NewRenderer(monoFont()),
		Painter:  p,
	}, p
}

func TestVerticalViewStacksChildren(t *testing.T) {
	ctx, p := newCtx(400, 300)
	a, b := Label("AA"), Label("A")
	v := View(a, b).FlowDirection(LayoutVertical).Padding(5).Gap(2).BgColor(colors.Black)
	v.Draw(ctx)

	w, h := v.Node().Size()
	assert.Equal(t, float32(30), w)
	assert.Equal(t, float32(32), h)

	require.Len(t, p.rects, 1)
	assert.Equal(t, rect{0, 0, 30, 32}, p.rects[0])

	x, y := a.Node().Pos()
	assert.Equal(t, [2]float32{5, 5}, [2]float32{x, y})
	x, y = b.Node().Pos()
	assert.Equal(t, [2]float32{5, 17}, [2]float32{x, y})
	assert.Equal(t, 3, p.glyphs)
}

func TestNestedViewsFollowTheirParent(t *testing.T) {
	ctx, _ := newCtx(400, 300)
	inner := Label("A")
	root := View(View(inner).Padding(3)).Padding(10)
	root.Draw(ctx)

	x, y := inner.Node().Pos()
	assert.Equal(t, float32(13), x)
	assert.Equal(t, float32(13), y)
}

func TestStretchAndAlign(t *testing.T) {
	ctx, _ := newCtx(400, 300)
	a, b := Label("AAAA"), Label("A")
	View(a, b).FlowDirection(LayoutVertical).Gap(0).AlignCross(AlignStretch).Draw(ctx)
	w, _ := b.Node().Size()
	assert.Equal(t, float32(40), w)

	c := Label("A")
	View(c).WidthFixed(100).AlignMain(AlignEnd).Draw(ctx)
	x, _ := c.Node().Pos()
	assert.Equal(t, float32(90), x)
}

func TestExpandTakesLeftoverSpace(t *testing.T) {
	ctx, _ := newCtx(200, 100)
	a, b := Label("A"), Label("B").WidthExpand()
	View(a, b).Gap(0).WidthExpand().Draw(ctx)
	w, _ := b.Node().Size()
	assert.Equal(t, float32(190), w)
}

func TestLabelWraps(t *testing.T) {
	ctx, _ := newCtx(400, 300)
	l := Label("AA BB A").MaxWidth(50)
	l.Draw(ctx)
	assert.Equal(t, "AA BB\nA", l.layoutStr)
	w, h := l.Node().Size()
	assert.Equal(t, float32(50), w)
	assert.Equal(t, float32(20), h)
}

func TestButtonClick(t *testing.T) {
	ctx, p := newCtx(400, 300)
	clicks := 0
	btn := Button("A").OnClick(func() { clicks++ })

	btn.Draw(ctx)
	w, h := btn.Node().Size()
	assert.Equal(t, float32(30), w)
	assert.Equal(t, float32(30), h)
	assert.False(t, btn.Hot())

	ctx.MouseX, ctx.MouseY, ctx.Clicked = 15, 15, true
	btn.Draw(ctx)
	assert.True(t, btn.Hot())
	assert.Equal(t, 1, clicks)
	// hovered background is lighter
	assert.Greater(t, p.fills[1][0], p.fills[0][0])

	ctx.MouseX = 100
	btn.Draw(ctx)
	assert.Equal(t, 1, clicks)
}

func TestLabelSetTextRelayouts(t *testing.T) {
	ctx, _ := newCtx(400, 300)
	l := Label("A")
	l.Draw(ctx)
	w, _ := l.Node().Size()
	assert.Equal(t, float32(10), w)

	l.SetText("AAA").Draw(ctx)
	w, _ = l.Node().Size()
	assert.Equal(t, float32(30), w)
	assert.Equal(t, "AAA", l.Text())
}
