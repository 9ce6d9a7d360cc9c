package ui

import (
	"strings"

	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/text"
)

type UILabel struct {
	Common[*UILabel]
	text      string
	font      *text.Renderer
	wrap      bool
	maxWidth  float32
	layoutStr string
}

func Label(str string) *UILabel {
	l := &UILabel{text: str}
	l.Common = NewCommon(l)
	l.base.color = colors.White
	return l
}

// Font overrides the context's text renderer.
func (l *UILabel) Font(r *text.Renderer) *UILabel { l.font = r; return l }
func (l *UILabel) Wrap(enabled bool) *UILabel     { l.wrap = enabled; return l }
func (l *UILabel) MaxWidth(width float32) *UILabel {
	l.maxWidth = width
	if width > 0 {
		l.wrap = true
	}
	return l
}

func (l *UILabel) Text() string { return l.text }

// SetText replaces the label text; layout picks it up on the next Draw.
func (l *UILabel) SetText(s string) *UILabel { l.text = s; return l }

func (l *UILabel) renderer(ctx *Context) *text.Renderer {
	if l.font != nil {
		return l.font
	}
	return ctx.Text
}

func (l *UILabel) Layout(ctx *Context, constraints Constraints) LayoutResult {
	var contentW, contentH float32
	if r := l.renderer(ctx); r != nil {
		limit := constraints.Max[0]
		if l.maxWidth > 0 && (limit == 0 || l.maxWidth < limit) {
			limit = l.maxWidth
		}
		if limit > 0 {
			limit = max(0, limit-l.base.pad(0))
		}
		l.layoutStr = l.text
		if l.wrap && limit > 0 {
			l.layoutStr = wrapText(r, l.text, limit)
		}
		if l.layoutStr != "" {
			contentW, contentH = r.Measure(l.layoutStr)
		}
	}

	w := l.base.resolve(0, contentW+l.base.pad(0), constraints)
	h := l.base.resolve(1, contentH+l.base.pad(1), constraints)
	l.base.SetSize(w, h)
	return LayoutResult{Size: l.base.size}
}

func (l *UILabel) Draw(ctx *Context) {
	layoutRoot(ctx, l)
	r := l.renderer(ctx)
	if l.layoutStr == "" || r == nil || ctx.Painter == nil || l.base.color[3] <= 0 {
		return
	}
	r.Draw(ctx.Painter, l.layoutStr,
		l.base.position[0]+l.base.padding[0],
		l.base.position[1]+l.base.padding[1],
		l.base.color)
}

// wrapText breaks s on spaces so that no line is wider than limit, unless a
// single word already is.
func wrapText(r *text.Renderer, s string, limit float32) string {
	space, _ := r.Measure(" ")
	var out []string
	for _, raw := range strings.Split(s, "\n") {
		words := strings.Fields(raw)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		lineW, _ := r.Measure(line)
		for _, word := range words[1:] {
			wordW, _ := r.Measure(word)
			if lineW+space+wordW > limit {
				out = append(out, line)
				line, lineW = word, wordW
				continue
			}
			line += " " + word
			lineW += space + wordW
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
