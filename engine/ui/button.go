package ui

import (
	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/text"
)

// UIButton is a padded label that runs a callback when clicked.
type UIButton struct {
	Common[*UIButton]
	label   *UILabel
	onClick func()
	hot     bool
}

func Button(str string) *UIButton {
	l := &UIButton{}
	l.Common = NewCommon(l)
	l.label = Label(str)
	l.Children(l.label)
	l.base.color = colors.Gray
	l.base.SetPadding(10, 10, 10, 10)
	return l
}

func (l *UIButton) BgColor(color colors.Color) *UIButton   { l.base.color = color; return l }
func (l *UIButton) TextColor(color colors.Color) *UIButton { l.label.base.color = color; return l }
func (l *UIButton) Font(r *text.Renderer) *UIButton        { l.label.font = r; return l }
func (l *UIButton) OnClick(f func()) *UIButton             { l.onClick = f; return l }

// Hot reports whether the pointer was over the button at the last Draw.
func (l *UIButton) Hot() bool { return l.hot }

func (l *UIButton) Layout(ctx *Context, constraints Constraints) LayoutResult {
	b := &l.base
	var inner Constraints
	for axis := range 2 {
		if constraints.Max[axis] > 0 {
			inner.Max[axis] = max(0, constraints.Max[axis]-b.pad(axis))
		}
	}
	content := l.label.Layout(ctx, inner).Size

	lb := l.label.Node()
	for axis := range 2 {
		b.size[axis] = b.resolve(axis, content[axis]+b.pad(axis), constraints)
		// label centered inside the padding box
		room := max(0, b.size[axis]-b.pad(axis))
		lb.size[axis] = min(content[axis], room)
		lb.offset[axis] = b.padding[axis] + (room-lb.size[axis])*0.5
	}
	return LayoutResult{Size: b.size}
}

func (l *UIButton) Draw(ctx *Context) {
	layoutRoot(ctx, l)
	l.hot = l.base.Contains(ctx.MouseX, ctx.MouseY)

	bg := l.base.color
	if l.hot {
		for i := range 3 {
			bg[i] = min(1, bg[i]*1.2)
		}
	}
	l.base.drawBackground(ctx, bg)
	l.base.drawChildren(ctx)

	if l.hot && ctx.Clicked && l.onClick != nil {
		l.onClick()
	}
}
