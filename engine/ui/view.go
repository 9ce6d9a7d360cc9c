package ui

import "github.com/hubastard/grove2d/engine/colors"

type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

type LayoutDirection int

const (
	LayoutHorizontal LayoutDirection = iota
	LayoutVertical
)

// UIView stacks its children along the flow direction.
type UIView struct {
	Common[*UIView]
	gap        float32
	mainAlign  Align
	crossAlign Align
	flow       LayoutDirection
}

func View(children ...UIElement) *UIView {
	v := &UIView{gap: 10}
	v.Common = NewCommon(v)
	v.Children(children...)
	return v
}

func (l *UIView) BgColor(color colors.Color) *UIView              { l.base.color = color; return l }
func (l *UIView) FlowDirection(direction LayoutDirection) *UIView { l.flow = direction; return l }
func (l *UIView) Gap(g float32) *UIView                           { l.gap = g; return l }
func (l *UIView) AlignMain(a Align) *UIView                       { l.mainAlign = a; return l }
func (l *UIView) AlignCross(a Align) *UIView                      { l.crossAlign = a; return l }

func (l *UIView) Layout(ctx *Context, constraints Constraints) LayoutResult {
	m := int(l.flow) // main axis
	x := 1 - m       // cross axis
	b := &l.base

	// children are unbounded along the flow and get the inner cross extent
	var child Constraints
	if constraints.Max[x] > 0 {
		child.Max[x] = max(0, constraints.Max[x]-b.pad(x))
	}

	kids := b.children
	sizes := make([][2]float32, len(kids))
	var used, cross float32
	expand := 0
	for i, k := range kids {
		sizes[i] = k.Layout(ctx, child).Size
		used += sizes[i][m]
		cross = max(cross, sizes[i][x])
		if k.Node().mode[m] == SizeModeExpand {
			expand++
		}
	}
	if len(kids) > 1 {
		used += l.gap * float32(len(kids)-1)
	}

	b.size[m] = b.resolve(m, used+b.pad(m), constraints)
	b.size[x] = b.resolve(x, cross+b.pad(x), constraints)
	innerMain := max(0, b.size[m]-b.pad(m))
	innerCross := max(0, b.size[x]-b.pad(x))

	// leftover main space goes to expanding children, or to alignment
	free := max(0, innerMain-used)
	if expand > 0 {
		share := free / float32(expand)
		for i, k := range kids {
			if k.Node().mode[m] == SizeModeExpand {
				sizes[i][m] += share
			}
		}
		free = 0
	}

	var cursor float32
	switch l.mainAlign {
	case AlignCenter:
		cursor = free * 0.5
	case AlignEnd:
		cursor = free
	}

	for i, k := range kids {
		s := sizes[i]
		n := k.Node()
		if l.crossAlign == AlignStretch || n.mode[x] == SizeModeExpand {
			s[x] = innerCross
		}
		s[x] = min(s[x], innerCross)
		if s != n.size {
			k.Layout(ctx, Constraints{Min: s, Max: s})
		}
		n.size = s

		n.offset[m] = b.padding[m] + cursor
		n.offset[x] = b.padding[x]
		switch l.crossAlign {
		case AlignCenter:
			n.offset[x] += (innerCross - s[x]) * 0.5
		case AlignEnd:
			n.offset[x] += innerCross - s[x]
		}
		cursor += s[m] + l.gap
	}

	return LayoutResult{Size: b.size}
}

func (l *UIView) Draw(ctx *Context) {
	layoutRoot(ctx, l)
	l.base.drawBackground(ctx, l.base.color)
	l.base.drawChildren(ctx)
}
