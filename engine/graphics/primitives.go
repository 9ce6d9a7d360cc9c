package graphics

import (
	"github.com/chewxy/math32"
	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/gfx/device"
)

// DefaultCircleError is the default maximum chord error of circles, in pixels.
const DefaultCircleError = 0.25

const (
	minCircleSegments = 3
	maxCircleSegments = 4096
)

// CircleSegments returns how many chords approximate a circle of the given
// radius so that no chord strays more than e pixels from the arc:
// ceil(2π / acos(2(1-e/r)²-1)), at least 3.
func CircleSegments(radius, e float32) int {
	if radius <= e || e <= 0 {
		return minCircleSegments
	}
	d := 1 - e/radius
	a := math32.Acos(2*d*d - 1)
	if a <= 0 {
		return maxCircleSegments
	}
	n := int(math32.Ceil(2 * math32.Pi / a))
	return min(max(n, minCircleSegments), maxCircleSegments)
}

// Vertex is a colored polygon corner.
type Vertex struct {
	X, Y  float32
	Color colors.Color
}

// DrawPoint plots one point in the point color.
func (g *Graphics) DrawPoint(x, y float32) {
	g.solid(g.pointColor, device.Points, x, y)
}

// DrawLine draws a segment in the line color.
func (g *Graphics) DrawLine(x0, y0, x1, y1 float32) {
	g.solid(g.lineColor, device.Lines, x0, y0, x1, y1)
}

// DrawPolyline draws connected segments through x,y pairs in the line color.
func (g *Graphics) DrawPolyline(points []float32) {
	g.r.SetDrawColor(g.lineColor)
	g.r.DrawSolid(device.LineStrip, points)
}

func (g *Graphics) OutlineTriangle(x0, y0, x1, y1, x2, y2 float32) {
	g.solid(g.outlineColor, device.LineLoop, x0, y0, x1, y1, x2, y2)
}

func (g *Graphics) FillTriangle(x0, y0, x1, y1, x2, y2 float32) {
	g.solid(g.fillColor, device.Triangles, x0, y0, x1, y1, x2, y2)
}

// DrawTriangle fills then outlines.
func (g *Graphics) DrawTriangle(x0, y0, x1, y1, x2, y2 float32) {
	g.FillTriangle(x0, y0, x1, y1, x2, y2)
	g.OutlineTriangle(x0, y0, x1, y1, x2, y2)
}

func (g *Graphics) OutlineRectangle(x, y, w, h float32) {
	g.solid(g.outlineColor, device.LineLoop, x, y, x+w, y, x+w, y+h, x, y+h)
}

func (g *Graphics) FillRectangle(x, y, w, h float32) {
	g.solid(g.fillColor, device.TriangleFan, x, y, x+w, y, x+w, y+h, x, y+h)
}

// DrawRectangle fills then outlines.
func (g *Graphics) DrawRectangle(x, y, w, h float32) {
	g.FillRectangle(x, y, w, h)
	g.OutlineRectangle(x, y, w, h)
}

func (g *Graphics) OutlineCircle(x, y, radius float32) {
	g.r.SetDrawColor(g.outlineColor)
	g.r.DrawSolid(device.LineLoop, g.circle(x, y, radius))
}

func (g *Graphics) FillCircle(x, y, radius float32) {
	g.r.SetDrawColor(g.fillColor)
	g.r.DrawSolid(device.TriangleFan, g.circle(x, y, radius))
}

// DrawCircle fills then outlines.
func (g *Graphics) DrawCircle(x, y, radius float32) {
	g.FillCircle(x, y, radius)
	g.OutlineCircle(x, y, radius)
}

// DrawPolygon fills a convex polygon whose corners carry their own color.
func (g *Graphics) DrawPolygon(corners []Vertex) {
	if len(corners) < 3 {
		return
	}
	g.verts.Reset()
	for _, v := range corners {
		g.verts.Append(v.X, v.Y, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
	}
	g.r.DrawColored(device.TriangleFan, g.verts.Floats())
}

// circle returns the perimeter of a circle as x,y pairs. The slice is
// scratch storage, valid until the next primitive.
func (g *Graphics) circle(cx, cy, radius float32) []float32 {
	n := CircleSegments(radius, g.circleError)
	g.verts.Reset()
	step := 2 * math32.Pi / float32(n)
	for i := 0; i < n; i++ {
		s, c := math32.Sincos(step * float32(i))
		g.verts.Append2(cx+radius*c, cy+radius*s)
	}
	return g.verts.Floats()
}

func (g *Graphics) solid(c colors.Color, prim device.Primitive, xy ...float32) {
	g.r.SetDrawColor(c)
	g.verts.Reset()
	g.verts.Append(xy...)
	g.r.DrawSolid(prim, g.verts.Floats())
}
