// Package transform holds the 2D model-view stack and the projection
// builders used by the graphics facade.
//
// Matrices are mgl32 values (column-major, column vectors). Composition
// right-multiplies the top of the stack, so the newest transform applies to
// vertices first: push, translate, rotate, draw, pop gives the usual
// local-to-parent hierarchy.
package transform

import "github.com/go-gl/mathgl/mgl32"

// MaxDepth is the capacity of the model-view stack. Pushing past it is
// silently ignored.
const MaxDepth = 32

// Stack is a fixed-depth stack of 3x3 affine model-view matrices.
type Stack struct {
	m   [MaxDepth]mgl32.Mat3
	top int
}

// NewStack returns a stack holding a single identity matrix.
func NewStack() *Stack {
	s := &Stack{}
	s.Reset()
	return s
}

// Reset leaves a single identity matrix at index 0.
func (s *Stack) Reset() {
	s.top = 0
	s.m[0] = mgl32.Ident3()
}

// Push duplicates the top matrix. Returns false when the stack is full.
func (s *Stack) Push() bool {
	if s.top+1 >= MaxDepth {
		return false
	}
	s.m[s.top+1] = s.m[s.top]
	s.top++
	return true
}

// Pop discards the top matrix. Returns false at index 0.
func (s *Stack) Pop() bool {
	if s.top == 0 {
		return false
	}
	s.top--
	return true
}

func (s *Stack) Translate(dx, dy float32) {
	s.m[s.top] = s.m[s.top].Mul3(mgl32.Translate2D(dx, dy))
}

func (s *Stack) Scale(sx, sy float32) {
	s.m[s.top] = s.m[s.top].Mul3(mgl32.Scale2D(sx, sy))
}

// Rotate applies a rotation given in degrees.
func (s *Stack) Rotate(degrees float32) {
	s.m[s.top] = s.m[s.top].Mul3(mgl32.HomogRotate2D(mgl32.DegToRad(degrees)))
}

// Top returns the current model-view matrix.
func (s *Stack) Top() mgl32.Mat3 { return s.m[s.top] }

// Depth returns the index of the top matrix (0 for a fresh stack).
func (s *Stack) Depth() int { return s.top }

// Expand lifts a 2D affine matrix into the 4x4 form the shaders consume.
// The homogeneous row of m lands in w; z passes through untouched.
func Expand(m mgl32.Mat3) mgl32.Mat4 {
	return mgl32.Mat4{
		m[0], m[1], 0, m[2],
		m[3], m[4], 0, m[5],
		0, 0, 1, 0,
		m[6], m[7], 0, m[8],
	}
}

// Ortho is the default projection for a width x height display: origin at
// the top-left corner, Y growing downwards.
func Ortho(width, height int) mgl32.Mat4 {
	return mgl32.Ortho2D(0, float32(width), float32(height), 0)
}

// View is an orthographic projection centered on (x, y) spanning w x h,
// rotated by angle degrees around its center.
func View(x, y, w, h, angle float32) mgl32.Mat4 {
	hw, hh := w*0.5, h*0.5
	proj := mgl32.Ortho2D(x-hw, x+hw, y+hh, y-hh)
	if angle == 0 {
		return proj
	}
	pivot := mgl32.Translate3D(x, y, 0)
	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(angle))
	back := mgl32.Translate3D(-x, -y, 0)
	return proj.Mul4(pivot).Mul4(rot).Mul4(back)
}

// Apply maps a local point through model-view then projection into NDC.
func Apply(proj mgl32.Mat4, mv mgl32.Mat3, x, y float32) (float32, float32) {
	p := proj.Mul4(Expand(mv)).Mul4x1(mgl32.Vec4{x, y, 0, 1})
	return p[0] / p[3], p[1] / p[3]
}

// FlipY mirrors a projection vertically in clip space. Offscreen targets
// use it so that their texture stores the top row first, like uploaded
// images.
func FlipY(proj mgl32.Mat4) mgl32.Mat4 {
	return mgl32.Scale3D(1, -1, 1).Mul4(proj)
}
