// Package scratch provides reusable staging buffers that are rewound
// instead of reallocated. Single-threaded usage.
package scratch

import (
	"strconv"
	"unicode/utf8"
)

// Floats stages vertex lists before they are handed to the renderer.
// Reset it before building each list.
type Floats struct {
	buf []float32
}

// NewFloats returns a buffer with room for capacity floats.
func NewFloats(capacity int) *Floats {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Floats{buf: make([]float32, 0, capacity)}
}

// Reset clears the length without freeing memory.
func (f *Floats) Reset() { f.buf = f.buf[:0] }

func (f *Floats) Len() int { return len(f.buf) }
func (f *Floats) Cap() int { return cap(f.buf) }

// Append adds values, growing the backing array if needed.
func (f *Floats) Append(v ...float32) { f.buf = append(f.buf, v...) }

// Append2 appends one x,y pair.
func (f *Floats) Append2(x, y float32) { f.buf = append(f.buf, x, y) }

// Append4 appends one x,y,u,v vertex.
func (f *Floats) Append4(x, y, u, v float32) { f.buf = append(f.buf, x, y, u, v) }

// Mark returns a bookmark to later slice the output.
func (f *Floats) Mark() int { return len(f.buf) }

// From returns the floats appended since mark. Valid until the next Reset
// or Append.
func (f *Floats) From(mark int) []float32 { return f.buf[mark:] }

// Floats returns the whole buffer.
func (f *Floats) Floats() []float32 { return f.buf }

// Text is a byte buffer for building short strings every frame (HUD
// counters, debug overlays) without fmt.
type Text struct {
	buf []byte
}

func NewText(capacity int) *Text {
	if capacity <= 0 {
		capacity = 256
	}
	return &Text{buf: make([]byte, 0, capacity)}
}

// Reset clears the buffer length without freeing memory.
func (t *Text) Reset() *Text {
	t.buf = t.buf[:0]
	return t
}

func (t *Text) Bytes() []byte  { return t.buf }
func (t *Text) String() string { return string(t.buf) }

func (t *Text) S(s string) *Text {
	t.buf = append(t.buf, s...)
	return t
}

func (t *Text) R(r rune) *Text {
	t.buf = utf8.AppendRune(t.buf, r)
	return t
}

// I appends a base-10 integer.
func (t *Text) I(v int) *Text {
	t.buf = strconv.AppendInt(t.buf, int64(v), 10)
	return t
}

// F appends a float with prec digits after the decimal point.
// Example: F(3.14159, 2) -> "3.14"
func (t *Text) F(v float64, prec int) *Text {
	t.buf = strconv.AppendFloat(t.buf, v, 'f', prec, 64)
	return t
}

// Pad appends n copies of byte c.
func (t *Text) Pad(n int, c byte) *Text {
	for i := 0; i < n; i++ {
		t.buf = append(t.buf, c)
	}
	return t
}

// Sprintf supports a tiny subset of verbs: %s %d %f (with .prec) %%.
// Unknown verbs are written literally.
//
//	t.Reset()
//	t.Sprintf("draws %d  verts %d  %.1f ms", d, v, ms)
func (t *Text) Sprintf(format string, args ...any) string {
	var ai int
	mark := len(t.buf)
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' {
			t.buf = append(t.buf, ch)
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			t.buf = append(t.buf, '%')
			i++
			continue
		}
		i++
		prec := -1
		if i < len(format) && format[i] == '.' {
			i++
			start := i
			for i < len(format) && format[i] >= '0' && format[i] <= '9' {
				i++
			}
			prec, _ = strconv.Atoi(format[start:i])
		}
		if i >= len(format) || ai >= len(args) {
			break
		}
		switch format[i] {
		case 's':
			if s, ok := args[ai].(string); ok {
				t.buf = append(t.buf, s...)
			}
		case 'd':
			t.buf = strconv.AppendInt(t.buf, toInt64(args[ai]), 10)
		case 'f':
			p := 3
			if prec >= 0 {
				p = prec
			}
			t.buf = strconv.AppendFloat(t.buf, toFloat64(args[ai]), 'f', p, 64)
		default:
			t.buf = append(t.buf, '%', format[i])
		}
		ai++
	}
	return string(t.buf[mark:])
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return 0
}
