package colors

// Color is a straight-alpha RGBA color with components in [0..1].
type Color [4]float32

var (
	White       = Color{1, 1, 1, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Magenta     = Color{1, 0, 1, 1}
	Cyan        = Color{0, 1, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	DarkGray    = Color{0.08, 0.10, 0.12, 1}
	Transparent = Color{0, 0, 0, 0}
)

// FromPacked converts a 0xRRGGBBAA value.
func FromPacked(rgba uint32) Color {
	return Color{
		float32(rgba>>24&0xff) / 255,
		float32(rgba>>16&0xff) / 255,
		float32(rgba>>8&0xff) / 255,
		float32(rgba&0xff) / 255,
	}
}

// Packed returns c as 0xRRGGBBAA, clamping out of range components.
func (c Color) Packed() uint32 {
	var out uint32
	for _, v := range c {
		out = out<<8 | uint32(to8(v))
	}
	return out
}

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

func to8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
