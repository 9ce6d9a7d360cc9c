package render

import "log/slog"

// Stats counts what a frame sent to the device.
type Stats struct {
	DrawCalls    int
	Vertices     int
	TextureBinds int
	Resolves     int
	BufferBytes  int // vertex buffer storage across all formats
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("draw_calls", s.DrawCalls),
		slog.Int("vertices", s.Vertices),
		slog.Int("texture_binds", s.TextureBinds),
		slog.Int("resolves", s.Resolves),
		slog.Int("buffer_bytes", s.BufferBytes),
	)
}
