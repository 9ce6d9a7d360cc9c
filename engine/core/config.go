package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/gfx/backend"
	"github.com/hubastard/grove2d/engine/logging"
	"github.com/pelletier/go-toml/v2"
)

// Window systems.
const (
	WindowGLFW = "glfw"
	WindowSDL  = "sdl"
)

// Config for the engine run.
type Config struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
	// Window is "glfw" or "sdl".
	Window string `toml:"window"`
	// Backend is one of backend.Names().
	Backend string `toml:"backend"`
	// Antialiasing is the sample count for surfaces; 0 or 1 disables MSAA.
	Antialiasing     int          `toml:"antialiasing"`
	VertexBufferSize int          `toml:"vertex_buffer_size"`
	ClearColor       colors.Color `toml:"clear_color"`
	LogLevel         string       `toml:"log_level"`
	LogDir           string       `toml:"log_dir"`
	// TickRate is the number of fixed updates per second.
	TickRate int `toml:"tick_rate"`
}

func DefaultConfig() Config {
	return Config{
		Title:            "grove2d",
		Width:            1280,
		Height:           720,
		VSync:            true,
		Window:           WindowGLFW,
		Backend:          backend.Auto,
		Antialiasing:     4,
		VertexBufferSize: 64 << 10,
		ClearColor:       colors.DarkGray,
		LogLevel:         "info",
		TickRate:         60,
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Keys missing from the
// file keep their default. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the engine cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Width, c.Height))
	}
	if c.Window != WindowGLFW && c.Window != WindowSDL {
		errs = append(errs, fmt.Errorf("window system %q (want %s or %s)", c.Window, WindowGLFW, WindowSDL))
	}
	if !backend.Valid(c.Backend) {
		errs = append(errs, fmt.Errorf("%w %q", backend.ErrUnknownBackend, c.Backend))
	}
	if c.Antialiasing < 0 {
		errs = append(errs, fmt.Errorf("antialiasing %d", c.Antialiasing))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick rate %d", c.TickRate))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
