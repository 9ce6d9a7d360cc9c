// Package backend picks the device implementation at startup.
package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hubastard/grove2d/engine/gfx/device"
	glbackend "github.com/hubastard/grove2d/engine/gfx/gl"
	gles2backend "github.com/hubastard/grove2d/engine/gfx/gles2"
	"github.com/hubastard/grove2d/engine/gfx/null"
)

// Backend names.
const (
	Auto  = "auto" // desktop GL, falling back to GLES2
	GL    = "gl"
	GLES2 = "gles2"
	Null  = "null"
)

var ErrUnknownBackend = errors.New("unknown backend")

var names = []string{Auto, GL, GLES2, Null}

// Names lists the accepted backend names.
func Names() []string { return slices.Clone(names) }

// Valid reports whether name is a known backend.
func Valid(name string) bool { return slices.Contains(names, name) }

// UsesGLES reports whether the window has to provide an OpenGL ES context.
func UsesGLES(name string) bool { return name == GLES2 }

// New creates the device called name. The GL backends need their context
// current on the calling thread.
func New(name string, log *slog.Logger) (device.Device, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	switch name {
	case GL:
		return glbackend.New(log)
	case GLES2:
		return gles2backend.New(log)
	case Null:
		return null.New(), nil
	case Auto:
		d, err := glbackend.New(log)
		if err == nil {
			return d, nil
		}
		log.Warn("desktop GL unavailable, trying GLES2", slog.Any("error", err))
		return gles2backend.New(log)
	}
	return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownBackend, name, names)
}
