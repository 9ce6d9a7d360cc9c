package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/grove2d/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestGLFWTranslation(t *testing.T) {
	assert.Equal(t, core.KeyEscape, translateKey(glfw.KeyEscape))
	assert.Equal(t, core.KeyUnknown, translateKey(glfw.KeyF12))

	b, ok := translateButton(glfw.MouseButtonMiddle)
	assert.True(t, ok)
	assert.Equal(t, core.MouseMiddle, b)
	_, ok = translateButton(glfw.MouseButton5)
	assert.False(t, ok)

	assert.Equal(t, core.ModShift|core.ModCtrl, translateMods(glfw.ModShift|glfw.ModControl))
	assert.Zero(t, translateMods(0))
}

func TestSDLEventsWithoutDisplay(t *testing.T) {
	var got []core.Event
	s := &SDLWindow{onEv: func(ev core.Event) { got = append(got, ev) }}

	s.processEvent(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_RIGHT, X: 3, Y: 4})
	s.processEvent(&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_X1})
	s.processEvent(&sdl.MouseWheelEvent{Y: -1})
	s.processEvent(&sdl.QuitEvent{})

	assert.Equal(t, []core.Event{
		core.EventMouseButton{Button: core.MouseRight, Down: true, X: 3, Y: 4},
		core.EventScroll{Yoff: -1},
		core.EventCloseRequested{},
	}, got)
	assert.True(t, s.ShouldClose())
	assert.Equal(t, core.KeyP, translateSDLKey(sdl.K_p))
}
