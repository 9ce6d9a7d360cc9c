package platform

import (
	"fmt"
	"runtime"

	"github.com/hubastard/grove2d/engine/core"
	"github.com/hubastard/grove2d/engine/gfx/backend"
	"github.com/veandco/go-sdl2/sdl"
)

// SDLWindow implements core.Window on SDL2.
type SDLWindow struct {
	window      *sdl.Window
	ctx         sdl.GLContext
	onEv        func(core.Event)
	shouldClose bool
}

// NewSDLWindow must be called on the main thread. The GL context is current
// when it returns.
func NewSDLWindow(cfg core.Config) (*SDLWindow, error) {
	runtime.LockOSThread()
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	if backend.UsesGLES(cfg.Backend) {
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_ES)
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 0)
	} else {
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_FORWARD_COMPATIBLE_FLAG)
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	}
	_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	_ = sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	_ = sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, 0)

	flags := sdl.WindowFlags(sdl.WINDOW_OPENGL | sdl.WINDOW_ALLOW_HIGHDPI | sdl.WINDOW_RESIZABLE)
	window, err := sdl.CreateWindow(cfg.Title, int32(sdl.WINDOWPOS_CENTERED), int32(sdl.WINDOWPOS_CENTERED),
		int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	s := &SDLWindow{window: window}
	s.ctx, err = window.GLCreateContext()
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("failed to create OpenGL context: %w", err)
	}
	if err := window.GLMakeCurrent(s.ctx); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("failed to set current OpenGL context: %w", err)
	}

	if cfg.VSync {
		_ = sdl.GLSetSwapInterval(1)
	} else {
		_ = sdl.GLSetSwapInterval(0)
	}
	window.Raise()
	return s, nil
}

func (s *SDLWindow) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.processEvent(event)
	}
}

func (s *SDLWindow) processEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.shouldClose = true
		s.emit(core.EventCloseRequested{})

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			w, h := s.FramebufferSize()
			s.emit(core.EventResize{W: w, H: h})
		}

	case *sdl.MouseMotionEvent:
		s.emit(core.EventMouseMove{X: float64(e.X), Y: float64(e.Y)})

	case *sdl.MouseButtonEvent:
		var b core.MouseButton
		switch e.Button {
		case sdl.BUTTON_LEFT:
			b = core.MouseLeft
		case sdl.BUTTON_RIGHT:
			b = core.MouseRight
		case sdl.BUTTON_MIDDLE:
			b = core.MouseMiddle
		default:
			return
		}
		s.emit(core.EventMouseButton{
			Button: b,
			Down:   e.Type == sdl.MOUSEBUTTONDOWN,
			X:      float64(e.X),
			Y:      float64(e.Y),
		})

	case *sdl.MouseWheelEvent:
		s.emit(core.EventScroll{Xoff: float64(e.X), Yoff: float64(e.Y)})

	case *sdl.KeyboardEvent:
		k := translateSDLKey(e.Keysym.Sym)
		if k == core.KeyUnknown {
			return
		}
		s.emit(core.EventKey{Key: k, Down: e.Type == sdl.KEYDOWN, Mods: sdlMods()})
	}
}

func (s *SDLWindow) emit(ev core.Event) {
	if s.onEv != nil {
		s.onEv(ev)
	}
}

func (s *SDLWindow) SwapBuffers()                         { s.window.GLSwap() }
func (s *SDLWindow) ShouldClose() bool                    { return s.shouldClose }
func (s *SDLWindow) RequestClose()                        { s.shouldClose = true }
func (s *SDLWindow) SetTitle(t string)                    { s.window.SetTitle(t) }
func (s *SDLWindow) SetEventCallback(cb func(core.Event)) { s.onEv = cb }

func (s *SDLWindow) FramebufferSize() (int, int) {
	w, h := s.window.GLGetDrawableSize()
	return int(w), int(h)
}

func (s *SDLWindow) Destroy() {
	if s.ctx != nil {
		sdl.GLDeleteContext(s.ctx)
		s.ctx = nil
	}
	if s.window != nil {
		_ = s.window.Destroy()
		s.window = nil
	}
	sdl.Quit()
}

var sdlKeys = map[sdl.Keycode]core.Key{
	sdl.K_ESCAPE: core.KeyEscape,
	sdl.K_SPACE:  core.KeySpace,
	sdl.K_RETURN: core.KeyEnter,
	sdl.K_TAB:    core.KeyTab,
	sdl.K_w:      core.KeyW,
	sdl.K_a:      core.KeyA,
	sdl.K_s:      core.KeyS,
	sdl.K_d:      core.KeyD,
	sdl.K_q:      core.KeyQ,
	sdl.K_e:      core.KeyE,
	sdl.K_z:      core.KeyZ,
	sdl.K_x:      core.KeyX,
	sdl.K_m:      core.KeyM,
	sdl.K_p:      core.KeyP,
	sdl.K_F1:     core.KeyF1,
	sdl.K_F2:     core.KeyF2,
	sdl.K_LEFT:   core.KeyLeft,
	sdl.K_RIGHT:  core.KeyRight,
	sdl.K_UP:     core.KeyUp,
	sdl.K_DOWN:   core.KeyDown,
}

func translateSDLKey(k sdl.Keycode) core.Key {
	if ck, ok := sdlKeys[k]; ok {
		return ck
	}
	return core.KeyUnknown
}

func sdlMods() core.Mod {
	mod := sdl.GetModState()
	var out core.Mod
	if mod&sdl.KMOD_SHIFT != 0 {
		out |= core.ModShift
	}
	if mod&sdl.KMOD_CTRL != 0 {
		out |= core.ModCtrl
	}
	if mod&sdl.KMOD_ALT != 0 {
		out |= core.ModAlt
	}
	if mod&sdl.KMOD_GUI != 0 {
		out |= core.ModSuper
	}
	return out
}
