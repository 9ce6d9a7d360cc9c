package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/gfx/backend"
	"github.com/hubastard/grove2d/engine/gfx/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	w, h      int
	frames    int
	maxFrames int
	cb        func(Event)
	pending   []Event
	destroyed bool
	closed    bool
}

func (f *fakeWindow) PollEvents() {
	evs := f.pending
	f.pending = nil
	for _, ev := range evs {
		if r, ok := ev.(EventResize); ok {
			f.w, f.h = r.W, r.H
		}
		f.cb(ev)
	}
}
func (f *fakeWindow) SwapBuffers()                    { f.frames++ }
func (f *fakeWindow) ShouldClose() bool               { return f.closed || f.frames >= f.maxFrames }
func (f *fakeWindow) RequestClose()                   { f.closed = true }
func (f *fakeWindow) FramebufferSize() (int, int)     { return f.w, f.h }
func (f *fakeWindow) SetTitle(string)                 {}
func (f *fakeWindow) SetEventCallback(cb func(Event)) { f.cb = cb }
func (f *fakeWindow) Destroy()                        { f.destroyed = true }

type recordingApp struct {
	started, shutdown int
	renders           int
	events            []Event
	onStart           func(e *Engine)
}

func (a *recordingApp) OnStart(e *Engine) {
	a.started++
	if a.onStart != nil {
		a.onStart(e)
	}
}
func (a *recordingApp) OnUpdate(e *Engine, dt float64) {}
func (a *recordingApp) OnRender(e *Engine, alpha float64) {
	a.renders++
	e.Graphics.FillRectangle(0, 0, 10, 10)
}
func (a *recordingApp) OnEvent(e *Engine, ev Event) { a.events = append(a.events, ev) }
func (a *recordingApp) OnShutdown(e *Engine)        { a.shutdown++ }

type recordingLayer struct {
	attached, detached int
	renders            int
	swallow            bool
	seen               int
}

func (l *recordingLayer) OnAttach(e *Engine)                { l.attached++ }
func (l *recordingLayer) OnDetach(e *Engine)                { l.detached++ }
func (l *recordingLayer) OnUpdate(e *Engine, dt float64)    {}
func (l *recordingLayer) OnRender(e *Engine, alpha float64) { l.renders++ }
func (l *recordingLayer) OnEvent(e *Engine, ev Event) bool {
	l.seen++
	return l.swallow
}

func headlessConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = backend.Null
	cfg.LogLevel = "error"
	return cfg
}

func TestRunDrivesFramesOnNullBackend(t *testing.T) {
	win := &fakeWindow{w: 320, h: 200, maxFrames: 3}
	win.pending = []Event{EventResize{W: 640, H: 400}, EventKey{Key: KeySpace, Down: true}}

	var eng *Engine
	bottom, top := &recordingLayer{}, &recordingLayer{swallow: true}
	app := &recordingApp{onStart: func(e *Engine) {
		eng = e
		e.Layers.Push(e, bottom)
		e.Layers.Push(e, top)
	}}

	err := Run(app, headlessConfig(), func(Config) (Window, error) { return win, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, app.started)
	assert.Equal(t, 1, app.shutdown)
	assert.Equal(t, 3, app.renders)
	assert.Equal(t, 3, bottom.renders)
	assert.Equal(t, uint64(3), eng.Frames())
	assert.True(t, win.destroyed)

	// the top layer swallowed both events
	assert.Equal(t, 2, top.seen)
	assert.Zero(t, bottom.seen)
	assert.Empty(t, app.events)
	assert.True(t, eng.Input.IsKeyDown(KeySpace))

	w, h := eng.Graphics.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 400, h)
	assert.Equal(t, 1, eng.Renderer.Stats().DrawCalls)

	assert.Equal(t, 1, top.detached)
	assert.Equal(t, 1, bottom.detached)
	assert.Zero(t, eng.Layers.Len())
}

func TestRunReleasesDeviceLast(t *testing.T) {
	win := &fakeWindow{w: 64, h: 64, maxFrames: 1}
	var eng *Engine
	app := &recordingApp{onStart: func(e *Engine) { eng = e }}
	require.NoError(t, Run(app, headlessConfig(), func(Config) (Window, error) { return win, nil }))

	dev, ok := eng.Device.(*null.Device)
	require.True(t, ok)
	require.NotEmpty(t, dev.Ops)
	assert.Equal(t, "Release", dev.Ops[len(dev.Ops)-1])
	assert.Zero(t, dev.LiveBuffers())
	assert.Zero(t, dev.LiveTextures())
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := headlessConfig()
	cfg.Backend = "vulkan"
	opened := false
	err := Run(&recordingApp{}, cfg, func(Config) (Window, error) {
		opened = true
		return nil, nil
	})
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
	assert.False(t, opened)
}

func TestRequestCloseStopsLoop(t *testing.T) {
	win := &fakeWindow{w: 64, h: 64, maxFrames: 100}
	app := &recordingApp{onStart: func(e *Engine) { e.Window.RequestClose() }}
	require.NoError(t, Run(app, headlessConfig(), func(Config) (Window, error) { return win, nil }))
	assert.Zero(t, app.renders)
}

func TestLoadConfigOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grove2d.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
title = "demo"
backend = "gles2"
window = "sdl"
antialiasing = 8
clear_color = [0.5, 0.25, 0.0, 1.0]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Title)
	assert.Equal(t, backend.GLES2, cfg.Backend)
	assert.Equal(t, WindowSDL, cfg.Window)
	assert.Equal(t, 8, cfg.Antialiasing)
	assert.Equal(t, colors.Color{0.5, 0.25, 0, 1}, cfg.ClearColor)
	// untouched keys keep their default
	assert.Equal(t, DefaultConfig().Width, cfg.Width)
	assert.Equal(t, 60, cfg.TickRate)
}

func TestLoadConfigErrors(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = \"wide\""), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("width = -1\nlog_level = \"loud\""), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size -1x720")
	assert.Contains(t, err.Error(), "loud")
}

func TestInputEdges(t *testing.T) {
	in := NewInput()
	in.Handle(EventKey{Key: KeyA, Down: true})
	in.Handle(EventKey{Key: KeyA, Down: true}) // repeat
	assert.True(t, in.IsKeyPressed(KeyA))
	assert.True(t, in.IsKeyDown(KeyA))

	in.Handle(EventMouseButton{Button: MouseLeft, Down: true, X: 3, Y: 4})
	assert.False(t, in.Clicked(MouseLeft))
	in.Handle(EventMouseButton{Button: MouseLeft, Down: false, X: 5, Y: 6})
	assert.True(t, in.Clicked(MouseLeft))
	x, y := in.Mouse()
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 6.0, y)

	in.Handle(EventScroll{Yoff: 1})
	in.Handle(EventScroll{Yoff: 2})
	assert.Equal(t, 3.0, in.Scroll())

	in.EndTick()
	assert.False(t, in.IsKeyPressed(KeyA))
	assert.True(t, in.IsKeyDown(KeyA))
	assert.False(t, in.Clicked(MouseLeft))
	assert.Zero(t, in.Scroll())

	in.Handle(EventMouseButton{Button: MouseButton(7), Down: true})
	assert.False(t, in.IsButtonDown(MouseButton(7)))
}
