package core

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/hubastard/grove2d/engine/gfx/backend"
	"github.com/hubastard/grove2d/engine/gfx/render"
	"github.com/hubastard/grove2d/engine/graphics"
	"github.com/hubastard/grove2d/engine/logging"
	"github.com/hubastard/grove2d/engine/profiler"
)

// Run opens the window, builds the device, renderer and graphics facade and
// executes the main loop until the window closes.
func Run(app App, cfg Config, newWindow WindowFactory) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := cfg.Validate(); err != nil {
		return err
	}

	lg, err := logging.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer lg.Close()

	win, err := newWindow(cfg)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()

	dev, err := backend.New(cfg.Backend, lg.Logger)
	if err != nil {
		return fmt.Errorf("create %s device: %w", cfg.Backend, err)
	}
	// runs after the renderer has deleted its objects
	defer dev.Release()

	w, h := win.FramebufferSize()
	rend := render.New(dev, render.Config{
		Width:            w,
		Height:           h,
		Antialiasing:     cfg.Antialiasing,
		VertexBufferSize: cfg.VertexBufferSize,
		Logger:           lg.Logger,
	})
	if err := rend.Initialize(); err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}
	// renderer shuts down before the window drops the context
	defer rend.Terminate()

	gfx := graphics.New(rend, w, h, graphics.WithLogger(lg.Logger))
	gfx.SetClearColor(cfg.ClearColor)

	eng := &Engine{
		Config:   cfg,
		Window:   win,
		Graphics: gfx,
		Renderer: rend,
		Device:   dev,
		Input:    NewInput(),
		Layers:   &LayerStack{},
		Log:      lg.Logger,
		start:    time.Now(),
	}
	win.SetEventCallback(func(ev Event) { eng.dispatch(app, ev) })

	app.OnStart(eng)
	eng.loop(app)
	app.OnShutdown(eng)
	eng.Layers.Clear(eng)

	lg.Info("engine exit",
		slog.Uint64("frames", eng.frames),
		slog.Duration("uptime", eng.Uptime()),
		slog.Any("last_frame", rend.Stats()))
	return nil
}

func (e *Engine) dispatch(app App, ev Event) {
	e.Input.Handle(ev)
	if r, ok := ev.(EventResize); ok {
		fw, fh := e.Window.FramebufferSize()
		if fw < 1 || fh < 1 {
			// minimized
			return
		}
		e.Graphics.Resize(fw, fh)
		e.Log.Debug("resize", slog.Int("w", r.W), slog.Int("h", r.H))
	}

	handled := false
	e.Layers.ForEachReverse(func(l Layer) bool {
		handled = l.OnEvent(e, ev)
		return handled
	})
	if !handled {
		app.OnEvent(e, ev)
	}
}

// loop runs fixed-timestep updates with interpolated rendering.
func (e *Engine) loop(app App) {
	tick := time.Second / time.Duration(e.Config.TickRate)
	var (
		accum   time.Duration
		prev    = time.Now()
		maxStep = 10 // prevent spiral of death
	)

	for !e.Window.ShouldClose() {
		now := time.Now()
		accum += now.Sub(prev)
		prev = now

		// Poll OS events (platform will emit via callbacks)
		e.Window.PollEvents()

		steps := 0
		for accum >= tick && steps < maxStep {
			e.update(app, tick.Seconds())
			accum -= tick
			steps++
		}
		if steps == maxStep {
			accum = 0
		}

		e.render(app, float64(accum)/float64(tick))
	}
}

func (e *Engine) update(app App, dt float64) {
	defer profiler.Start("update")()
	app.OnUpdate(e, dt)
	e.Layers.ForEach(func(l Layer) { l.OnUpdate(e, dt) })
	e.Input.EndTick()
}

func (e *Engine) render(app App, alpha float64) {
	end := profiler.Start("frame")

	e.Graphics.Clear()
	app.OnRender(e, alpha)
	e.Layers.ForEach(func(l Layer) { l.OnRender(e, alpha) })
	e.Graphics.Process()

	present := profiler.Start("present")
	e.Window.SwapBuffers()
	present()

	e.Graphics.PostProcess()
	e.frames++
	end()
}
