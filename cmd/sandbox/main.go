package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hubastard/grove2d/engine/core"
	"github.com/hubastard/grove2d/engine/platform"
	"github.com/hubastard/grove2d/engine/profiler"
	"github.com/hubastard/grove2d/engine/text"
)

var (
	configPath   = flag.String("config", "grove2d.toml", "path to the TOML config file")
	backendFlag  = flag.String("backend", "", "override the graphics backend (auto, gl, gles2, null)")
	windowFlag   = flag.String("window", "", "override the window system (glfw, sdl)")
	aaFlag       = flag.Int("aa", -1, "override the surface sample count")
	fontSizeFlag = flag.Float64("font", 16, "HUD font size in pixels")
)

type App struct {
	font       *text.Font
	text       *text.Renderer
	lastFrame  time.Time
	layer      *Layer2D
	debugLayer *LayerDebug
}

func (a *App) OnStart(e *core.Engine) {
	profiler.Init(1 << 10) // ~1K scope samples

	var err error
	a.font, err = text.LoadDefault(e.Graphics, float32(*fontSizeFlag))
	if err != nil {
		e.Log.Error("load font", "err", err)
		e.Window.RequestClose()
		return
	}
	a.text = text.NewRenderer(a.font)

	a.layer = &Layer2D{}
	e.Layers.Push(e, a.layer)

	a.debugLayer = &LayerDebug{text: a.text, scene: a.layer}
	e.Layers.Push(e, a.debugLayer)
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {}

func (a *App) OnRender(e *core.Engine, alpha float64) {
	now := time.Now()
	if a.debugLayer != nil && !a.lastFrame.IsZero() {
		a.debugLayer.frameDuration = now.Sub(a.lastFrame)
	}
	a.lastFrame = now
}

func (a *App) OnEvent(e *core.Engine, ev core.Event) {
	if _, ok := ev.(core.EventCloseRequested); ok {
		e.Log.Debug("close requested")
	}
}

func (a *App) OnShutdown(e *core.Engine) {
	if a.font != nil {
		a.font.Close(e.Graphics)
	}
}

func main() {
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *backendFlag != "" {
		cfg.Backend = *backendFlag
	}
	if *windowFlag != "" {
		cfg.Window = *windowFlag
	}
	if *aaFlag >= 0 {
		cfg.Antialiasing = *aaFlag
	}

	if err := core.Run(&App{}, cfg, platform.New); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
