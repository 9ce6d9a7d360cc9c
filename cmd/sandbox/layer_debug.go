package main

import (
	"time"

	"github.com/hubastard/grove2d/engine/colors"
	"github.com/hubastard/grove2d/engine/core"
	"github.com/hubastard/grove2d/engine/profiler"
	"github.com/hubastard/grove2d/engine/scratch"
	"github.com/hubastard/grove2d/engine/text"
	"github.com/hubastard/grove2d/engine/ui"
)

const profilePath = "grove2d.speedscope.json"

// LayerDebug draws a HUD with frame, renderer and host statistics in
// screen space.
type LayerDebug struct {
	text          *text.Renderer
	scene         *Layer2D
	frameDuration time.Duration
	buf           *scratch.Text
	system        profiler.System
	cpu           float64
	processCPU    float64
	cpuTick       int

	root       *ui.UIView
	frame      *ui.UILabel
	draws      *ui.UILabel
	vertices   *ui.UILabel
	binds      *ui.UILabel
	buffers    *ui.UILabel
	memory     *ui.UILabel
	goroutines *ui.UILabel
	cpuLabel   *ui.UILabel
	scopes     *ui.UILabel
	msaa       *ui.UIButton
	offscreen  *ui.UIButton

	mouseX, mouseY float32
	clicked        bool
}

func (l *LayerDebug) OnAttach(e *core.Engine) {
	l.buf = scratch.NewText(128)

	var err error
	if l.system, err = profiler.ReadSystem(); err != nil {
		e.Log.Warn("system info", "err", err)
	}
	info := e.Renderer.Info()

	heading := func(s string) *ui.UILabel {
		return ui.Label(s).Padding4(0, 12, 0, 0).Color(colors.Yellow)
	}
	l.frame = ui.Label("")
	l.draws = ui.Label("")
	l.vertices = ui.Label("")
	l.binds = ui.Label("")
	l.buffers = ui.Label("")
	l.memory = ui.Label("")
	l.goroutines = ui.Label("")
	l.cpuLabel = ui.Label("")
	l.scopes = ui.Label("profiling off (build with -tags profile)").Color(colors.Gray)

	l.msaa = ui.Button("MSAA").BgColor(colors.DarkGray).OnClick(func() { l.toggleMSAA(e) })
	l.offscreen = ui.Button("Offscreen").BgColor(colors.DarkGray).OnClick(func() {
		l.scene.SetOffscreen(e, !l.scene.Offscreen())
	})
	dump := ui.Button("Dump profile").BgColor(colors.DarkGray).OnClick(func() {
		if err := profiler.Dump(profilePath); err != nil {
			e.Log.Warn("profile dump", "err", err)
			return
		}
		e.Log.Info("profile written", "path", profilePath)
	})

	l.root = ui.View(
		ui.View(
			heading("Frame"),
			l.frame,
			heading("Renderer"),
			l.draws,
			l.vertices,
			l.binds,
			l.buffers,
			heading("Memory"),
			l.memory,
			l.goroutines,
			heading("Scopes"),
			l.scopes,
			heading("CPU"),
			ui.Label(l.system.CPUModel).MaxWidth(320),
			l.cpuLabel,
			heading("GPU"),
			ui.Label(info.Vendor).MaxWidth(320),
			ui.Label(info.Renderer).MaxWidth(320),
			ui.Label(info.Version).MaxWidth(320),
			ui.View(l.msaa, l.offscreen, dump).Gap(6).Padding4(0, 12, 0, 0),
		).
			FlowDirection(ui.LayoutVertical).
			Gap(2).
			Padding(16).
			BgColor(colors.Black.WithAlpha(0.5)),
	).
		Padding(16).
		FlowDirection(ui.LayoutVertical)
}

func (l *LayerDebug) OnDetach(e *core.Engine) {}

func (l *LayerDebug) OnUpdate(e *core.Engine, dt float64) {
	// cpu.Percent measures since the previous call, twice a second is plenty
	if l.cpuTick++; l.cpuTick >= e.Config.TickRate/2 {
		l.cpu = profiler.CPUPercent()
		l.processCPU = profiler.ProcessCPUPercent()
		l.cpuTick = 0
		if profiler.Enabled {
			l.updateScopes()
		}
	}
	l.clicked = l.clicked || e.Input.Clicked(core.MouseLeft)
	x, y := e.Input.Mouse()
	l.mouseX, l.mouseY = float32(x), float32(y)
}

func (l *LayerDebug) OnRender(e *core.Engine, alpha float64) {
	defer profiler.Start("LayerDebug.OnRender")()
	g := e.Graphics
	stats := g.Stats()
	mem := profiler.ReadMemory()

	ms := l.frameDuration.Seconds() * 1000
	fps := 0.0
	if ms > 0 {
		fps = 1000 / ms
	}
	l.frame.SetText(l.buf.Reset().Sprintf("%d  %.2f ms (%.1f FPS)", int(e.Frames()), ms, fps))
	l.draws.SetText(l.buf.Reset().Sprintf("Draw calls: %d", stats.DrawCalls))
	l.vertices.SetText(l.buf.Reset().Sprintf("Vertices: %d", stats.Vertices))
	l.binds.SetText(l.buf.Reset().Sprintf("Texture binds: %d  Resolves: %d", stats.TextureBinds, stats.Resolves))
	l.buffers.SetText(l.buf.Reset().Sprintf("Vertex buffers: %.1f KB", float64(stats.BufferBytes)/1024))
	l.memory.SetText(l.buf.Reset().Sprintf("Heap: %.2f MB  Mallocs: %d  GC: %d",
		float64(mem.Alloc)/(1<<20), int(mem.Mallocs), int(mem.NumGC)))
	l.goroutines.SetText(l.buf.Reset().Sprintf("Goroutines: %d", profiler.NumGoroutine()))
	l.cpuLabel.SetText(l.buf.Reset().Sprintf("%d cores  host %.1f%%  self %.1f%%  RAM %.1f GB",
		l.system.Cores, l.cpu, l.processCPU, float64(l.system.TotalMemory)/(1<<30)))

	l.msaa.TextColor(onOff(e.Renderer.Antialiasing() > 1))
	l.offscreen.TextColor(onOff(l.scene.Offscreen()))

	w, h := g.Size()
	l.root.Draw(&ui.Context{
		Viewport: [4]float32{0, 0, float32(w), float32(h)},
		Text:     l.text,
		Painter:  g,
		MouseX:   l.mouseX,
		MouseY:   l.mouseY,
		Clicked:  l.clicked,
	})
	l.clicked = false
}

// updateScopes shows how the recorded window splits between the layers.
func (l *LayerDebug) updateScopes() {
	totals := profiler.Totals()
	l.scopes.Color(colors.White).SetText(l.buf.Reset().Sprintf("frame %.1f ms  scene %.1f ms  hud %.1f ms",
		totals["frame"].Seconds()*1000,
		totals["Layer2D.OnRender"].Seconds()*1000,
		totals["LayerDebug.OnRender"].Seconds()*1000))
}

func (l *LayerDebug) toggleMSAA(e *core.Engine) {
	samples := 0
	if e.Renderer.Antialiasing() <= 1 {
		samples = max(e.Config.Antialiasing, 4)
	}
	e.Renderer.SetAntialiasing(samples)
	l.scene.RecreateSurfaces(e)
	e.Log.Info("antialiasing", "samples", samples)
}

func onOff(on bool) colors.Color {
	if on {
		return colors.Green
	}
	return colors.Gray
}

func (l *LayerDebug) OnEvent(e *core.Engine, ev core.Event) bool {
	if v, ok := ev.(core.EventKey); ok && v.Down && v.Key == core.KeyP && v.Mods&core.ModCtrl != 0 {
		if path, err := profiler.OpenProfilerGraph(e.Log); err == nil {
			e.Log.Info("speedscope dump", "path", path)
		} else {
			e.Log.Warn("profiler dump", "err", err)
		}
		return true
	}
	return false
}
