package scene

import "github.com/hubastard/grove2d/engine/core"

// OrthoController2D: WASD move, Q/E rotate, Z/X or the wheel zoom.
type OrthoController2D struct {
	MoveSpeed float32 // screen pixels per second
	RotSpeed  float32 // degrees per second
	ZoomSpeed float32 // factor per second or per wheel notch
	Camera    *OrthoCamera2D
}

func NewOrthoController2D(cam *OrthoCamera2D) *OrthoController2D {
	return &OrthoController2D{
		MoveSpeed: 400,
		RotSpeed:  90,
		ZoomSpeed: 1.2,
		Camera:    cam,
	}
}

func (cc *OrthoController2D) Update(in *core.Input, dt float32) {
	// constant on-screen speed whatever the zoom
	speed := cc.MoveSpeed * dt / cc.Camera.Zoom

	if in.IsKeyDown(core.KeyW) {
		cc.Camera.Move(0, -speed)
	}
	if in.IsKeyDown(core.KeyS) {
		cc.Camera.Move(0, speed)
	}
	if in.IsKeyDown(core.KeyA) {
		cc.Camera.Move(-speed, 0)
	}
	if in.IsKeyDown(core.KeyD) {
		cc.Camera.Move(speed, 0)
	}

	if in.IsKeyDown(core.KeyQ) {
		cc.Camera.Rotate(cc.RotSpeed * dt)
	}
	if in.IsKeyDown(core.KeyE) {
		cc.Camera.Rotate(-cc.RotSpeed * dt)
	}

	step := 1 + (cc.ZoomSpeed-1)*dt
	if in.IsKeyDown(core.KeyZ) {
		cc.Camera.SetZoom(cc.Camera.Zoom * step)
	}
	if in.IsKeyDown(core.KeyX) {
		cc.Camera.SetZoom(cc.Camera.Zoom / step)
	}
}

// HandleEvent zooms on wheel events and follows resizes. It reports whether
// the event was consumed.
func (cc *OrthoController2D) HandleEvent(ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventScroll:
		switch {
		case v.Yoff > 0:
			cc.Camera.SetZoom(cc.Camera.Zoom * cc.ZoomSpeed)
		case v.Yoff < 0:
			cc.Camera.SetZoom(cc.Camera.Zoom / cc.ZoomSpeed)
		}
		return true
	case core.EventResize:
		cc.Camera.SetViewportPixels(v.W, v.H)
	}
	return false
}
