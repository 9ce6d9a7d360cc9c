package core

// Input tracks key and mouse state from window events. Pressed and scroll
// state last until the end of the next fixed update.
type Input struct {
	keys           map[Key]bool
	pressed        map[Key]bool
	buttons        [3]bool
	clicked        [3]bool
	mouseX, mouseY float64
	scroll         float64
}

func NewInput() *Input { return &Input{keys: map[Key]bool{}, pressed: map[Key]bool{}} }

func (in *Input) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		if e.Down && !in.keys[e.Key] {
			in.pressed[e.Key] = true
		}
		in.keys[e.Key] = e.Down
	case EventMouseMove:
		in.mouseX, in.mouseY = e.X, e.Y
	case EventMouseButton:
		if e.Button < 0 || int(e.Button) >= len(in.buttons) {
			return
		}
		if !e.Down && in.buttons[e.Button] {
			in.clicked[e.Button] = true
		}
		in.buttons[e.Button] = e.Down
		in.mouseX, in.mouseY = e.X, e.Y
	case EventScroll:
		in.scroll += e.Yoff
	}
}

// EndTick forgets edge-triggered state.
func (in *Input) EndTick() {
	clear(in.pressed)
	in.clicked = [3]bool{}
	in.scroll = 0
}

func (in *Input) IsKeyDown(k Key) bool      { return in.keys[k] }
func (in *Input) IsKeyPressed(k Key) bool   { return in.pressed[k] }
func (in *Input) Mouse() (float64, float64) { return in.mouseX, in.mouseY }
func (in *Input) Scroll() float64           { return in.scroll }

func (in *Input) IsButtonDown(b MouseButton) bool {
	return b >= 0 && int(b) < len(in.buttons) && in.buttons[b]
}

// Clicked reports a press and release of b since the last tick.
func (in *Input) Clicked(b MouseButton) bool {
	return b >= 0 && int(b) < len(in.clicked) && in.clicked[b]
}
