//go:build profile

package profiler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Enabled reports whether scopes are recorded.
const Enabled = true

// Init must be called once before Start with the ring capacity in events.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 20
	}
	evrb.init(capacity)
}

// Start begins a scope and returns an end func to be deferred.
func Start(name string) func() {
	if !evrb.ready.Load() {
		return func() {}
	}
	id := intern(name)
	begin := time.Now().UnixNano()
	evrb.push(evEntry{AtNS: begin, FrameID: id, Open: true})
	return func() {
		evrb.push(evEntry{AtNS: max(time.Now().UnixNano(), begin), FrameID: id})
	}
}

// Dump writes the recorded scopes to path as a speedscope file.
func Dump(path string) error {
	return dump(path)
}

// OpenProfilerGraph dumps the scopes into the temp dir and opens the file
// with the speedscope CLI when it is installed.
func OpenProfilerGraph(log *slog.Logger) (string, error) {
	profilePath := filepath.Join(os.TempDir(), "grove2d.speedscope.json")
	if err := Dump(profilePath); err != nil {
		return "", err
	}

	cmd := exec.Command("speedscope", profilePath)
	cmd.SysProcAttr = hideWindowAttr()
	if err := cmd.Start(); err != nil {
		log.Warn("speedscope not started", slog.String("profile", profilePath), slog.Any("error", err))
	}
	return profilePath, nil
}

// ---------- event ring ----------

type evEntry struct {
	AtNS    int64
	FrameID int
	Open    bool
}

type evRing struct {
	ready atomic.Bool
	cap   uint64
	write atomic.Uint64
	evs   []evEntry
}

func (r *evRing) init(capacity int) {
	r.cap = uint64(capacity)
	r.evs = make([]evEntry, r.cap)
	r.write.Store(0)
	r.ready.Store(true)
}

func (r *evRing) push(e evEntry) {
	i := r.write.Add(1) - 1
	r.evs[i%r.cap] = e
}

// snapshot returns events in write order.
func (r *evRing) snapshot() []evEntry {
	n := r.write.Load()
	if n == 0 {
		return nil
	}
	start := uint64(0)
	if n > r.cap {
		start = n - r.cap
	}
	size := n - start
	out := make([]evEntry, 0, size)
	for k := start; k < n; k++ {
		out = append(out, r.evs[k%r.cap])
	}
	return out
}

var evrb evRing

// ---------- scope names ----------

var (
	namesMu sync.Mutex
	names   []string
	nameIDs = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := nameIDs[name]; ok {
		return id
	}
	id := len(names)
	nameIDs[name] = id
	names = append(names, name)
	return id
}

func scopeNames() []string {
	namesMu.Lock()
	defer namesMu.Unlock()
	return slices.Clone(names)
}

// ---------- speedscope (evented profile) ----------

type ssFile struct {
	Schema             string      `json:"$schema"`
	Shared             ssShared    `json:"shared"`
	Profiles           []ssProfile `json:"profiles"`
	ActiveProfileIndex int         `json:"activeProfileIndex"`
	Exporter           string      `json:"exporter,omitempty"`
	Name               string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // µs since the first event
	Frame int    `json:"frame"`
}

// balance turns raw ring events into properly nested open/close pairs in
// microseconds. Closing a scope also closes any scope opened inside it that
// never ended; closes without an open are dropped, as are scopes still open
// at the end, which are closed at the last timestamp.
func balance(evs []evEntry) (out []ssEvent, endUS int64) {
	if len(evs) == 0 {
		return nil, 0
	}
	base := evs[0].AtNS
	out = make([]ssEvent, 0, len(evs)+8)
	var stack []int
	var last int64

	for _, e := range evs {
		at := max((e.AtNS-base)/1000, last)
		last = at
		if e.Open {
			out = append(out, ssEvent{Type: "O", At: at, Frame: e.FrameID})
			stack = append(stack, e.FrameID)
			continue
		}
		depth := -1
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i] == e.FrameID {
				depth = i
				break
			}
		}
		if depth < 0 {
			continue
		}
		for len(stack) > depth {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: at, Frame: top})
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, ssEvent{Type: "C", At: last, Frame: top})
	}
	return out, last
}

// WriteSpeedscope encodes the recorded scopes as a speedscope JSON document.
func WriteSpeedscope(w io.Writer) error {
	events, end := balance(evrb.snapshot())
	if len(events) == 0 {
		return ErrNoEvents
	}
	all := scopeNames()
	frames := make([]ssFrame, 0, len(all))
	for _, n := range all {
		frames = append(frames, ssFrame{Name: n})
	}
	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "grove2d frame scopes",
			Unit:     "microseconds",
			EndValue: end,
			Events:   events,
		}},
		Exporter: "grove2d-profiler",
		Name:     "grove2d capture",
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&doc)
}

// Totals sums the time spent in each scope over the recorded window,
// including time spent in nested scopes.
func Totals() map[string]time.Duration {
	events, _ := balance(evrb.snapshot())
	all := scopeNames()
	out := make(map[string]time.Duration)
	var opened []int64
	for _, ev := range events {
		if ev.Type == "O" {
			opened = append(opened, ev.At)
			continue
		}
		start := opened[len(opened)-1]
		opened = opened[:len(opened)-1]
		out[all[ev.Frame]] += time.Duration(ev.At-start) * time.Microsecond
	}
	return out
}

func dump(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if err := WriteSpeedscope(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
