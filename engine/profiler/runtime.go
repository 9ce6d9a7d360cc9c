// Package profiler records nested timing scopes into a ring buffer and dumps
// them as a speedscope evented profile. Without the "profile" build tag
// scopes are not recorded.
package profiler

import (
	"errors"
	"runtime"
)

var ErrNoEvents = errors.New("profiler: no events to dump")

// Memory is a snapshot of the Go heap.
type Memory struct {
	Alloc   uint64 // bytes of live heap objects
	Mallocs uint64 // cumulative allocations
	NumGC   uint32
}

// ReadMemory calls runtime.ReadMemStats, which stops the world. Call it at
// most once per frame.
func ReadMemory() Memory {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Memory{Alloc: m.Alloc, Mallocs: m.Mallocs, NumGC: m.NumGC}
}

func NumGoroutine() int { return runtime.NumGoroutine() }

func NumCPU() int { return runtime.NumCPU() }
