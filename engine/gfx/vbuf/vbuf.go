// Package vbuf batches vertex data into one growable GPU buffer per vertex
// format. Callers append a vertex list and draw from the returned offset
// right away; offsets rewind once per frame.
package vbuf

import (
	"log/slog"
	"unsafe"

	"github.com/hubastard/grove2d/engine/gfx/device"
)

// DefaultCapacity is the initial size in bytes of each format's buffer.
const DefaultCapacity = 16 * 1024

type buffer struct {
	handle   device.Buffer
	offset   int
	capacity int
}

// Manager owns one buffer per device.VertexFormat.
type Manager struct {
	dev  device.Device
	log  *slog.Logger
	bufs [device.NumFormats]buffer
}

// New allocates a buffer of initialCapacity bytes for each format and binds
// its attribute layout.
func New(dev device.Device, initialCapacity int, log *slog.Logger) *Manager {
	if initialCapacity <= 0 {
		initialCapacity = DefaultCapacity
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := &Manager{dev: dev, log: log}
	for f := range m.bufs {
		b := &m.bufs[f]
		b.capacity = initialCapacity
		b.handle = dev.CreateBuffer(initialCapacity)
		dev.BindVertexLayout(device.VertexFormat(f), b.handle)
	}
	return m
}

// Append writes data at the current offset of format f and returns that
// offset. When the buffer is too small its capacity doubles until the data
// fits; bytes already appended this frame are carried over to the new buffer.
func (m *Manager) Append(f device.VertexFormat, data []byte) int {
	b := &m.bufs[f]
	need := b.offset + len(data)
	if need > b.capacity {
		m.grow(f, need)
	}
	off := b.offset
	m.dev.BufferSubData(b.handle, off, data)
	b.offset = need
	return off
}

// AppendFloats is Append for a float32 vertex list.
func (m *Manager) AppendFloats(f device.VertexFormat, verts []float32) int {
	if len(verts) == 0 {
		return m.bufs[f].offset
	}
	return m.Append(f, unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*4))
}

func (m *Manager) grow(f device.VertexFormat, need int) {
	b := &m.bufs[f]
	// a released buffer has no capacity left to double
	capacity := max(b.capacity, DefaultCapacity)
	for capacity < need {
		capacity *= 2
	}
	nb := m.dev.CreateBuffer(capacity)
	if b.offset > 0 {
		m.dev.CopyBuffer(b.handle, nb, b.offset)
	}
	m.dev.DeleteBuffer(b.handle)
	b.handle, b.capacity = nb, capacity
	m.dev.BindVertexLayout(f, nb)
	m.log.Debug("vertex buffer grown", slog.String("format", f.String()), slog.Int("capacity", capacity))
}

// Reset rewinds the write offset of f.
func (m *Manager) Reset(f device.VertexFormat) { m.bufs[f].offset = 0 }

// ResetAll rewinds every format. Called once per frame.
func (m *Manager) ResetAll() {
	for f := range m.bufs {
		m.bufs[f].offset = 0
	}
}

func (m *Manager) Offset(f device.VertexFormat) int           { return m.bufs[f].offset }
func (m *Manager) Capacity(f device.VertexFormat) int         { return m.bufs[f].capacity }
func (m *Manager) Handle(f device.VertexFormat) device.Buffer { return m.bufs[f].handle }

// Bytes reports the GPU memory held by all formats.
func (m *Manager) Bytes() int {
	n := 0
	for _, b := range m.bufs {
		n += b.capacity
	}
	return n
}

// Release deletes every buffer.
func (m *Manager) Release() {
	for f := range m.bufs {
		b := &m.bufs[f]
		if b.handle != 0 {
			m.dev.DeleteBuffer(b.handle)
		}
		*b = buffer{}
	}
}
