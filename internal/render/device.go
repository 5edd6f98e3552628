package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MatrixSize is the size in bytes of one packed instance matrix.
const MatrixSize = 16 * 4

// BufferID names a device buffer. Zero is never a valid buffer.
type BufferID uint32

// Device is the part of a graphics backend the renderer needs: instance
// buffers it can create and upload to, and instanced draws.
type Device interface {
	CreateBuffer(label string, size int) BufferID
	ReleaseBuffer(id BufferID)
	WriteBuffer(id BufferID, data []mgl32.Mat4) error
	DrawInstanced(id BufferID, count int)
}

type headlessBuffer struct {
	label string
	size  int
	data  []mgl32.Mat4
}

// HeadlessDevice keeps buffers in memory. It backs the binary when no window
// is available and lets tests inspect what was uploaded.
type HeadlessDevice struct {
	buffers map[BufferID]*headlessBuffer
	nextID  BufferID

	Creates int
	Writes  int
	Draws   int
	Drawn   int // instances drawn since the last ResetStats
}

func NewHeadlessDevice() *HeadlessDevice {
	return &HeadlessDevice{buffers: make(map[BufferID]*headlessBuffer)}
}

func (d *HeadlessDevice) CreateBuffer(label string, size int) BufferID {
	d.nextID++
	d.buffers[d.nextID] = &headlessBuffer{label: label, size: size}
	d.Creates++
	return d.nextID
}

func (d *HeadlessDevice) ReleaseBuffer(id BufferID) {
	delete(d.buffers, id)
}

func (d *HeadlessDevice) WriteBuffer(id BufferID, data []mgl32.Mat4) error {
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("write buffer %d: no such buffer", id)
	}
	if len(data)*MatrixSize > b.size {
		return fmt.Errorf("write buffer %q: %d bytes exceed size %d", b.label, len(data)*MatrixSize, b.size)
	}
	b.data = append(b.data[:0], data...)
	d.Writes++
	return nil
}

func (d *HeadlessDevice) DrawInstanced(_ BufferID, count int) {
	d.Draws++
	d.Drawn += count
}

// Contents returns the matrices last written to id.
func (d *HeadlessDevice) Contents(id BufferID) []mgl32.Mat4 {
	if b, ok := d.buffers[id]; ok {
		return b.data
	}
	return nil
}

// Size returns the allocated size of id in bytes.
func (d *HeadlessDevice) Size(id BufferID) int {
	if b, ok := d.buffers[id]; ok {
		return b.size
	}
	return 0
}

// Buffers is the number of live buffers.
func (d *HeadlessDevice) Buffers() int { return len(d.buffers) }

func (d *HeadlessDevice) ResetStats() {
	d.Creates, d.Writes, d.Draws, d.Drawn = 0, 0, 0, 0
}
