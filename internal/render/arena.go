package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/embergo/ember/internal/core/slot"
)

// TransformArena stores the instance transforms of one model in a slot table
// and mirrors the live ones into a packed device buffer. The buffer is only
// rebuilt when something changed since the last upload.
type TransformArena struct {
	label string
	dev   Device
	log   *zap.Logger

	data    *slot.Table[Transform]
	dirty   bool
	scratch []mgl32.Mat4

	buffer BufferID
	size   int // bytes allocated for buffer
	count  int // live instances at the last upload
}

func NewTransformArena(label string, dev Device, log *zap.Logger) *TransformArena {
	return &TransformArena{
		label: label,
		dev:   dev,
		log:   log,
		data:  slot.New[Transform](16),
	}
}

func (a *TransformArena) Add(t Transform) slot.Handle {
	a.dirty = true
	return a.data.Add(t)
}

func (a *TransformArena) Remove(h slot.Handle) bool {
	a.dirty = true
	return a.data.Remove(h)
}

// Get hands out a mutable transform, so it marks the arena dirty.
func (a *TransformArena) Get(h slot.Handle) (*Transform, error) {
	a.dirty = true
	return a.data.Get(h)
}

// Len is the number of live instances.
func (a *TransformArena) Len() int { return a.data.Len() }

// PackedBuffer returns the device buffer holding one matrix per live
// instance, in slot order. A clean arena returns the cached buffer.
func (a *TransformArena) PackedBuffer() (BufferID, error) {
	if !a.dirty {
		return a.buffer, nil
	}
	live := a.data.Len()
	if a.size < live*MatrixSize {
		size := a.data.Cap() * MatrixSize
		a.log.Debug("resizing instance buffer",
			zap.String("label", a.label),
			zap.Int("bytes", size),
		)
		if a.buffer != 0 {
			a.dev.ReleaseBuffer(a.buffer)
		}
		a.buffer = a.dev.CreateBuffer(a.label, size)
		a.size = size
	}

	a.scratch = a.scratch[:0]
	a.data.Each(func(_ slot.Handle, t *Transform) {
		a.scratch = append(a.scratch, t.Matrix())
	})
	if a.buffer != 0 {
		if err := a.dev.WriteBuffer(a.buffer, a.scratch); err != nil {
			return a.buffer, err
		}
	}
	a.dirty = false
	a.count = live
	return a.buffer, nil
}

// Count is the number of instances in the buffer at the last upload.
func (a *TransformArena) Count() int { return a.count }

// Release frees the device buffer.
func (a *TransformArena) Release() {
	if a.buffer != 0 {
		a.dev.ReleaseBuffer(a.buffer)
		a.buffer, a.size = 0, 0
	}
}
