package render

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/embergo/ember/internal/core/slot"
)

// ModelHandle identifies a loaded model. Models are never unloaded.
type ModelHandle struct{ index int }

// InstanceHandle identifies one placed instance of a model.
type InstanceHandle struct {
	model     ModelHandle
	transform slot.Handle
}

func (h InstanceHandle) Model() ModelHandle { return h.model }

type modelType struct {
	path       string
	transforms *TransformArena
}

// FrameStats summarizes one rendered frame.
type FrameStats struct {
	Models    int
	Instances int
}

// Renderer owns loaded models and their instance arenas. Mesh names are
// resolved under meshDir.
type Renderer struct {
	dev     Device
	meshDir string
	log     *zap.Logger

	models []modelType
	byPath map[string]ModelHandle
	last   FrameStats
}

func NewRenderer(dev Device, meshDir string, log *zap.Logger) *Renderer {
	return &Renderer{
		dev:     dev,
		meshDir: meshDir,
		log:     log,
		byPath:  make(map[string]ModelHandle),
	}
}

// LoadModel returns the handle for mesh, loading it on first use.
func (r *Renderer) LoadModel(mesh string) (ModelHandle, error) {
	path := filepath.Join(r.meshDir, mesh)
	if h, ok := r.byPath[path]; ok {
		return h, nil
	}
	if mesh == "" {
		return ModelHandle{}, fmt.Errorf("load model: empty mesh name")
	}
	if _, err := os.Stat(path); err != nil {
		return ModelHandle{}, fmt.Errorf("load model %s: %w", path, err)
	}

	h := ModelHandle{index: len(r.models)}
	r.models = append(r.models, modelType{
		path:       path,
		transforms: NewTransformArena("instances of "+mesh, r.dev, r.log),
	})
	r.byPath[path] = h
	r.log.Info("loaded model", zap.String("path", path))
	return h, nil
}

func (r *Renderer) model(h ModelHandle) (*modelType, error) {
	if h.index < 0 || h.index >= len(r.models) {
		return nil, fmt.Errorf("model %d: %w", h.index, slot.ErrInvalidHandle)
	}
	return &r.models[h.index], nil
}

// SpawnInstance places a new instance of model.
func (r *Renderer) SpawnInstance(model ModelHandle, t Transform) (InstanceHandle, error) {
	m, err := r.model(model)
	if err != nil {
		return InstanceHandle{}, err
	}
	return InstanceHandle{model: model, transform: m.transforms.Add(t)}, nil
}

// Instance returns the mutable transform of an instance.
func (r *Renderer) Instance(h InstanceHandle) (*Transform, error) {
	m, err := r.model(h.model)
	if err != nil {
		return nil, err
	}
	return m.transforms.Get(h.transform)
}

// DestroyInstance removes an instance. Stale handles are ignored.
func (r *Renderer) DestroyInstance(h InstanceHandle) {
	if m, err := r.model(h.model); err == nil {
		m.transforms.Remove(h.transform)
	}
}

// Instances is the number of live instances of model.
func (r *Renderer) Instances(model ModelHandle) int {
	if m, err := r.model(model); err == nil {
		return m.transforms.Len()
	}
	return 0
}

// Frame uploads changed instance buffers and issues one instanced draw per
// model with live instances.
func (r *Renderer) Frame() (FrameStats, error) {
	var stats FrameStats
	for i := range r.models {
		m := &r.models[i]
		buf, err := m.transforms.PackedBuffer()
		if err != nil {
			return stats, fmt.Errorf("pack %s: %w", m.path, err)
		}
		if n := m.transforms.Count(); n > 0 {
			r.dev.DrawInstanced(buf, n)
			stats.Models++
			stats.Instances += n
		}
	}
	r.last = stats
	return stats, nil
}

// LastFrame returns the stats of the most recent Frame.
func (r *Renderer) LastFrame() FrameStats { return r.last }

// Close releases every instance buffer.
func (r *Renderer) Close() {
	for i := range r.models {
		r.models[i].transforms.Release()
	}
}
