package render

import (
	"github.com/embergo/ember/internal/core/ecs"
)

// ModelType is the component type name of Model.
const ModelType = "Model"

var modelCallbacks = ecs.SetOf(ecs.CallStart, ecs.CallUpdate, ecs.CallDestroy)

// Model is the native component that keeps one rendered instance in sync
// with its mesh and transform. The instance is created lazily on start or
// update and recreated whenever the mesh changes.
type Model struct {
	renderer *Renderer

	mesh      string
	transform Transform
	enabled   bool

	instance    InstanceHandle
	hasInstance bool

	meshDirty      bool
	transformDirty bool
}

func NewModel(r *Renderer) *Model {
	return &Model{
		renderer:       r,
		transform:      Identity(),
		enabled:        true,
		meshDirty:      true,
		transformDirty: true,
	}
}

// Clone copies mesh, transform and enabled state. The copy owns no instance.
func (m *Model) Clone() *Model {
	c := NewModel(m.renderer)
	c.mesh = m.mesh
	c.transform = m.transform
	c.enabled = m.enabled
	return c
}

func (m *Model) Callbacks() ecs.CallbackSet { return modelCallbacks }
func (m *Model) Enabled() bool              { return m.enabled }
func (m *Model) SetEnabled(v bool)          { m.enabled = v }

func (m *Model) Invoke(cb ecs.Callback, _ any) error {
	switch cb {
	case ecs.CallStart, ecs.CallUpdate:
		return m.sync()
	case ecs.CallDestroy:
		m.release()
	}
	return nil
}

func (m *Model) Mesh() string { return m.mesh }

func (m *Model) SetMesh(mesh string) {
	m.mesh = mesh
	m.meshDirty = true
}

func (m *Model) Transform() Transform { return m.transform }

func (m *Model) SetTransform(t Transform) {
	m.transform = t
	m.transformDirty = true
}

// Instance returns the current instance, if one has been spawned.
func (m *Model) Instance() (InstanceHandle, bool) { return m.instance, m.hasInstance }

func (m *Model) sync() error {
	switch {
	case m.meshDirty:
		m.release()
		model, err := m.renderer.LoadModel(m.mesh)
		if err != nil {
			return err
		}
		inst, err := m.renderer.SpawnInstance(model, m.transform)
		if err != nil {
			return err
		}
		m.instance, m.hasInstance = inst, true
		m.meshDirty, m.transformDirty = false, false
	case m.transformDirty && m.hasInstance:
		t, err := m.renderer.Instance(m.instance)
		if err != nil {
			return err
		}
		*t = m.transform
		m.transformDirty = false
	}
	return nil
}

func (m *Model) release() {
	if !m.hasInstance {
		return
	}
	m.renderer.DestroyInstance(m.instance)
	m.hasInstance = false
}
