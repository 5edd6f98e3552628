package scripting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"

	"github.com/embergo/ember/internal/render"
)

const modelMeta = "ember.Model"

// ModelBehavior exposes a native render.Model to scripts as userdata with
// the properties key, actor, enabled, type, mesh, translation_x/y/z,
// rotation_yaw/pitch/roll and scale_x/y/z. Writing any transform property
// marks the transform dirty.
type ModelBehavior struct {
	*render.Model
	key   string
	actor lua.LValue
	ud    *lua.LUserData
}

func (e *Engine) registerModelType() {
	mt := e.vm.NewTypeMetatable(modelMeta)
	mt.RawSetString("__index", e.vm.NewFunction(modelIndex))
	mt.RawSetString("__newindex", e.vm.NewFunction(modelNewIndex))
}

// NewModelBehavior wraps m for scripting.
func (e *Engine) NewModelBehavior(m *render.Model, key string) *ModelBehavior {
	b := &ModelBehavior{Model: m, key: key, actor: lua.LNil}
	b.ud = e.vm.NewUserData()
	b.ud.Value = b
	e.vm.SetMetatable(b.ud, e.vm.GetTypeMetatable(modelMeta))
	return b
}

func (b *ModelBehavior) Value() lua.LValue { return b.ud }

func (b *ModelBehavior) SetField(name string, v lua.LValue) error {
	return b.set(name, v)
}

func (b *ModelBehavior) get(name string) lua.LValue {
	t := b.Transform()
	switch name {
	case "key":
		return lua.LString(b.key)
	case "actor":
		return b.actor
	case "enabled":
		return lua.LBool(b.Enabled())
	case "type":
		return lua.LString(render.ModelType)
	case "mesh":
		return lua.LString(b.Mesh())
	case "translation_x":
		return lua.LNumber(t.Translation.X())
	case "translation_y":
		return lua.LNumber(t.Translation.Y())
	case "translation_z":
		return lua.LNumber(t.Translation.Z())
	case "rotation_yaw":
		return lua.LNumber(t.Rotation.X())
	case "rotation_pitch":
		return lua.LNumber(t.Rotation.Y())
	case "rotation_roll":
		return lua.LNumber(t.Rotation.Z())
	case "scale_x":
		return lua.LNumber(t.Scale.X())
	case "scale_y":
		return lua.LNumber(t.Scale.Y())
	case "scale_z":
		return lua.LNumber(t.Scale.Z())
	}
	return lua.LNil
}

func (b *ModelBehavior) set(name string, v lua.LValue) error {
	switch name {
	case "key":
		b.key = lua.LVAsString(v)
		return nil
	case "actor":
		b.actor = v
		return nil
	case "enabled":
		b.SetEnabled(lua.LVAsBool(v))
		return nil
	case "mesh":
		b.SetMesh(lua.LVAsString(v))
		return nil
	}

	n, ok := v.(lua.LNumber)
	if !ok {
		return fmt.Errorf("Model.%s: expected number, got %s", name, v.Type())
	}
	f := float32(n)
	t := b.Transform()
	var field *mgl32.Vec3
	var i int
	switch name {
	case "translation_x", "translation_y", "translation_z":
		field, i = &t.Translation, int(name[len(name)-1]-'x')
	case "rotation_yaw":
		field, i = &t.Rotation, 0
	case "rotation_pitch":
		field, i = &t.Rotation, 1
	case "rotation_roll":
		field, i = &t.Rotation, 2
	case "scale_x", "scale_y", "scale_z":
		field, i = &t.Scale, int(name[len(name)-1]-'x')
	default:
		return fmt.Errorf("Model has no property %q", name)
	}
	field[i] = f
	b.SetTransform(t)
	return nil
}

func checkModel(L *lua.LState) *ModelBehavior {
	ud := L.CheckUserData(1)
	if b, ok := ud.Value.(*ModelBehavior); ok {
		return b
	}
	L.ArgError(1, "Model expected")
	return nil
}

func modelIndex(L *lua.LState) int {
	b := checkModel(L)
	L.Push(b.get(L.CheckString(2)))
	return 1
}

func modelNewIndex(L *lua.LState) int {
	b := checkModel(L)
	if err := b.set(L.CheckString(2), L.Get(3)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}
