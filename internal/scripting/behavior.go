package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/embergo/ember/internal/core/ecs"
)

// Behavior adapts a Lua component table to ecs.Behavior. Which callbacks
// the component implements is read once, when the behavior is created,
// following the table's __index chain.
type Behavior struct {
	engine    *Engine
	table     *lua.LTable
	callbacks ecs.CallbackSet
}

func (e *Engine) NewBehavior(t *lua.LTable) *Behavior {
	b := &Behavior{engine: e, table: t}
	for _, cb := range ecs.Callbacks() {
		if _, ok := e.vm.GetField(t, cb.String()).(*lua.LFunction); ok {
			b.callbacks = b.callbacks.With(cb)
		}
	}
	return b
}

// Component is a behavior whose component scripts can see as a Lua value.
type Component interface {
	ecs.Behavior
	Value() lua.LValue
	SetField(name string, v lua.LValue) error
}

// Value is the Lua value scripts see for this component.
func (b *Behavior) Value() lua.LValue { return b.table }

func (b *Behavior) SetField(name string, v lua.LValue) error {
	b.table.RawSetString(name, v)
	return nil
}

func (b *Behavior) Callbacks() ecs.CallbackSet { return b.callbacks }

// Enabled reads the component's enabled field on every call.
func (b *Behavior) Enabled() bool {
	return lua.LVAsBool(b.engine.vm.GetField(b.table, "enabled"))
}

// Invoke calls the callback with the component as self. A non-nil arg is
// passed as the second argument.
func (b *Behavior) Invoke(cb ecs.Callback, arg any) error {
	fn := b.engine.vm.GetField(b.table, cb.String())
	if fn == lua.LNil {
		return nil
	}
	args := []lua.LValue{b.table}
	if arg != nil {
		args = append(args, ToLua(b.engine.vm, arg))
	}
	if err := b.engine.Call(fn, args...); err != nil {
		return fmt.Errorf("%s: %w", cb, err)
	}
	return nil
}
