package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/embergo/ember/internal/data"
)

// Engine wraps the single gopher-lua VM that runs component scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	res   data.Resources
	types map[string]*lua.LTable
}

// NewEngine creates the VM and loads the shared helper scripts under
// <resources>/scripts, if that directory exists. Component types are loaded
// on first use.
func NewEngine(res data.Resources, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:    vm,
		log:   log,
		res:   res,
		types: make(map[string]*lua.LTable),
	}
	e.registerModelType()
	if err := e.loadDir(filepath.Join(res.Dir, "scripts")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load helper scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // optional
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// VM exposes the Lua state for binding registration.
func (e *Engine) VM() *lua.LState { return e.vm }

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// ComponentType returns the metatable of a component type, loading
// component_types/<typ>.lua on first use. The file must define a global
// table named typ; the table becomes its own __index and gets enabled = true.
func (e *Engine) ComponentType(typ string) (*lua.LTable, error) {
	if meta, ok := e.types[typ]; ok {
		return meta, nil
	}
	if !e.res.ComponentTypeExists(typ) {
		return nil, fmt.Errorf("component type %s: %w", typ, data.ErrNotFound)
	}
	path := e.res.ComponentTypePath(typ)
	if err := e.vm.DoFile(path); err != nil {
		return nil, fmt.Errorf("load component type %s: %w", typ, err)
	}
	meta, ok := e.vm.GetGlobal(typ).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("component type %s: %s does not define a global table %s", typ, path, typ)
	}
	meta.RawSetString("__index", meta)
	meta.RawSetString("enabled", lua.LTrue)
	e.types[typ] = meta
	e.log.Debug("loaded component type", zap.String("type", typ))
	return meta, nil
}

// NewComponent creates a fresh instance of typ.
func (e *Engine) NewComponent(typ, key string) (*lua.LTable, error) {
	meta, err := e.ComponentType(typ)
	if err != nil {
		return nil, err
	}
	return e.Derive(meta, key), nil
}

// NewTemplateComponent creates the shared component table of a template.
// Instances derived from it read its fields until they override them.
func (e *Engine) NewTemplateComponent(typ string, fields map[string]any) (*lua.LTable, error) {
	meta, err := e.ComponentType(typ)
	if err != nil {
		return nil, err
	}
	t := e.vm.NewTable()
	e.vm.SetMetatable(t, meta)
	e.SetFields(t, fields)
	t.RawSetString("__index", t)
	return t, nil
}

// Derive creates a table whose metatable is parent. An empty key is not set.
func (e *Engine) Derive(parent *lua.LTable, key string) *lua.LTable {
	t := e.vm.NewTable()
	e.vm.SetMetatable(t, parent)
	if key != "" {
		t.RawSetString("key", lua.LString(key))
	}
	return t
}

// SetFields copies data-file fields onto t.
func (e *Engine) SetFields(t *lua.LTable, fields map[string]any) {
	for k, v := range fields {
		t.RawSetString(k, ToLua(e.vm, v))
	}
}

// Call invokes fn with args in protected mode and discards its results.
func (e *Engine) Call(fn lua.LValue, args ...lua.LValue) error {
	return e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
