package world

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/embergo/ember/internal/core/ecs"
	"github.com/embergo/ember/internal/core/slot"
	"github.com/embergo/ember/internal/scripting"
)

const actorMeta = "ember.Actor"

// actorRef is what scripts hold for an actor. Every use resolves the handle,
// so a reference to a destroyed actor raises a Lua error instead of reaching
// whatever reuses its slot.
type actorRef struct {
	h slot.Handle
}

func (w *World) registerBindings() {
	L := w.engine.VM()

	mt := L.NewTypeMetatable(actorMeta)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"GetName":           w.luaGetName,
		"GetID":             w.luaGetID,
		"GetComponentByKey": w.luaGetComponentByKey,
		"GetComponent":      w.luaGetComponent,
		"GetComponents":     w.luaGetComponents,
		"AddComponent":      w.luaAddComponent,
		"RemoveComponent":   w.luaRemoveComponent,
	}))
	L.SetField(mt, "__eq", L.NewFunction(luaActorEq))
	L.SetField(mt, "__tostring", L.NewFunction(w.luaActorString))

	L.SetGlobal("Actor", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"Find":        w.luaFind,
		"FindAll":     w.luaFindAll,
		"Instantiate": w.luaInstantiate,
		"Destroy":     w.luaDestroy,
	}))
	L.SetGlobal("Event", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"Publish":     w.luaPublish,
		"Subscribe":   w.luaSubscribe,
		"Unsubscribe": w.luaUnsubscribe,
	}))
	L.SetGlobal("Scene", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"Load":        w.luaSceneLoad,
		"GetCurrent":  w.luaSceneCurrent,
		"DontDestroy": w.luaDontDestroy,
	}))
	L.SetGlobal("Debug", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"Log":      w.luaLog,
		"LogError": w.luaLogError,
	}))
	L.SetGlobal("Application", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"GetFrame": w.luaGetFrame,
		"GetTime":  w.luaGetTime,
		"Quit":     w.luaQuit,
	}))
}

func (w *World) actorValue(h slot.Handle) *lua.LUserData {
	L := w.engine.VM()
	ud := L.NewUserData()
	ud.Value = actorRef{h: h}
	L.SetMetatable(ud, L.GetTypeMetatable(actorMeta))
	return ud
}

func checkActorRef(L *lua.LState, n int) actorRef {
	ud := L.CheckUserData(n)
	if ref, ok := ud.Value.(actorRef); ok {
		return ref
	}
	L.ArgError(n, "actor expected")
	return actorRef{}
}

// checkActor resolves argument n. A stale reference is fatal.
func (w *World) checkActor(L *lua.LState, n int) (actorRef, *ecs.Actor) {
	ref := checkActorRef(L, n)
	a, err := w.actors.Actor(ref.h)
	if err != nil {
		w.staleActor(L, ref, err)
	}
	return ref, a
}

// staleActor records a use of a destroyed actor as the world's fatal error
// and aborts the running script.
func (w *World) staleActor(L *lua.LState, ref actorRef, err error) {
	if w.fatal == nil {
		w.fatal = fmt.Errorf("script used actor %s: %w", ref.h, err)
	}
	L.RaiseError("%s", err.Error())
}

func componentValue(c *ecs.Component) lua.LValue {
	if c == nil {
		return lua.LNil
	}
	if sc, ok := c.Behavior.(scripting.Component); ok {
		return sc.Value()
	}
	return lua.LNil
}

// --- actor methods ---

func (w *World) luaGetName(L *lua.LState) int {
	_, a := w.checkActor(L, 1)
	L.Push(lua.LString(a.Name))
	return 1
}

func (w *World) luaGetID(L *lua.LState) int {
	_, a := w.checkActor(L, 1)
	L.Push(lua.LNumber(a.ID))
	return 1
}

func (w *World) luaGetComponentByKey(L *lua.LState) int {
	_, a := w.checkActor(L, 1)
	L.Push(componentValue(a.ComponentByKey(L.CheckString(2))))
	return 1
}

func (w *World) luaGetComponent(L *lua.LState) int {
	_, a := w.checkActor(L, 1)
	L.Push(componentValue(a.ComponentByType(L.CheckString(2))))
	return 1
}

func (w *World) luaGetComponents(L *lua.LState) int {
	_, a := w.checkActor(L, 1)
	cs := a.ComponentsByType(L.CheckString(2))
	t := L.CreateTable(len(cs), 0)
	for _, c := range cs {
		t.Append(componentValue(c))
	}
	L.Push(t)
	return 1
}

// luaAddComponent queues a new component. It becomes visible at the next
// apply barrier, but the returned value can be configured right away.
func (w *World) luaAddComponent(L *lua.LState) int {
	ref, _ := w.checkActor(L, 1)
	typ := L.CheckString(2)
	key := w.actors.NextComponentKey()
	comp, err := w.templates.NewComponent(typ, key)
	if err != nil {
		L.RaiseError("AddComponent: %s", err.Error())
	}
	_ = comp.SetField("actor", L.Get(1))
	if err := w.actors.EnqueueComponent(ref.h, ecs.Component{Key: key, Type: typ, Behavior: comp}); err != nil {
		L.RaiseError("AddComponent: %s", err.Error())
	}
	L.Push(comp.Value())
	return 1
}

func (w *World) luaRemoveComponent(L *lua.LState) int {
	_, a := w.checkActor(L, 1)
	comp := L.Get(2)
	if comp == lua.LNil {
		return 0
	}
	a.RemoveComponent(lua.LVAsString(L.GetField(comp, "key")), false)
	return 0
}

func luaActorEq(L *lua.LState) int {
	a, aok := L.CheckUserData(1).Value.(actorRef)
	b, bok := L.CheckUserData(2).Value.(actorRef)
	L.Push(lua.LBool(aok && bok && a.h == b.h))
	return 1
}

func (w *World) luaActorString(L *lua.LState) int {
	ref := checkActorRef(L, 1)
	name := "<destroyed>"
	if a, err := w.actors.Actor(ref.h); err == nil {
		name = a.Name
	}
	L.Push(lua.LString(fmt.Sprintf("Actor(%s %s)", name, ref.h)))
	return 1
}

// --- Actor namespace ---

func (w *World) luaFind(L *lua.LState) int {
	h, ok := w.actors.Find(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(w.actorValue(h))
	return 1
}

func (w *World) luaFindAll(L *lua.LState) int {
	hs := w.actors.FindAll(L.CheckString(1))
	t := L.CreateTable(len(hs), 0)
	for _, h := range hs {
		t.Append(w.actorValue(h))
	}
	L.Push(t)
	return 1
}

// luaInstantiate spawns an actor from a template. A missing template is
// fatal for the game, as it is when loading a scene.
func (w *World) luaInstantiate(L *lua.LState) int {
	name := L.CheckString(1)
	a, err := w.templates.CreateTemplateActor(name)
	if err != nil {
		if w.fatal == nil {
			w.fatal = fmt.Errorf("instantiate %s: %w", name, err)
		}
		L.RaiseError("Instantiate: %s", err.Error())
	}
	L.Push(w.actorValue(w.spawn(a)))
	return 1
}

func (w *World) luaDestroy(L *lua.LState) int {
	ref := checkActorRef(L, 1)
	if err := w.actors.Destroy(ref.h); err != nil {
		w.staleActor(L, ref, err)
	}
	return 0
}

// --- Event namespace ---

func (w *World) luaPublish(L *lua.LState) int {
	w.bus.Publish(L.CheckString(1), L.Get(2))
	return 0
}

func (w *World) luaSubscribe(L *lua.LState) int {
	w.bus.ScheduleSubscribe(L.CheckString(1), w.engine.NewHandler(L.Get(2), L.CheckFunction(3)))
	return 0
}

func (w *World) luaUnsubscribe(L *lua.LState) int {
	w.bus.ScheduleUnsubscribe(L.CheckString(1), w.engine.NewHandler(L.Get(2), L.CheckFunction(3)))
	return 0
}

// --- Scene namespace ---

func (w *World) luaSceneLoad(L *lua.LState) int {
	w.nextScene = L.CheckString(1)
	return 0
}

func (w *World) luaSceneCurrent(L *lua.LState) int {
	L.Push(lua.LString(w.scene))
	return 1
}

func (w *World) luaDontDestroy(L *lua.LState) int {
	ref := checkActorRef(L, 1)
	if err := w.actors.DontDestroyOnLoad(ref.h); err != nil {
		w.staleActor(L, ref, err)
	}
	return 0
}

// --- Debug and Application namespaces ---

func (w *World) luaLog(L *lua.LState) int {
	w.log.Info(L.CheckString(1), zap.String("source", "lua"))
	return 0
}

func (w *World) luaLogError(L *lua.LState) int {
	w.log.Error(L.CheckString(1), zap.String("source", "lua"))
	return 0
}

func (w *World) luaGetFrame(L *lua.LState) int {
	L.Push(lua.LNumber(w.frame))
	return 1
}

func (w *World) luaGetTime(L *lua.LState) int {
	L.Push(lua.LNumber(w.since().Seconds()))
	return 1
}

func (w *World) luaQuit(L *lua.LState) int {
	w.quit = true
	return 0
}
