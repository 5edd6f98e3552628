package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// Handler is an event subscription made from Lua: a component table and the
// function to call on it. Two handlers are equal when both refer to the same
// table and function, which is what unsubscribing matches on.
type Handler struct {
	engine *Engine
	self   lua.LValue
	fn     lua.LValue
}

func (e *Engine) NewHandler(self, fn lua.LValue) Handler {
	return Handler{engine: e, self: self, fn: fn}
}

func (h Handler) Handle(message any) error {
	return h.engine.Call(h.fn, h.self, ToLua(h.engine.vm, message))
}
