package ecs_test

import (
	"go.uber.org/zap"

	"github.com/embergo/ember/internal/core/ecs"
)

// probe records every callback it receives into a shared journal.
type probe struct {
	name     string
	set      ecs.CallbackSet
	disabled bool
	journal  *[]string
	hooks    map[ecs.Callback]func() error
}

func (p *probe) Callbacks() ecs.CallbackSet { return p.set }
func (p *probe) Enabled() bool              { return !p.disabled }

func (p *probe) Invoke(cb ecs.Callback, _ any) error {
	*p.journal = append(*p.journal, p.name+"."+cb.String())
	if fn := p.hooks[cb]; fn != nil {
		return fn()
	}
	return nil
}

func (p *probe) on(cb ecs.Callback, fn func() error) *probe {
	if p.hooks == nil {
		p.hooks = make(map[ecs.Callback]func() error)
	}
	p.hooks[cb] = fn
	return p
}

func newProbe(journal *[]string, name string, cbs ...ecs.Callback) *probe {
	return &probe{name: name, set: ecs.SetOf(cbs...), journal: journal}
}

func comp(key, typ string, b ecs.Behavior) ecs.Component {
	return ecs.Component{Key: key, Type: typ, Behavior: b}
}

func frame(r *ecs.Registry) {
	r.CallNewActorStart()
	r.ApplyQueue()
	r.CallUpdate()
	r.CallLateUpdate()
	r.CallDestroy()
}

func nop() *zap.Logger { return zap.NewNop() }
