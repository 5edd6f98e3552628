package ecs

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// ActorID is a monotonically assigned identity, never reused within a run.
type ActorID uint64

const NoActorID = ActorID(math.MaxUint64)

var ErrDuplicateKey = errors.New("duplicate component key")

// Actor is one game object: a slot-reusing list of components plus the
// indexes that drive dispatch without scanning every component each frame.
// All index lists are kept sorted by component key.
type Actor struct {
	Name string
	ID   ActorID

	components   []*Component // nil marks a free slot
	keys         map[string]ComponentIndex
	types        map[string][]ComponentIndex
	indexed      [len(indexedCallbacks)][]ComponentIndex
	toDestroy    []ComponentIndex
	freeList     []ComponentIndex
	needsDestroy int
}

func NewActor(name string) *Actor {
	return &Actor{
		Name:  name,
		ID:    NoActorID,
		keys:  make(map[string]ComponentIndex, 8),
		types: make(map[string][]ComponentIndex, 8),
	}
}

// insertSorted inserts idx before the first entry whose key is not less than
// the new component's key.
func (a *Actor) insertSorted(list []ComponentIndex, idx ComponentIndex) []ComponentIndex {
	key := a.components[idx].Key
	pos := sort.Search(len(list), func(i int) bool {
		return a.components[list[i]].Key >= key
	})
	list = append(list, 0)
	copy(list[pos+1:], list[pos:])
	list[pos] = idx
	return list
}

func removeIndex(list []ComponentIndex, idx ComponentIndex) []ComponentIndex {
	for i, v := range list {
		if v == idx {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// AddComponent attaches c in the first free slot and indexes it. The
// callback set is captured here, once.
func (a *Actor) AddComponent(c Component) (*Component, error) {
	if a.keys == nil {
		a.keys = make(map[string]ComponentIndex, 8)
		a.types = make(map[string][]ComponentIndex, 8)
	}
	if _, ok := a.keys[c.Key]; ok {
		return nil, fmt.Errorf("actor %q: %w: %s", a.Name, ErrDuplicateKey, c.Key)
	}

	comp := &Component{Key: c.Key, Type: c.Type, Behavior: c.Behavior}
	if c.Behavior != nil {
		comp.callbacks = c.Behavior.Callbacks()
	}

	var idx ComponentIndex
	if n := len(a.freeList); n > 0 {
		idx = a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.components[idx] = comp
	} else {
		idx = ComponentIndex(len(a.components))
		a.components = append(a.components, comp)
	}

	a.keys[comp.Key] = idx
	a.types[comp.Type] = a.insertSorted(a.types[comp.Type], idx)
	for i, cb := range indexedCallbacks {
		if comp.Has(cb) {
			a.indexed[i] = a.insertSorted(a.indexed[i], idx)
		}
	}
	if comp.Has(CallDestroy) {
		a.needsDestroy++
	}
	return comp, nil
}

// RemoveComponent detaches the component with the given key. Unless force is
// set, a component that implements a destroy callback is only queued and is
// removed by the next CallDestroy. Returns false if the key is unknown.
func (a *Actor) RemoveComponent(key string, force bool) bool {
	idx, ok := a.keys[key]
	if !ok {
		return false
	}
	c := a.components[idx]
	if !force && a.needsDestroy != 0 && c.Has(CallDestroy) {
		for _, pending := range a.toDestroy {
			if pending == idx {
				return true
			}
		}
		a.toDestroy = a.insertSorted(a.toDestroy, idx)
		return true
	}
	a.removeAt(idx)
	return true
}

func (a *Actor) removeAt(idx ComponentIndex) {
	c := a.components[idx]
	delete(a.keys, c.Key)

	list := removeIndex(a.types[c.Type], idx)
	if len(list) == 0 {
		delete(a.types, c.Type)
	} else {
		a.types[c.Type] = list
	}
	for i := range a.indexed {
		a.indexed[i] = removeIndex(a.indexed[i], idx)
	}
	if c.Has(CallDestroy) {
		a.needsDestroy--
		a.toDestroy = removeIndex(a.toDestroy, idx)
	}

	a.components[idx] = nil
	a.freeList = append(a.freeList, idx)
}

// CallDestroy runs the destroy callback of every pending component in key
// order and then removes it. Script errors are logged and do not stop the
// remaining callbacks.
func (a *Actor) CallDestroy(log *zap.Logger) {
	for len(a.toDestroy) > 0 {
		batch := a.toDestroy
		a.toDestroy = nil
		for _, idx := range batch {
			c := a.components[idx]
			if c == nil {
				continue
			}
			callDestroy(log, a.Name, c)
			// the callback may already have force-removed it
			if a.components[idx] == c {
				a.removeAt(idx)
			}
		}
	}
}

// Clear destroys every remaining component and resets the actor to an empty,
// reusable state.
func (a *Actor) Clear(log *zap.Logger) {
	a.toDestroy = a.toDestroy[:0]
	if a.needsDestroy != 0 {
		for idx, c := range a.components {
			if c != nil && c.Has(CallDestroy) {
				a.toDestroy = a.insertSorted(a.toDestroy, ComponentIndex(idx))
			}
		}
		a.CallDestroy(log)
	}

	a.Name = "Uninit"
	a.ID = NoActorID
	clear(a.components)
	a.components = a.components[:0]
	clear(a.keys)
	clear(a.types)
	for i := range a.indexed {
		a.indexed[i] = a.indexed[i][:0]
	}
	a.toDestroy = a.toDestroy[:0]
	a.freeList = a.freeList[:0]
	a.needsDestroy = 0
}

// NeedsDestroy reports whether any attached component implements a destroy
// callback.
func (a *Actor) NeedsDestroy() bool { return a.needsDestroy != 0 }

// PendingDestroy is the number of components waiting for CallDestroy.
func (a *Actor) PendingDestroy() int { return len(a.toDestroy) }

// Len is the number of attached components.
func (a *Actor) Len() int { return len(a.keys) }

// ComponentAt returns the component in slot idx, nil if the slot is free.
func (a *Actor) ComponentAt(idx ComponentIndex) *Component {
	if int(idx) >= len(a.components) {
		return nil
	}
	return a.components[idx]
}

func (a *Actor) ComponentByKey(key string) *Component {
	idx, ok := a.keys[key]
	if !ok {
		return nil
	}
	return a.components[idx]
}

// ComponentByType returns the first component of typ in key order.
func (a *Actor) ComponentByType(typ string) *Component {
	list := a.types[typ]
	if len(list) == 0 {
		return nil
	}
	return a.components[list[0]]
}

func (a *Actor) ComponentsByType(typ string) []*Component {
	list := a.types[typ]
	out := make([]*Component, 0, len(list))
	for _, idx := range list {
		out = append(out, a.components[idx])
	}
	return out
}

// Components returns every attached component in key order.
func (a *Actor) Components() []*Component {
	out := make([]*Component, 0, len(a.keys))
	for _, c := range a.components {
		if c != nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Indexed returns the key-ordered dispatch list for cb. Start and destroy
// have no list and return nil. The slice must not be modified.
func (a *Actor) Indexed(cb Callback) []ComponentIndex {
	i := listFor(cb)
	if i < 0 {
		return nil
	}
	return a.indexed[i]
}

// Dispatch invokes cb on every component that implements it, in key order.
// It is the entry point for a physics collaborator delivering collision and
// trigger notifications; the frame loop itself never produces them.
func (a *Actor) Dispatch(log *zap.Logger, cb Callback, arg any) {
	list := a.Indexed(cb)
	if len(list) == 0 {
		return
	}
	run := append([]ComponentIndex(nil), list...)
	for _, idx := range run {
		Invoke(log, a.Name, a.ComponentAt(idx), cb, arg)
	}
}

// Invoke calls cb on c if it is attached, implements cb and is enabled. A
// returned error is a script failure: it is logged with the actor name and
// swallowed so the frame continues.
func Invoke(log *zap.Logger, actorName string, c *Component, cb Callback, arg any) {
	if c == nil || c.Behavior == nil || !c.Has(cb) || !c.Behavior.Enabled() {
		return
	}
	if err := c.Behavior.Invoke(cb, arg); err != nil {
		logScriptError(log, actorName, c, cb, err)
	}
}

// destroy callbacks run even for disabled components so they can release
// what they hold.
func callDestroy(log *zap.Logger, actorName string, c *Component) {
	if c.Behavior == nil || !c.Has(CallDestroy) {
		return
	}
	if err := c.Behavior.Invoke(CallDestroy, nil); err != nil {
		logScriptError(log, actorName, c, CallDestroy, err)
	}
}

func logScriptError(log *zap.Logger, actorName string, c *Component, cb Callback, err error) {
	log.Error("script error",
		zap.String("actor", actorName),
		zap.String("component", c.Key),
		zap.String("callback", cb.String()),
		zap.Error(err),
	)
}
