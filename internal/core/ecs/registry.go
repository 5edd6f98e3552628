package ecs

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/embergo/ember/internal/core/slot"
)

const noIndex = math.MaxUint32

// actorNode is one registry slot. Live actors are threaded into a doubly
// linked active list by raw slot index; the list order is registration order.
type actorNode struct {
	actor         *Actor
	next, prev    uint32
	destroyOnLoad bool
	pending       bool // destroy requested, slot reclaimed at the destroy barrier
}

// Registry owns every live actor and drives the per-frame lifecycle:
// CallNewActorStart, ApplyQueue, CallUpdate, CallLateUpdate, CallDestroy.
// Structural changes requested from callbacks are either deferred to one of
// those barriers or applied through the unlink path, which keeps the walk
// in progress valid.
type Registry struct {
	log   *zap.Logger
	nodes *slot.Table[actorNode]
	head  uint32
	tail  uint32
	names map[string][]slot.Handle

	newSet    map[slot.Handle]struct{}
	newList   []slot.Handle
	toDestroy []slot.Handle
	queue     AddQueue
	nextID    ActorID

	// dispatch state
	curr          uint32
	currDestroyed bool
	cursor        uint32 // next node of the walk in progress
	scratch       []ComponentIndex
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:    log,
		nodes:  slot.New[actorNode](256),
		head:   noIndex,
		tail:   noIndex,
		names:  make(map[string][]slot.Handle, 64),
		newSet: make(map[slot.Handle]struct{}, 16),
		curr:   noIndex,
		cursor: noIndex,
	}
}

func (r *Registry) node(idx uint32) *actorNode { return r.nodes.At(int(idx)) }

// AddActor registers a and links it at the tail of the active list. The
// actor is "new" until the next CallNewActorStart: it receives start then,
// and update/late-update from the following frame on.
func (r *Registry) AddActor(a *Actor) slot.Handle {
	a.ID = r.nextID
	r.nextID++

	h := r.nodes.Add(actorNode{
		actor:         a,
		next:          noIndex,
		prev:          r.tail,
		destroyOnLoad: true,
	})
	idx := h.Index()
	if r.tail != noIndex {
		r.node(r.tail).next = idx
	}
	if r.head == noIndex {
		r.head = idx
	}
	r.tail = idx

	r.names[a.Name] = append(r.names[a.Name], h)
	r.newSet[h] = struct{}{}
	r.newList = append(r.newList, h)
	return h
}

// Actor resolves h. Actors waiting for the destroy barrier still resolve.
func (r *Registry) Actor(h slot.Handle) (*Actor, error) {
	n, err := r.nodes.Get(h)
	if err != nil {
		return nil, err
	}
	return n.actor, nil
}

// Alive reports whether h resolves to an actor that has not been destroyed.
func (r *Registry) Alive(h slot.Handle) bool {
	n, err := r.nodes.Get(h)
	return err == nil && !n.pending
}

// IsNew reports whether h was added since the last CallNewActorStart.
func (r *Registry) IsNew(h slot.Handle) bool {
	_, ok := r.newSet[h]
	return ok
}

// Len is the number of actors holding a slot, including ones waiting for the
// destroy barrier.
func (r *Registry) Len() int { return r.nodes.Len() }

// Find returns the first live actor registered under name.
func (r *Registry) Find(name string) (slot.Handle, bool) {
	hs := r.names[name]
	if len(hs) == 0 {
		return slot.Nil, false
	}
	return hs[0], true
}

// FindAll returns every live actor registered under name, in registration
// order.
func (r *Registry) FindAll(name string) []slot.Handle {
	return append([]slot.Handle(nil), r.names[name]...)
}

// Each visits the active list from head.
func (r *Registry) Each(fn func(slot.Handle, *Actor)) {
	for idx := r.head; idx != noIndex; idx = r.node(idx).next {
		h, _ := r.nodes.HandleAt(int(idx))
		fn(h, r.node(idx).actor)
	}
}

// DontDestroyOnLoad keeps the actor alive across ClearScene.
func (r *Registry) DontDestroyOnLoad(h slot.Handle) error {
	n, err := r.nodes.Get(h)
	if err != nil {
		return fmt.Errorf("dont destroy actor %s: %w", h, err)
	}
	n.destroyOnLoad = false
	return nil
}

// NextComponentKey returns a unique key for a component added at runtime.
func (r *Registry) NextComponentKey() string { return r.queue.NextKey() }

// EnqueueComponent defers attaching c to the actor until the next
// ApplyQueue. The request is dropped then if the actor is gone.
func (r *Registry) EnqueueComponent(h slot.Handle, c Component) error {
	n, err := r.nodes.Get(h)
	if err != nil {
		return fmt.Errorf("add component to actor %s: %w", h, err)
	}
	r.queue.Push(h, n.actor.ID, c)
	return nil
}

// QueuedComponents is the number of adds waiting for ApplyQueue.
func (r *Registry) QueuedComponents() int { return r.queue.Len() }

// CallNewActorStart runs start on every component of every actor added since
// the previous call, in key order. Actors added meanwhile wait for the next
// frame.
func (r *Registry) CallNewActorStart() {
	clear(r.newSet)
	batch := r.newList
	r.newList = nil

	for _, h := range batch {
		n, err := r.nodes.Get(h)
		if err != nil || n.pending {
			continue
		}
		a := n.actor
		r.curr, r.currDestroyed = h.Index(), false
		for _, c := range a.Components() {
			if a.ComponentByKey(c.Key) != c {
				continue
			}
			Invoke(r.log, a.Name, c, CallStart, nil)
			if r.currDestroyed {
				break
			}
		}
	}
	r.endDispatch()
}

// ApplyQueue attaches every queued component whose target actor still exists
// with the same identity, then immediately runs its start callback.
func (r *Registry) ApplyQueue() {
	for _, p := range r.queue.drain() {
		n, err := r.nodes.Get(p.actor)
		if err != nil || n.pending || n.actor.ID != p.id {
			continue
		}
		a := n.actor
		c, err := a.AddComponent(p.component)
		if err != nil {
			r.log.Warn("queued component dropped", zap.String("actor", a.Name), zap.Error(err))
			continue
		}
		r.curr, r.currDestroyed = p.actor.Index(), false
		Invoke(r.log, a.Name, c, CallStart, nil)
	}
	r.endDispatch()
}

// CallUpdate dispatches OnUpdate over the active list.
func (r *Registry) CallUpdate() { r.callIndexed(CallUpdate) }

// CallLateUpdate dispatches OnLateUpdate over the active list.
func (r *Registry) CallLateUpdate() { r.callIndexed(CallLateUpdate) }

// callIndexed walks the active list and runs cb's key-ordered component list
// on every actor that is not new. The next node is captured before any
// callback runs; unlink advances it if that node is removed. If a callback
// destroys the actor being dispatched, its remaining callbacks are skipped
// and the actor is not touched again.
func (r *Registry) callIndexed(cb Callback) {
	for idx := r.head; idx != noIndex; idx = r.cursor {
		n := r.node(idx)
		r.cursor = n.next
		h, _ := r.nodes.HandleAt(int(idx))
		if _, isNew := r.newSet[h]; isNew {
			continue
		}

		a := n.actor
		r.curr, r.currDestroyed = idx, false
		r.scratch = append(r.scratch[:0], a.Indexed(cb)...)
		for _, ci := range r.scratch {
			Invoke(r.log, a.Name, a.ComponentAt(ci), cb, nil)
			if r.currDestroyed {
				break
			}
		}
	}
	r.endDispatch()
}

// CallDestroy is the destroy barrier. First every active actor's pending
// component destroys run, then every destroyed actor is cleared (firing its
// remaining destroy callbacks) and its slot is freed.
func (r *Registry) CallDestroy() {
	for idx := r.head; idx != noIndex; idx = r.cursor {
		n := r.node(idx)
		r.cursor = n.next
		h, _ := r.nodes.HandleAt(int(idx))
		if _, isNew := r.newSet[h]; isNew {
			continue
		}
		a := n.actor
		if a.PendingDestroy() == 0 {
			continue
		}
		r.curr, r.currDestroyed = idx, false
		a.CallDestroy(r.log)
	}
	r.endDispatch()

	for len(r.toDestroy) > 0 {
		batch := r.toDestroy
		r.toDestroy = nil
		for _, h := range batch {
			a, err := r.Actor(h)
			if err != nil {
				continue
			}
			a.Clear(r.log)
			r.nodes.Remove(h)
		}
	}
}

// Destroy logically removes an actor. It leaves the name index and the
// active list right away. If any of its components implements a destroy
// callback the slot lives on until the next CallDestroy, otherwise it is
// reclaimed immediately. Destroying a pending actor again is a no-op.
func (r *Registry) Destroy(h slot.Handle) error {
	n, err := r.nodes.Get(h)
	if err != nil {
		return fmt.Errorf("destroy actor %s: %w", h, err)
	}
	if n.pending {
		return nil
	}
	a := n.actor
	idx := h.Index()

	n.destroyOnLoad = false
	r.removeName(a.Name, h)
	delete(r.newSet, h)
	r.unlink(idx)
	if idx == r.curr {
		r.currDestroyed = true
	}

	if a.NeedsDestroy() {
		n.pending = true
		r.toDestroy = append(r.toDestroy, h)
		return nil
	}
	r.nodes.Remove(h)
	a.Clear(r.log)
	return nil
}

// ClearScene destroys every actor not marked DontDestroyOnLoad, in slot
// order, and runs the destroy barrier.
func (r *Registry) ClearScene() {
	var doomed []slot.Handle
	r.nodes.Each(func(h slot.Handle, n *actorNode) {
		if n.destroyOnLoad && !n.pending {
			doomed = append(doomed, h)
		}
	})
	for _, h := range doomed {
		// handles collected above are valid; a destroy callback can only
		// make them pending, which Destroy ignores
		_ = r.Destroy(h)
	}
	r.CallDestroy()
}

func (r *Registry) unlink(idx uint32) {
	n := r.node(idx)
	if n.next == noIndex {
		r.tail = n.prev
	} else {
		r.node(n.next).prev = n.prev
	}
	if n.prev == noIndex {
		r.head = n.next
	} else {
		r.node(n.prev).next = n.next
	}
	if r.cursor == idx {
		r.cursor = n.next
	}
	n.next, n.prev = noIndex, noIndex
}

func (r *Registry) removeName(name string, h slot.Handle) {
	hs := r.names[name]
	for i, v := range hs {
		if v == h {
			hs = append(hs[:i], hs[i+1:]...)
			break
		}
	}
	if len(hs) == 0 {
		delete(r.names, name)
		return
	}
	r.names[name] = hs
}

func (r *Registry) endDispatch() {
	r.curr = noIndex
	r.currDestroyed = false
	r.cursor = noIndex
}
