package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embergo/ember/internal/core/ecs"
	"github.com/embergo/ember/internal/core/slot"
)

func newActor(t *testing.T, name string, comps ...ecs.Component) *ecs.Actor {
	t.Helper()
	a := ecs.NewActor(name)
	for _, c := range comps {
		_, err := a.AddComponent(c)
		require.NoError(t, err)
	}
	return a
}

func TestPlayerTemplateDispatchOrder(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	r.AddActor(newActor(t, "Player",
		comp("b", "Sprite", newProbe(&journal, "b", ecs.CallUpdate)),
		comp("a", "Health", newProbe(&journal, "a", ecs.CallUpdate)),
	))

	frame(r)
	assert.Equal(t, []string{"a.OnUpdate", "b.OnUpdate"}, journal)
}

func TestActorAddedBetweenFramesStartsThenUpdates(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	h := r.AddActor(newActor(t, "A",
		comp("x", "T", newProbe(&journal, "x", ecs.CallStart, ecs.CallUpdate, ecs.CallLateUpdate)),
	))
	assert.True(t, r.IsNew(h))

	frame(r)
	assert.Equal(t, []string{"x.OnStart", "x.OnUpdate", "x.OnLateUpdate"}, journal)
	assert.False(t, r.IsNew(h))

	journal = nil
	frame(r)
	assert.Equal(t, []string{"x.OnUpdate", "x.OnLateUpdate"}, journal)
}

func TestSelfDestroyDuringUpdate(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())

	var self slot.Handle
	killer := newProbe(&journal, "b", ecs.CallUpdate).on(ecs.CallUpdate, func() error {
		return r.Destroy(self)
	})
	first := r.AddActor(newActor(t, "first", comp("a", "T", newProbe(&journal, "first", ecs.CallUpdate))))
	self = r.AddActor(newActor(t, "victim",
		comp("a", "T", newProbe(&journal, "a", ecs.CallUpdate)),
		comp("b", "T", killer),
		comp("c", "T", newProbe(&journal, "c", ecs.CallUpdate)),
	))
	r.AddActor(newActor(t, "last", comp("a", "T", newProbe(&journal, "last", ecs.CallUpdate))))

	frame(r)
	assert.Equal(t, []string{"first.OnUpdate", "a.OnUpdate", "b.OnUpdate", "last.OnUpdate"}, journal)

	assert.False(t, r.Alive(self))
	_, err := r.Actor(self)
	assert.ErrorIs(t, err, slot.ErrInvalidHandle)
	_, ok := r.Find("victim")
	assert.False(t, ok)

	journal = nil
	frame(r)
	assert.Equal(t, []string{"first.OnUpdate", "last.OnUpdate"}, journal)
	assert.True(t, r.Alive(first))
	assert.Equal(t, 2, r.Len())
}

func TestSelfDestroyDuringLateUpdateWithSlotReuse(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())

	var self, fresh slot.Handle
	r.AddActor(newActor(t, "first", comp("a", "T", newProbe(&journal, "first", ecs.CallLateUpdate))))
	self = r.AddActor(newActor(t, "victim",
		comp("a", "T", newProbe(&journal, "a", ecs.CallLateUpdate).on(ecs.CallLateUpdate, func() error {
			if err := r.Destroy(self); err != nil {
				return err
			}
			fresh = r.AddActor(newActor(t, "fresh", comp("a", "T", newProbe(&journal, "fresh", ecs.CallLateUpdate))))
			return nil
		})),
		comp("b", "T", newProbe(&journal, "b", ecs.CallLateUpdate)),
	))
	r.AddActor(newActor(t, "last", comp("a", "T", newProbe(&journal, "last", ecs.CallLateUpdate))))

	r.CallNewActorStart()
	r.CallLateUpdate()
	assert.Equal(t, []string{"first.OnLateUpdate", "a.OnLateUpdate", "last.OnLateUpdate"}, journal)
	assert.Equal(t, self.Index(), fresh.Index(), "slot was reused")
	assert.False(t, r.Alive(self))
	assert.True(t, r.Alive(fresh))

	journal = nil
	r.CallNewActorStart()
	r.CallLateUpdate()
	assert.Equal(t, []string{"first.OnLateUpdate", "last.OnLateUpdate", "fresh.OnLateUpdate"}, journal)
}

func TestDestroyingTheNextActorDuringUpdate(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())

	var second slot.Handle
	r.AddActor(newActor(t, "first", comp("a", "T",
		newProbe(&journal, "first", ecs.CallUpdate).on(ecs.CallUpdate, func() error {
			return r.Destroy(second)
		}))))
	second = r.AddActor(newActor(t, "second", comp("a", "T", newProbe(&journal, "second", ecs.CallUpdate))))
	r.AddActor(newActor(t, "third", comp("a", "T", newProbe(&journal, "third", ecs.CallUpdate))))

	frame(r)
	assert.Equal(t, []string{"first.OnUpdate", "third.OnUpdate"}, journal)
}

func TestDestroyIsDeferredForDestroyCallbacks(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	h := r.AddActor(newActor(t, "bomb",
		comp("fuse", "T", newProbe(&journal, "fuse", ecs.CallUpdate, ecs.CallDestroy)),
	))
	frame(r)
	assert.Equal(t, []string{"fuse.OnUpdate"}, journal)
	journal = nil

	require.NoError(t, r.Destroy(h))
	require.NoError(t, r.Destroy(h), "second destroy of a pending actor is a no-op")

	_, ok := r.Find("bomb")
	assert.False(t, ok, "name index is updated eagerly")
	a, err := r.Actor(h)
	require.NoError(t, err, "slot stays alive until the destroy barrier")
	assert.Equal(t, "bomb", a.Name)
	assert.False(t, r.Alive(h))

	r.CallUpdate()
	assert.Empty(t, journal, "unlinked actors are not dispatched")

	r.CallDestroy()
	assert.Equal(t, []string{"fuse.OnDestroy"}, journal)
	_, err = r.Actor(h)
	assert.ErrorIs(t, err, slot.ErrInvalidHandle)
	assert.Equal(t, 0, r.Len())

	assert.ErrorIs(t, r.Destroy(h), slot.ErrInvalidHandle)
}

func TestDestroyCallbackErrorDoesNotStopReclaim(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	a := r.AddActor(newActor(t, "a", comp("x", "T",
		newProbe(&journal, "a", ecs.CallDestroy).on(ecs.CallDestroy, func() error { return assert.AnError }))))
	b := r.AddActor(newActor(t, "b", comp("x", "T", newProbe(&journal, "b", ecs.CallDestroy))))
	frame(r)

	require.NoError(t, r.Destroy(a))
	require.NoError(t, r.Destroy(b))
	r.CallDestroy()

	assert.Equal(t, []string{"a.OnDestroy", "b.OnDestroy"}, journal)
	assert.Equal(t, 0, r.Len())
}

func TestRemovedComponentDestroyRunsAtBarrier(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	h := r.AddActor(newActor(t, "a",
		comp("x", "T", newProbe(&journal, "x", ecs.CallDestroy)),
		comp("y", "T", newProbe(&journal, "y", ecs.CallUpdate)),
	))
	frame(r)
	journal = nil

	a, err := r.Actor(h)
	require.NoError(t, err)
	a.RemoveComponent("x", false)
	assert.Empty(t, journal)

	frame(r)
	assert.Equal(t, []string{"y.OnUpdate", "x.OnDestroy"}, journal)
	assert.Nil(t, a.ComponentByKey("x"))
	assert.True(t, r.Alive(h))
}

func TestQueuedComponentDuringUpdate(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())

	var h slot.Handle
	added := false
	spawner := newProbe(&journal, "spawner", ecs.CallUpdate).on(ecs.CallUpdate, func() error {
		if added {
			return nil
		}
		added = true
		key := r.NextComponentKey()
		return r.EnqueueComponent(h, comp(key, "Late", newProbe(&journal, key, ecs.CallStart, ecs.CallUpdate)))
	})
	h = r.AddActor(newActor(t, "A", comp("s", "T", spawner)))

	frame(r)
	assert.Equal(t, []string{"spawner.OnUpdate"}, journal, "queued component is not visible this frame")
	assert.Equal(t, 1, r.QueuedComponents())

	journal = nil
	frame(r)
	assert.Equal(t, []string{"r0.OnStart", "r0.OnUpdate", "spawner.OnUpdate"}, journal)

	journal = nil
	frame(r)
	assert.Equal(t, []string{"r0.OnUpdate", "spawner.OnUpdate"}, journal, "start runs exactly once")
}

func TestQueuedComponentForDestroyedActorIsDropped(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	h := r.AddActor(newActor(t, "A"))
	frame(r)

	require.NoError(t, r.EnqueueComponent(h, comp("r0", "T", newProbe(&journal, "r0", ecs.CallStart))))
	require.NoError(t, r.Destroy(h))
	reused := r.AddActor(newActor(t, "B"))
	assert.Equal(t, h.Index(), reused.Index(), "slot was reused")

	frame(r)
	assert.Empty(t, journal)
	b, err := r.Actor(reused)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
}

func TestStartCallbackMayDestroyItsActor(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	var h slot.Handle
	h = r.AddActor(newActor(t, "A",
		comp("a", "T", newProbe(&journal, "a", ecs.CallStart).on(ecs.CallStart, func() error { return r.Destroy(h) })),
		comp("b", "T", newProbe(&journal, "b", ecs.CallStart)),
	))
	frame(r)
	assert.Equal(t, []string{"a.OnStart"}, journal)
	assert.Equal(t, 0, r.Len())
}

func TestActorsSpawnedDuringUpdateWaitAFrame(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	spawned := false
	r.AddActor(newActor(t, "spawner", comp("a", "T",
		newProbe(&journal, "spawner", ecs.CallUpdate).on(ecs.CallUpdate, func() error {
			if !spawned {
				spawned = true
				r.AddActor(newActor(t, "child", comp("a", "T", newProbe(&journal, "child", ecs.CallStart, ecs.CallUpdate))))
			}
			return nil
		}))))

	frame(r)
	assert.Equal(t, []string{"spawner.OnUpdate"}, journal, "child added mid-frame is skipped")

	journal = nil
	frame(r)
	assert.Equal(t, []string{"child.OnStart", "spawner.OnUpdate", "child.OnUpdate"}, journal)
}

func TestFindAndNames(t *testing.T) {
	r := ecs.NewRegistry(nop())
	a := r.AddActor(newActor(t, "enemy"))
	b := r.AddActor(newActor(t, "enemy"))
	r.AddActor(newActor(t, "hero"))

	h, ok := r.Find("enemy")
	require.True(t, ok)
	assert.Equal(t, a, h)
	assert.Equal(t, []slot.Handle{a, b}, r.FindAll("enemy"))

	require.NoError(t, r.Destroy(a))
	assert.Equal(t, []slot.Handle{b}, r.FindAll("enemy"))
	assert.Empty(t, r.FindAll("nobody"))

	ida, _ := r.Actor(b)
	assert.Equal(t, ecs.ActorID(1), ida.ID)
}

func TestClearSceneKeepsPersistentActors(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	r.AddActor(newActor(t, "level", comp("x", "T", newProbe(&journal, "level", ecs.CallDestroy))))
	keep := r.AddActor(newActor(t, "music"))
	r.AddActor(newActor(t, "prop"))
	require.NoError(t, r.DontDestroyOnLoad(keep))
	frame(r)

	r.ClearScene()
	assert.Equal(t, []string{"level.OnDestroy"}, journal)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Alive(keep))

	var names []string
	r.Each(func(_ slot.Handle, a *ecs.Actor) { names = append(names, a.Name) })
	assert.Equal(t, []string{"music"}, names)
}

func TestClearSceneDestroysInSlotOrder(t *testing.T) {
	var journal []string
	r := ecs.NewRegistry(nop())
	add := func(name string) slot.Handle {
		return r.AddActor(newActor(t, name, comp("x", "T", newProbe(&journal, name, ecs.CallDestroy))))
	}
	a := add("A")
	add("B")
	add("C")
	frame(r)

	require.NoError(t, r.Destroy(a))
	r.CallDestroy()
	d := add("D")
	assert.Equal(t, a.Index(), d.Index(), "slot was reused")
	journal = nil

	r.ClearScene()
	assert.Equal(t, []string{"D.OnDestroy", "B.OnDestroy", "C.OnDestroy"}, journal)
}

func TestSnapshot(t *testing.T) {
	r := ecs.NewRegistry(nop())
	r.AddActor(newActor(t, "p", comp("b", "Sprite", nil), comp("a", "Health", nil)))
	r.AddActor(newActor(t, "q"))

	s := r.Snapshot()
	require.Len(t, s.Actors, 2)
	assert.Equal(t, "p", s.Actors[0].Name)
	assert.Equal(t, []ecs.ComponentSnapshot{{Key: "a", Type: "Health"}, {Key: "b", Type: "Sprite"}}, s.Actors[0].Components)
	assert.Equal(t, ecs.ActorID(1), s.Actors[1].ID)
}
