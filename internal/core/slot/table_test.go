package slot_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embergo/ember/internal/core/slot"
)

func TestAddGetRemove(t *testing.T) {
	tbl := slot.New[string](4)

	a := tbl.Add("a")
	b := tbl.Add("b")
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, uint32(0), a.Index())
	assert.Equal(t, uint32(1), b.Index())

	v, err := tbl.Get(a)
	require.NoError(t, err)
	assert.Equal(t, "a", *v)

	assert.True(t, tbl.Remove(a))
	assert.False(t, tbl.Remove(a), "second remove of the same handle is a no-op")
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 2, tbl.Cap())

	_, err = tbl.Get(a)
	assert.ErrorIs(t, err, slot.ErrInvalidHandle)

	c := tbl.Add("c")
	assert.Equal(t, a.Index(), c.Index(), "freed slot is reused")
	assert.Equal(t, a.Generation()+1, c.Generation())
	assert.NotEqual(t, a, c)

	_, err = tbl.Get(a)
	assert.ErrorIs(t, err, slot.ErrInvalidHandle, "old handle must not see the reused slot")
	v, err = tbl.Get(c)
	require.NoError(t, err)
	assert.Equal(t, "c", *v)
}

func TestReuseLowestFreeSlot(t *testing.T) {
	tbl := slot.New[int](0)
	hs := make([]slot.Handle, 5)
	for i := range hs {
		hs[i] = tbl.Add(i)
	}
	tbl.Remove(hs[3])
	tbl.Remove(hs[1])
	tbl.Remove(hs[4])

	assert.Equal(t, uint32(1), tbl.Add(10).Index())
	assert.Equal(t, uint32(3), tbl.Add(11).Index())
	assert.Equal(t, uint32(4), tbl.Add(12).Index())
	assert.Equal(t, uint32(5), tbl.Add(13).Index())
}

func TestOutOfRangeAndNil(t *testing.T) {
	tbl := slot.New[int](0)
	_, err := tbl.Get(slot.Nil)
	assert.ErrorIs(t, err, slot.ErrInvalidHandle)
	assert.False(t, tbl.Remove(slot.Nil))
	assert.True(t, slot.Nil.IsNil())
	assert.Equal(t, "nil", slot.Nil.String())
}

func TestRawIterationSkipsFree(t *testing.T) {
	tbl := slot.New[int](0)
	h0 := tbl.Add(0)
	tbl.Add(1)
	tbl.Add(2)
	tbl.Remove(h0)

	var raw []int
	for i := 0; i < tbl.Cap(); i++ {
		if tbl.Live(i) {
			raw = append(raw, *tbl.At(i))
		}
	}
	assert.Equal(t, []int{1, 2}, raw)

	var each []int
	tbl.Each(func(h slot.Handle, v *int) {
		assert.True(t, tbl.Valid(h))
		each = append(each, *v)
	})
	assert.Equal(t, raw, each)

	_, ok := tbl.HandleAt(0)
	assert.False(t, ok)
}

func TestClearInvalidatesEverything(t *testing.T) {
	tbl := slot.New[int](0)
	a := tbl.Add(1)
	b := tbl.Add(2)
	tbl.Clear()
	assert.Equal(t, 0, tbl.Len())
	assert.False(t, tbl.Valid(a))
	assert.False(t, tbl.Valid(b))
	assert.Equal(t, uint32(0), tbl.Add(3).Index())
}

// Random add/remove churn checked against a model: a handle resolves to its
// own value until removed and is stale afterwards, whatever reuse happened.
func TestHandlesNeverAlias(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tbl := slot.New[int](0)
	live := map[slot.Handle]int{}
	var dead []slot.Handle

	for step := 0; step < 5000; step++ {
		if len(live) == 0 || rng.Intn(3) != 0 {
			h := tbl.Add(step)
			live[h] = step
			continue
		}
		for h := range live {
			require.True(t, tbl.Remove(h))
			delete(live, h)
			dead = append(dead, h)
			break
		}
	}

	assert.Equal(t, len(live), tbl.Len())
	for h, want := range live {
		v, err := tbl.Get(h)
		require.NoError(t, err)
		assert.Equal(t, want, *v)
	}
	for _, h := range dead {
		_, err := tbl.Get(h)
		assert.ErrorIs(t, err, slot.ErrInvalidHandle)
	}
}
