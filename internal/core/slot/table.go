package slot

import (
	"errors"
	"sort"
)

// ErrInvalidHandle is returned when a handle's generation no longer matches
// its slot, or the handle points outside the table.
var ErrInvalidHandle = errors.New("invalid handle")

type entry[T any] struct {
	value T
	gen   uint64
	live  bool
}

// Table is a generational slot arena. Freed slots are reused lowest index
// first and their generation only ever increases.
type Table[T any] struct {
	items []entry[T]
	free  []uint32 // sorted descending, lowest index at the end
}

func New[T any](capacity int) *Table[T] {
	return &Table[T]{
		items: make([]entry[T], 0, capacity),
	}
}

// Add stores v and returns its handle.
func (t *Table[T]) Add(v T) Handle {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		e := &t.items[idx]
		e.value = v
		e.live = true
		return Handle{index: idx, gen: e.gen}
	}
	idx := uint32(len(t.items))
	t.items = append(t.items, entry[T]{value: v, live: true})
	return Handle{index: idx}
}

// Remove frees the slot h points to. A stale handle is ignored and false is
// returned.
func (t *Table[T]) Remove(h Handle) bool {
	if !t.Valid(h) {
		return false
	}
	e := &t.items[h.index]
	var zero T
	e.value = zero
	e.live = false
	e.gen++

	pos := sort.Search(len(t.free), func(i int) bool { return t.free[i] < h.index })
	t.free = append(t.free, 0)
	copy(t.free[pos+1:], t.free[pos:])
	t.free[pos] = h.index
	return true
}

// Valid reports whether h still resolves to a live entry.
func (t *Table[T]) Valid(h Handle) bool {
	if int(h.index) >= len(t.items) {
		return false
	}
	e := &t.items[h.index]
	return e.live && e.gen == h.gen
}

// Get resolves h. The returned pointer stays valid until the next Add.
func (t *Table[T]) Get(h Handle) (*T, error) {
	if !t.Valid(h) {
		return nil, ErrInvalidHandle
	}
	return &t.items[h.index].value, nil
}

// Len is the number of live entries.
func (t *Table[T]) Len() int { return len(t.items) - len(t.free) }

// Cap is the number of slots, live or free.
func (t *Table[T]) Cap() int { return len(t.items) }

// Live reports whether slot i holds a live entry.
func (t *Table[T]) Live(i int) bool {
	return i >= 0 && i < len(t.items) && t.items[i].live
}

// At returns slot i without any generation check. Bulk iteration only; the
// caller must check Live first.
func (t *Table[T]) At(i int) *T {
	return &t.items[i].value
}

// HandleAt builds the current handle for slot i.
func (t *Table[T]) HandleAt(i int) (Handle, bool) {
	if !t.Live(i) {
		return Nil, false
	}
	return Handle{index: uint32(i), gen: t.items[i].gen}, true
}

// Each visits live entries in slot order.
func (t *Table[T]) Each(fn func(Handle, *T)) {
	for i := range t.items {
		e := &t.items[i]
		if !e.live {
			continue
		}
		fn(Handle{index: uint32(i), gen: e.gen}, &e.value)
	}
}

// Clear frees every live slot, bumping generations so no old handle survives.
func (t *Table[T]) Clear() {
	var zero T
	t.free = t.free[:0]
	for i := len(t.items) - 1; i >= 0; i-- {
		e := &t.items[i]
		if e.live {
			e.value = zero
			e.live = false
			e.gen++
		}
		t.free = append(t.free, uint32(i))
	}
}
