package ecs

import (
	"strconv"

	"github.com/embergo/ember/internal/core/slot"
)

// pendingAdd is one deferred add-component request. The actor's ID is
// captured so a request aimed at a destroyed, since reused, slot is dropped.
type pendingAdd struct {
	component Component
	actor     slot.Handle
	id        ActorID
}

// AddQueue buffers components that scripts attach during dispatch. It is
// drained only at the registry's apply barrier.
type AddQueue struct {
	count uint64
	queue []pendingAdd
}

// NextKey returns a fresh key for a runtime-added component: r0, r1, ...
func (q *AddQueue) NextKey() string {
	key := "r" + strconv.FormatUint(q.count, 10)
	q.count++
	return key
}

func (q *AddQueue) Push(actor slot.Handle, id ActorID, c Component) {
	q.queue = append(q.queue, pendingAdd{component: c, actor: actor, id: id})
}

func (q *AddQueue) Len() int { return len(q.queue) }

// drain hands over the queued batch in FIFO order and leaves an empty queue,
// so pushes made while the batch is applied land in the next one.
func (q *AddQueue) drain() []pendingAdd {
	batch := q.queue
	q.queue = nil
	return batch
}
