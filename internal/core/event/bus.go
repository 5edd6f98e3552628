package event

import (
	"go.uber.org/zap"
)

// Handler receives published messages. Handlers are compared with == when
// unsubscribing, so implementations must be comparable values (typically a
// struct of pointers identifying the owner and the function).
type Handler interface {
	Handle(message any) error
}

type scheduled struct {
	eventType string
	handler   Handler
}

// Bus delivers named events to subscribers. Publish is immediate, but
// subscribe and unsubscribe requests are queued and only take effect at
// ApplyScheduled, so a handler can never modify the list it is being called
// from.
type Bus struct {
	log          *zap.Logger
	subs         map[string][]Handler
	subscribeQ   []scheduled
	unsubscribeQ []scheduled
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		log:  log,
		subs: make(map[string][]Handler),
	}
}

// Publish calls every current subscriber of eventType in subscription order.
// A failing handler is logged and delivery continues.
func (b *Bus) Publish(eventType string, message any) {
	for _, h := range b.subs[eventType] {
		if err := h.Handle(message); err != nil {
			b.log.Error("event handler error", zap.String("event", eventType), zap.Error(err))
		}
	}
}

// ScheduleSubscribe queues h for eventType until the next ApplyScheduled.
func (b *Bus) ScheduleSubscribe(eventType string, h Handler) {
	b.subscribeQ = append(b.subscribeQ, scheduled{eventType: eventType, handler: h})
}

// ScheduleUnsubscribe queues the removal of h from eventType.
func (b *Bus) ScheduleUnsubscribe(eventType string, h Handler) {
	b.unsubscribeQ = append(b.unsubscribeQ, scheduled{eventType: eventType, handler: h})
}

// ApplyScheduled applies queued subscribes, then queued unsubscribes, each in
// FIFO order. An unsubscribe removes the first equal handler.
func (b *Bus) ApplyScheduled() {
	for _, s := range b.subscribeQ {
		b.subs[s.eventType] = append(b.subs[s.eventType], s.handler)
	}
	for _, s := range b.unsubscribeQ {
		list := b.subs[s.eventType]
		for i, h := range list {
			if h == s.handler {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(b.subs, s.eventType)
		} else {
			b.subs[s.eventType] = list
		}
	}
	b.subscribeQ = b.subscribeQ[:0]
	b.unsubscribeQ = b.unsubscribeQ[:0]
}

// Subscribers is the number of active handlers for eventType.
func (b *Bus) Subscribers(eventType string) int { return len(b.subs[eventType]) }

// Pending is the number of queued subscribe and unsubscribe requests.
func (b *Bus) Pending() int { return len(b.subscribeQ) + len(b.unsubscribeQ) }
