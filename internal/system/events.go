package system

import (
	"time"

	"github.com/embergo/ember/internal/core/event"
	coresys "github.com/embergo/ember/internal/core/system"
)

// EventSystem applies subscriptions scheduled during the frame.
// Phase 5 (Events).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.ApplyScheduled()
}
