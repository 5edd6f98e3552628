package system

import (
	"time"

	"github.com/embergo/ember/internal/core/ecs"
	coresys "github.com/embergo/ember/internal/core/system"
)

// StartSystem runs OnStart for actors added since the previous frame.
// Phase 0 (Start).
type StartSystem struct {
	actors *ecs.Registry
}

func NewStartSystem(actors *ecs.Registry) *StartSystem {
	return &StartSystem{actors: actors}
}

func (s *StartSystem) Phase() coresys.Phase { return coresys.PhaseStart }

func (s *StartSystem) Update(_ time.Duration) {
	s.actors.CallNewActorStart()
}

// ComponentQueueSystem attaches components added from scripts during the
// previous frame. Phase 1 (ApplyQueue).
type ComponentQueueSystem struct {
	actors *ecs.Registry
}

func NewComponentQueueSystem(actors *ecs.Registry) *ComponentQueueSystem {
	return &ComponentQueueSystem{actors: actors}
}

func (s *ComponentQueueSystem) Phase() coresys.Phase { return coresys.PhaseApplyQueue }

func (s *ComponentQueueSystem) Update(_ time.Duration) {
	s.actors.ApplyQueue()
}

// UpdateSystem dispatches OnUpdate. Phase 2 (Update).
type UpdateSystem struct {
	actors *ecs.Registry
}

func NewUpdateSystem(actors *ecs.Registry) *UpdateSystem {
	return &UpdateSystem{actors: actors}
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(_ time.Duration) {
	s.actors.CallUpdate()
}

// LateUpdateSystem dispatches OnLateUpdate. Phase 3 (LateUpdate).
type LateUpdateSystem struct {
	actors *ecs.Registry
}

func NewLateUpdateSystem(actors *ecs.Registry) *LateUpdateSystem {
	return &LateUpdateSystem{actors: actors}
}

func (s *LateUpdateSystem) Phase() coresys.Phase { return coresys.PhaseLateUpdate }

func (s *LateUpdateSystem) Update(_ time.Duration) {
	s.actors.CallLateUpdate()
}
