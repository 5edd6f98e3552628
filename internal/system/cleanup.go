package system

import (
	"time"

	"github.com/embergo/ember/internal/core/ecs"
	coresys "github.com/embergo/ember/internal/core/system"
)

// CleanupSystem runs the destroy barrier at frame end: pending component
// destroys, then destroyed actors. Phase 4 (Destroy).
type CleanupSystem struct {
	actors *ecs.Registry
}

func NewCleanupSystem(actors *ecs.Registry) *CleanupSystem {
	return &CleanupSystem{actors: actors}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseDestroy }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.actors.CallDestroy()
}
