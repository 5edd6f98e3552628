package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseStart      Phase = iota // 0: start actors added since last frame
	PhaseApplyQueue              // 1: attach queued components, start them
	PhaseUpdate                  // 2: OnUpdate over the active list
	PhaseLateUpdate              // 3: OnLateUpdate over the active list
	PhaseDestroy                 // 4: destroy callbacks, slot reclamation
	PhaseEvents                  // 5: apply scheduled subscriptions
	PhaseRender                  // 6: repack instance buffers, draw
)

var phaseNames = [...]string{"start", "apply_queue", "update", "late_update", "destroy", "events", "render"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
