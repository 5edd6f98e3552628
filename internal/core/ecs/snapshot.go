package ecs

// Snapshot is a read-only picture of the active list: actors in list order,
// each with its components in key order.
type Snapshot struct {
	Scene  string          `json:"scene"`
	Frame  uint64          `json:"frame"`
	Actors []ActorSnapshot `json:"actors"`
}

type ActorSnapshot struct {
	ID         ActorID             `json:"id"`
	Name       string              `json:"name"`
	Components []ComponentSnapshot `json:"components"`
}

type ComponentSnapshot struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// Snapshot captures the active list. Scene and Frame are left for the caller.
func (r *Registry) Snapshot() Snapshot {
	var s Snapshot
	for idx := r.head; idx != noIndex; idx = r.node(idx).next {
		a := r.node(idx).actor
		as := ActorSnapshot{ID: a.ID, Name: a.Name}
		for _, c := range a.Components() {
			as.Components = append(as.Components, ComponentSnapshot{Key: c.Key, Type: c.Type})
		}
		s.Actors = append(s.Actors, as)
	}
	return s
}
