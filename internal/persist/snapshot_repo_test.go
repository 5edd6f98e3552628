package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/embergo/ember/internal/core/ecs"
)

func snap(names ...string) ecs.Snapshot {
	s := ecs.Snapshot{Scene: "basic", Frame: 10}
	for i, n := range names {
		s.Actors = append(s.Actors, ecs.ActorSnapshot{
			ID:         ecs.ActorID(i),
			Name:       n,
			Components: []ecs.ComponentSnapshot{{Key: "a", Type: "Health"}},
		})
	}
	return s
}

func TestDigestIgnoresFrame(t *testing.T) {
	a := snap("hero", "orc")
	b := snap("hero", "orc")
	b.Frame = 99
	assert.Equal(t, Digest(a), Digest(b))
}

func TestDigestSeesStructure(t *testing.T) {
	base := Digest(snap("hero", "orc"))
	assert.NotEqual(t, base, Digest(snap("orc", "hero")))
	assert.NotEqual(t, base, Digest(snap("hero")))

	// length prefixes keep boundaries apart
	assert.NotEqual(t, Digest(snap("ab", "c")), Digest(snap("a", "bc")))

	c := snap("hero", "orc")
	c.Actors[1].Components[0].Type = "Mana"
	assert.NotEqual(t, base, Digest(c))
}
