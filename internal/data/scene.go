package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SceneDef is the ordered list of actors a scene spawns.
type SceneDef struct {
	Actors []ActorDef
}

type sceneFile struct {
	Actors []actorFile `yaml:"actors"`
}

// LoadScene loads a scene file.
func LoadScene(path string) (*SceneDef, error) {
	raw, err := readResource("scene", path)
	if err != nil {
		return nil, err
	}
	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	s := &SceneDef{Actors: make([]ActorDef, 0, len(f.Actors))}
	for i := range f.Actors {
		d, err := f.Actors[i].def()
		if err != nil {
			return nil, fmt.Errorf("parse scene %s: actor %d: %w", path, i, err)
		}
		s.Actors = append(s.Actors, d)
	}
	return s, nil
}
