package data

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrNotFound marks a missing template, scene or component type file.
var ErrNotFound = errors.New("not found")

// ComponentDef is one component entry of a template or scene actor. Type may
// be empty in a scene actor that overrides a template component of the same
// key.
type ComponentDef struct {
	Key    string
	Type   string
	Fields map[string]any
}

// ActorDef describes an actor in a template or a scene. Components are
// sorted by key.
type ActorDef struct {
	Name       string
	Template   string
	Components []ComponentDef
}

// Component returns the definition stored under key, or nil.
func (d *ActorDef) Component(key string) *ComponentDef {
	i := sort.Search(len(d.Components), func(i int) bool { return d.Components[i].Key >= key })
	if i < len(d.Components) && d.Components[i].Key == key {
		return &d.Components[i]
	}
	return nil
}

type actorFile struct {
	Name       string                    `yaml:"name"`
	Template   string                    `yaml:"template"`
	Components map[string]map[string]any `yaml:"components"`
}

func (f *actorFile) def() (ActorDef, error) {
	d := ActorDef{Name: f.Name, Template: f.Template}
	keys := make([]string, 0, len(f.Components))
	for k := range f.Components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fields := f.Components[k]
		c := ComponentDef{Key: k, Fields: make(map[string]any, len(fields))}
		for name, v := range fields {
			if name == "type" {
				typ, ok := v.(string)
				if !ok {
					return ActorDef{}, fmt.Errorf("component %s: type must be a string", k)
				}
				c.Type = typ
				continue
			}
			c.Fields[name] = v
		}
		d.Components = append(d.Components, c)
	}
	return d, nil
}

// LoadTemplate loads an actor template. Every component must name its type.
func LoadTemplate(path string) (*ActorDef, error) {
	raw, err := readResource("template", path)
	if err != nil {
		return nil, err
	}
	var f actorFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	d, err := f.def()
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	for _, c := range d.Components {
		if c.Type == "" {
			return nil, fmt.Errorf("parse template %s: component %s has no type", path, c.Key)
		}
	}
	return &d, nil
}

func readResource(kind, path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s %s: %w", kind, filepath.Base(path), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", kind, path, err)
	}
	return raw, nil
}
