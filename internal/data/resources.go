package data

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Resources resolves game resource paths under one root directory.
type Resources struct {
	Dir string
}

func (r Resources) TemplatePath(name string) string {
	return filepath.Join(r.Dir, "actor_templates", name+".yaml")
}

func (r Resources) ScenePath(name string) string {
	return filepath.Join(r.Dir, "scenes", name+".yaml")
}

func (r Resources) ComponentTypePath(typ string) string {
	return filepath.Join(r.Dir, "component_types", typ+".lua")
}

func (r Resources) MeshDir() string {
	return filepath.Join(r.Dir, "meshes")
}

// Check verifies the root directory exists.
func (r Resources) Check() error {
	st, err := os.Stat(r.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("resources directory %s: %w", r.Dir, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("stat resources directory: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("resources path %s is not a directory", r.Dir)
	}
	return nil
}

// ComponentTypeExists reports whether a Lua file exists for typ.
func (r Resources) ComponentTypeExists(typ string) bool {
	_, err := os.Stat(r.ComponentTypePath(typ))
	return err == nil
}
