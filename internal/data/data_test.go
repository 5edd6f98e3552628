package data_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embergo/ember/internal/data"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadTemplateSortsComponents(t *testing.T) {
	res := data.Resources{Dir: t.TempDir()}
	write(t, res.TemplatePath("Player"), `
name: Player
components:
  b:
    type: Sprite
    image: hero.png
  a:
    type: Health
    hp: 10
    regen: 0.5
`)
	d, err := data.LoadTemplate(res.TemplatePath("Player"))
	require.NoError(t, err)
	assert.Equal(t, "Player", d.Name)
	require.Len(t, d.Components, 2)
	assert.Equal(t, "a", d.Components[0].Key)
	assert.Equal(t, "Health", d.Components[0].Type)
	assert.Equal(t, map[string]any{"hp": 10, "regen": 0.5}, d.Components[0].Fields)
	assert.Equal(t, "Sprite", d.Component("b").Type)
	assert.Nil(t, d.Component("c"))
}

func TestLoadTemplateRequiresTypes(t *testing.T) {
	res := data.Resources{Dir: t.TempDir()}
	write(t, res.TemplatePath("Bad"), "components:\n  a:\n    hp: 1\n")
	_, err := data.LoadTemplate(res.TemplatePath("Bad"))
	assert.Error(t, err)
}

func TestMissingFilesAreNotFound(t *testing.T) {
	res := data.Resources{Dir: t.TempDir()}
	_, err := data.LoadTemplate(res.TemplatePath("Ghost"))
	assert.ErrorIs(t, err, data.ErrNotFound)
	_, err = data.LoadScene(res.ScenePath("void"))
	assert.ErrorIs(t, err, data.ErrNotFound)

	assert.ErrorIs(t, data.Resources{Dir: filepath.Join(res.Dir, "nope")}.Check(), data.ErrNotFound)
	assert.NoError(t, res.Check())
}

func TestLoadSceneKeepsActorOrder(t *testing.T) {
	res := data.Resources{Dir: t.TempDir()}
	write(t, res.ScenePath("basic"), `
actors:
  - name: Hero
    template: Player
    components:
      a:
        hp: 99
      c:
        type: Model
        mesh: cube.glb
  - name: Camera
  - template: Player
`)
	s, err := data.LoadScene(res.ScenePath("basic"))
	require.NoError(t, err)
	require.Len(t, s.Actors, 3)

	hero := s.Actors[0]
	assert.Equal(t, "Hero", hero.Name)
	assert.Equal(t, "Player", hero.Template)
	require.Len(t, hero.Components, 2)
	assert.Equal(t, "", hero.Components[0].Type)
	assert.Equal(t, 99, hero.Components[0].Fields["hp"])
	assert.Equal(t, "Model", hero.Components[1].Type)

	assert.Equal(t, "Camera", s.Actors[1].Name)
	assert.Empty(t, s.Actors[1].Components)
	assert.Equal(t, "", s.Actors[2].Name)
}

func TestComponentTypeExists(t *testing.T) {
	res := data.Resources{Dir: t.TempDir()}
	write(t, res.ComponentTypePath("Health"), "Health = {}")
	assert.True(t, res.ComponentTypeExists("Health"))
	assert.False(t, res.ComponentTypeExists("Mana"))
}
