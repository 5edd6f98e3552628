package world

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/embergo/ember/internal/core/ecs"
	"github.com/embergo/ember/internal/data"
	"github.com/embergo/ember/internal/render"
	"github.com/embergo/ember/internal/scripting"
)

// templateComponent is one component of a loaded template. Exactly one of
// table and model is set.
type templateComponent struct {
	key   string
	typ   string
	table *lua.LTable
	model *render.Model
}

type actorTemplate struct {
	name       string
	components []templateComponent // sorted by key
}

func (t *actorTemplate) component(key string) *templateComponent {
	for i := range t.components {
		if t.components[i].key == key {
			return &t.components[i]
		}
	}
	return nil
}

// Templates loads actor templates on first use and builds actors from
// templates and scene definitions.
type Templates struct {
	res      data.Resources
	engine   *scripting.Engine
	renderer *render.Renderer
	loaded   map[string]*actorTemplate
}

func NewTemplates(res data.Resources, engine *scripting.Engine, renderer *render.Renderer) *Templates {
	return &Templates{
		res:      res,
		engine:   engine,
		renderer: renderer,
		loaded:   map[string]*actorTemplate{"": {}},
	}
}

func (t *Templates) load(name string) (*actorTemplate, error) {
	if templ, ok := t.loaded[name]; ok {
		return templ, nil
	}
	def, err := data.LoadTemplate(t.res.TemplatePath(name))
	if err != nil {
		return nil, err
	}
	templ := &actorTemplate{name: def.Name}
	for _, c := range def.Components {
		tc := templateComponent{key: c.Key, typ: c.Type}
		if c.Type == render.ModelType {
			m := render.NewModel(t.renderer)
			if err := t.setFields(t.engine.NewModelBehavior(m, ""), c.Fields); err != nil {
				return nil, fmt.Errorf("template %s: component %s: %w", name, c.Key, err)
			}
			tc.model = m
		} else {
			tbl, err := t.engine.NewTemplateComponent(c.Type, c.Fields)
			if err != nil {
				return nil, fmt.Errorf("template %s: component %s: %w", name, c.Key, err)
			}
			tc.table = tbl
		}
		templ.components = append(templ.components, tc)
	}
	t.loaded[name] = templ
	return templ, nil
}

func (t *Templates) setFields(c scripting.Component, fields map[string]any) error {
	for k, v := range fields {
		if err := c.SetField(k, scripting.ToLua(t.engine.VM(), v)); err != nil {
			return err
		}
	}
	return nil
}

// instance creates a component of an actor from a template component.
func (t *Templates) instance(tc *templateComponent) scripting.Component {
	if tc.model != nil {
		return t.engine.NewModelBehavior(tc.model.Clone(), tc.key)
	}
	return t.engine.NewBehavior(t.engine.Derive(tc.table, tc.key))
}

// NewComponent creates a fresh component of typ, as added from a script.
func (t *Templates) NewComponent(typ, key string) (scripting.Component, error) {
	if typ == render.ModelType {
		return t.engine.NewModelBehavior(render.NewModel(t.renderer), key), nil
	}
	tbl, err := t.engine.NewComponent(typ, key)
	if err != nil {
		return nil, err
	}
	return t.engine.NewBehavior(tbl), nil
}

// CreateTemplateActor builds an actor holding an instance of every
// component of the named template.
func (t *Templates) CreateTemplateActor(name string) (*ecs.Actor, error) {
	templ, err := t.load(name)
	if err != nil {
		return nil, err
	}
	a := ecs.NewActor(templ.name)
	for i := range templ.components {
		tc := &templ.components[i]
		if _, err := a.AddComponent(ecs.Component{Key: tc.key, Type: tc.typ, Behavior: t.instance(tc)}); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// CreateActor builds a scene actor. Components of the scene definition
// override template components with the same key; their fields are set on
// top of the template's. The template's types win over the scene's.
func (t *Templates) CreateActor(def data.ActorDef) (*ecs.Actor, error) {
	templ, err := t.load(def.Template)
	if err != nil {
		return nil, err
	}
	name := def.Name
	if name == "" {
		name = templ.name
	}
	if len(def.Components) == 0 {
		a, err := t.CreateTemplateActor(def.Template)
		if err != nil {
			return nil, err
		}
		a.Name = name
		return a, nil
	}

	keys := make([]string, 0, len(def.Components)+len(templ.components))
	for _, c := range def.Components {
		keys = append(keys, c.Key)
	}
	for _, tc := range templ.components {
		if def.Component(tc.key) == nil {
			keys = append(keys, tc.key)
		}
	}

	a := ecs.NewActor(name)
	for _, key := range keys {
		var comp scripting.Component
		var typ string
		if tc := templ.component(key); tc != nil {
			typ = tc.typ
			comp = t.instance(tc)
		} else {
			typ = def.Component(key).Type
			if typ == "" {
				return nil, fmt.Errorf("actor %s: component %s has no type", name, key)
			}
			if comp, err = t.NewComponent(typ, key); err != nil {
				return nil, fmt.Errorf("actor %s: %w", name, err)
			}
		}
		if cd := def.Component(key); cd != nil {
			if err := t.setFields(comp, cd.Fields); err != nil {
				return nil, fmt.Errorf("actor %s: component %s: %w", name, key, err)
			}
		}
		if _, err := a.AddComponent(ecs.Component{Key: key, Type: typ, Behavior: comp}); err != nil {
			return nil, err
		}
	}
	return a, nil
}
