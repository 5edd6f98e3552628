package world

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/embergo/ember/internal/core/ecs"
	"github.com/embergo/ember/internal/core/event"
	"github.com/embergo/ember/internal/core/slot"
	coresys "github.com/embergo/ember/internal/core/system"
	"github.com/embergo/ember/internal/data"
	"github.com/embergo/ember/internal/render"
	"github.com/embergo/ember/internal/scripting"
	"github.com/embergo/ember/internal/system"
)

// SnapshotSink receives a snapshot of the active actors before a scene is
// cleared.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, s ecs.Snapshot) error
}

type Options struct {
	Resources data.Resources
	Device    render.Device
	// FrameLogInterval is the number of frames between frame-time logs.
	// Zero disables them.
	FrameLogInterval uint64
	Snapshots        SnapshotSink
}

// World owns the actor registry and every collaborator the frame needs.
// Accessed only from the game loop goroutine.
type World struct {
	ctx context.Context
	log *zap.Logger
	opt Options

	engine    *scripting.Engine
	renderer  *render.Renderer
	actors    *ecs.Registry
	bus       *event.Bus
	runner    *coresys.Runner
	templates *Templates

	scene     string
	nextScene string
	frame     uint64
	started   time.Time
	lastFrame time.Duration
	quit      bool
	fatal     error
}

func New(ctx context.Context, opt Options, log *zap.Logger) (*World, error) {
	if opt.Device == nil {
		opt.Device = render.NewHeadlessDevice()
	}
	engine, err := scripting.NewEngine(opt.Resources, log)
	if err != nil {
		return nil, err
	}
	renderer := render.NewRenderer(opt.Device, opt.Resources.MeshDir(), log)
	actors := ecs.NewRegistry(log)
	bus := event.NewBus(log)

	runner := coresys.NewRunner()
	runner.Register(system.NewStartSystem(actors))
	runner.Register(system.NewComponentQueueSystem(actors))
	runner.Register(system.NewUpdateSystem(actors))
	runner.Register(system.NewLateUpdateSystem(actors))
	runner.Register(system.NewCleanupSystem(actors))
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewRenderSystem(renderer, log))

	w := &World{
		ctx:       ctx,
		log:       log,
		opt:       opt,
		engine:    engine,
		renderer:  renderer,
		actors:    actors,
		bus:       bus,
		runner:    runner,
		templates: NewTemplates(opt.Resources, engine, renderer),
		started:   time.Now(),
	}
	w.registerBindings()
	return w, nil
}

// LoadScene clears the current scene and spawns every actor of name, in
// file order.
func (w *World) LoadScene(name string) error {
	w.clearScene()
	w.scene = name

	def, err := data.LoadScene(w.opt.Resources.ScenePath(name))
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	for i := range def.Actors {
		a, err := w.templates.CreateActor(def.Actors[i])
		if err != nil {
			return fmt.Errorf("load scene %s: %w", name, err)
		}
		w.spawn(a)
	}
	w.log.Info("scene loaded", zap.String("scene", name), zap.Int("actors", len(def.Actors)))
	w.bus.Publish(event.SceneLoaded, name)
	return nil
}

// RunTurn runs one frame: a pending scene change, the frame systems, and
// the frame counter. It reports whether the game asked to quit. A returned
// error is fatal.
func (w *World) RunTurn() (bool, error) {
	start := time.Now()
	if w.nextScene != "" {
		if err := w.LoadScene(w.nextScene); err != nil {
			return true, err
		}
	}
	w.runner.Tick(w.lastFrame)
	w.frame++
	w.lastFrame = time.Since(start)

	if n := w.opt.FrameLogInterval; n != 0 && w.frame%n == 0 {
		w.log.Info("last frame time",
			zap.Uint64("frame", w.frame),
			zap.Duration("elapsed", w.lastFrame),
			zap.Int("actors", w.actors.Len()),
		)
	}
	if w.fatal != nil {
		return true, w.fatal
	}
	return w.quit, nil
}

// Close saves a final snapshot, destroys every actor including persistent
// ones, and releases the VM and device buffers.
func (w *World) Close() {
	w.clearScene()
	var rest []slot.Handle
	w.actors.Each(func(h slot.Handle, _ *ecs.Actor) { rest = append(rest, h) })
	for _, h := range rest {
		_ = w.actors.Destroy(h)
	}
	w.runner.TickPhase(coresys.PhaseDestroy, 0)
	w.renderer.Close()
	w.engine.Close()
}

func (w *World) spawn(a *ecs.Actor) slot.Handle {
	h := w.actors.AddActor(a)
	ref := w.actorValue(h)
	for _, c := range a.Components() {
		if sc, ok := c.Behavior.(scripting.Component); ok {
			// only unknown property names fail, and "actor" is known
			_ = sc.SetField("actor", ref)
		}
	}
	return h
}

func (w *World) clearScene() {
	if w.scene != "" {
		w.bus.Publish(event.SceneUnloading, w.scene)
		w.saveSnapshot()
	}
	w.actors.ClearScene()
	w.nextScene = ""
}

func (w *World) saveSnapshot() {
	if w.opt.Snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
	defer cancel()
	if err := w.opt.Snapshots.SaveSnapshot(ctx, w.Snapshot()); err != nil {
		w.log.Warn("save scene snapshot", zap.String("scene", w.scene), zap.Error(err))
	}
}

// Snapshot captures the active actors together with the scene and frame.
func (w *World) Snapshot() ecs.Snapshot {
	s := w.actors.Snapshot()
	s.Scene = w.scene
	s.Frame = w.frame
	return s
}

func (w *World) Scene() string              { return w.scene }
func (w *World) Frame() uint64              { return w.frame }
func (w *World) Actors() *ecs.Registry      { return w.actors }
func (w *World) Renderer() *render.Renderer { return w.renderer }
func (w *World) Engine() *scripting.Engine  { return w.engine }

func (w *World) since() time.Duration { return time.Since(w.started) }
