package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/embergo/ember/internal/core/system"
	"github.com/embergo/ember/internal/render"
)

// RenderSystem uploads changed instance buffers and draws. Phase 6 (Render).
type RenderSystem struct {
	renderer *render.Renderer
	log      *zap.Logger
}

func NewRenderSystem(r *render.Renderer, log *zap.Logger) *RenderSystem {
	return &RenderSystem{renderer: r, log: log}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	if _, err := s.renderer.Frame(); err != nil {
		s.log.Error("render frame", zap.Error(err))
	}
}
