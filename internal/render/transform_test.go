package render_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/embergo/ember/internal/render"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestIdentityMatrix(t *testing.T) {
	assert.Equal(t, mgl32.Ident4(), render.Identity().Matrix())
}

func TestMatrixAppliesScaleRotateTranslate(t *testing.T) {
	tr := render.Transform{
		Translation: mgl32.Vec3{10, 0, 0},
		Rotation:    mgl32.Vec3{math.Pi / 2, 0, 0},
		Scale:       mgl32.Vec3{2, 2, 2},
	}
	// x axis scaled to 2, yawed by -90 degrees onto +z, then moved
	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assertVec3(t, mgl32.Vec3{10, 0, 2}, got)
}

func TestRotateRollAndPitch(t *testing.T) {
	// Rotation.Y is the roll about Z
	got := render.Rotate(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, math.Pi / 2, 0})
	assertVec3(t, mgl32.Vec3{0, 1, 0}, got)

	// Rotation.Z is the pitch about X
	got = render.Rotate(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, math.Pi / 2})
	assertVec3(t, mgl32.Vec3{0, 0, 1}, got)
}
