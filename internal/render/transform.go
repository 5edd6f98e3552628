package render

import "github.com/go-gl/mathgl/mgl32"

// Transform is the placement of one model instance. Rotation holds yaw,
// pitch and roll in radians, in that order.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Scale       mgl32.Vec3
}

// Identity is the transform with no translation, no rotation and unit scale.
func Identity() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix is translate * rotate * scale. The rotation applies yaw about Y
// (negated), then pitch about X, then roll about Z, with the pitch and roll
// components taken from Rotation's Z and Y.
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(YawPitchRoll(-t.Rotation.X(), t.Rotation.Z(), t.Rotation.Y())).Mul4(scale)
}

// YawPitchRoll builds Ry(yaw) * Rx(pitch) * Rz(roll).
func YawPitchRoll(yaw, pitch, roll float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(yaw).Mul4(mgl32.HomogRotate3DX(pitch)).Mul4(mgl32.HomogRotate3DZ(roll))
}

// Rotate applies the rotation described by rot to v.
func Rotate(v, rot mgl32.Vec3) mgl32.Vec3 {
	return YawPitchRoll(-rot.X(), rot.Z(), rot.Y()).Mul4x1(v.Vec4(1)).Vec3()
}
