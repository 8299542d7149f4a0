// Package transform converts between render-space model matrices and
// physics-space poses, and holds the small vector helpers shared by the
// camera and the actor models.
package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
)

// WorldUp is the +Y axis.
var WorldUp = mgl64.Vec3{0, 1, 0}

const epsilon = 1e-9

// PositionFromModel returns the translation column of a model matrix.
func PositionFromModel(m mgl32.Mat4) mgl64.Vec3 {
	c := m.Col(3)
	return mgl64.Vec3{float64(c[0]), float64(c[1]), float64(c[2])}
}

// RotationFromModel returns the orientation encoded in the upper 3x3 of m.
// Per-axis scale is divided out first so scaled models still yield a unit quaternion.
func RotationFromModel(m mgl32.Mat4) mgl64.Quat {
	var r mgl64.Mat4
	for col := 0; col < 3; col++ {
		axis := mgl64.Vec3{float64(m.At(0, col)), float64(m.At(1, col)), float64(m.At(2, col))}
		l := axis.Len()
		if l < epsilon {
			return mgl64.QuatIdent()
		}
		axis = axis.Mul(1 / l)
		r.Set(0, col, axis[0])
		r.Set(1, col, axis[1])
		r.Set(2, col, axis[2])
	}
	r.Set(3, 3, 1)
	return mgl64.Mat4ToQuat(r).Normalize()
}

// PoseFromModel decomposes a model matrix into a physics pose.
func PoseFromModel(m mgl32.Mat4) components.Pose {
	return components.Pose{
		Position: PositionFromModel(m),
		Rotation: RotationFromModel(m),
	}
}

// ModelFromPose builds a render-space model matrix (translate * rotate).
func ModelFromPose(p components.Pose) mgl32.Mat4 {
	m := mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2]).Mul4(p.Rotation.Mat4())
	return toMat32(m)
}

// ModelFromPoseScaled is ModelFromPose with a trailing non-uniform scale.
func ModelFromPoseScaled(p components.Pose, scale mgl64.Vec3) mgl32.Mat4 {
	m := mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2]).
		Mul4(p.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
	return toMat32(m)
}

func toMat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

// Front returns the unit view direction for yaw and pitch given in degrees.
func Front(yawDeg, pitchDeg float64) mgl64.Vec3 {
	yaw := mgl64.DegToRad(yawDeg)
	pitch := mgl64.DegToRad(pitchDeg)
	f := mgl64.Vec3{
		math.Cos(yaw) * math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw) * math.Cos(pitch),
	}
	return f.Normalize()
}

// Horizontal projects v onto the XZ plane and normalizes it.
// ok is false when the projection is degenerate.
func Horizontal(v mgl64.Vec3) (dir mgl64.Vec3, ok bool) {
	h := mgl64.Vec3{v[0], 0, v[2]}
	l := h.Len()
	if l < epsilon {
		return mgl64.Vec3{}, false
	}
	return h.Mul(1 / l), true
}

// RotationBetween returns the rotation taking unit vector from onto unit vector to.
// Parallel inputs give the identity and antiparallel inputs a half turn about WorldUp
// (or about X when the inputs are vertical).
func RotationBetween(from, to mgl64.Vec3) mgl64.Quat {
	d := clamp(from.Dot(to), -1, 1)
	if d > 1-1e-9 {
		return mgl64.QuatIdent()
	}
	if d < -1+1e-9 {
		axis := WorldUp
		if math.Abs(from.Dot(WorldUp)) > 1-1e-6 {
			axis = mgl64.Vec3{1, 0, 0}
		}
		return mgl64.QuatRotate(math.Pi, axis)
	}
	axis := from.Cross(to).Normalize()
	return mgl64.QuatRotate(math.Acos(d), axis)
}

// Distance returns |a - b|.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
