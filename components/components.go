// Package components defines ECS components stored in the physics scene.
package components

import "github.com/go-gl/mathgl/mgl64"

// Pose is a body's world transform.
type Pose struct {
	Position mgl64.Vec3 `inspect:"vec,fmt:%.2f"`
	Rotation mgl64.Quat `inspect:"skip"`
}

// Velocity holds linear (units/s) and angular (rad/s) velocity.
type Velocity struct {
	Linear  mgl64.Vec3 `inspect:"vec,fmt:%.2f"`
	Angular mgl64.Vec3 `inspect:"vec,fmt:%.2f"`
}

// KinematicTarget is the pose a kinematic body reaches at the next step.
type KinematicTarget struct {
	Pose
	Pending bool
}

// Static tag component for immovable colliders.
type Static struct{}

// IdentityPose returns a pose at p with no rotation.
func IdentityPose(p mgl64.Vec3) Pose {
	return Pose{Position: p, Rotation: mgl64.QuatIdent()}
}
