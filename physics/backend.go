// Package physics is the in-process rigid body and character controller
// backend. Bodies live in an ark ECS world owned by the Scene; gameplay code
// only reaches them through the Backend port and opaque BodyIDs.
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/brainmaze/components"
)

var (
	// ErrUnknownBody is returned for a BodyID the scene did not issue, or one
	// used with an operation its body kind does not support.
	ErrUnknownBody = errors.New("physics: unknown body")
	// ErrControllerExists is returned when a second character controller is requested.
	ErrControllerExists = errors.New("physics: controller already created")
)

// Kind is the simulation mode of a body.
type Kind uint8

const (
	KindStatic Kind = iota + 1
	KindDynamic
	KindKinematic
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindDynamic:
		return "dynamic"
	case KindKinematic:
		return "kinematic"
	}
	return "invalid"
}

// BodyID is an opaque handle to a body in a Scene. The zero value is invalid.
type BodyID struct {
	entity ecs.Entity
	kind   Kind
}

// Kind reports the body's simulation mode.
func (id BodyID) Kind() Kind { return id.kind }

// Valid reports whether id was issued by a scene.
func (id BodyID) Valid() bool { return id.kind != 0 }

// Material describes contact response shared by every body in the scene.
type Material struct {
	StaticFriction  float64
	DynamicFriction float64
	Restitution     float64
}

// ControllerDesc describes a box character controller.
type ControllerDesc struct {
	Position    mgl64.Vec3 // center
	HalfExtents mgl64.Vec3
	StepOffset  float64
}

// Backend is the port the simulation facade drives. Simulate blocks until
// the step is complete so queries afterwards see a consistent scene.
type Backend interface {
	AddStatic(pose components.Pose, col components.Collider) (BodyID, error)
	AddDynamic(pose components.Pose, col components.Collider, body components.Body, vel components.Velocity) (BodyID, error)
	AddKinematic(pose components.Pose, col components.Collider) (BodyID, error)
	CreateController(desc ControllerDesc) (*Controller, error)

	Pose(id BodyID) (components.Pose, error)
	SetPose(id BodyID, pose components.Pose) error
	Velocity(id BodyID) (components.Velocity, error)
	SetVelocity(id BodyID, vel components.Velocity) error
	AddImpulse(id BodyID, impulse mgl64.Vec3) error
	SetKinematicTarget(id BodyID, pose components.Pose) error

	Simulate(dt float64) error
	Close()
}

var _ Backend = (*Scene)(nil)
