package systems

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/physics"
	"github.com/pthm-cable/brainmaze/transform"
)

// ErrTooFewWaypoints is returned for a patrol path with fewer than two points.
var ErrTooFewWaypoints = errors.New("patrol needs at least two waypoints")

// Patrol drives a kinematic body around a closed waypoint loop. Each actor
// owns its own target index.
type Patrol struct {
	backend physics.Backend
	id      physics.BodyID
	cfg     config.PatrolConfig

	spawn       components.Pose
	waypoints   []mgl64.Vec3
	baseForward mgl64.Vec3

	index    int
	position mgl64.Vec3
	rotation mgl64.Quat
}

// NewPatrol wraps an existing kinematic body.
func NewPatrol(backend physics.Backend, id physics.BodyID, spawn components.Pose, waypoints []mgl64.Vec3, cfg config.PatrolConfig) (*Patrol, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewWaypoints, len(waypoints))
	}
	if id.Kind() != physics.KindKinematic {
		return nil, fmt.Errorf("patrol actor needs a kinematic body, got %s", id.Kind())
	}
	base := waypoints[1].Sub(waypoints[0])
	if base.Len() == 0 {
		base = mgl64.Vec3{0, 0, 1}
	}
	p := &Patrol{
		backend:     backend,
		id:          id,
		cfg:         cfg,
		spawn:       spawn,
		waypoints:   append([]mgl64.Vec3(nil), waypoints...),
		baseForward: base.Normalize(),
	}
	if err := p.Reset(); err != nil {
		return nil, err
	}
	return p, nil
}

// ID returns the physics body.
func (p *Patrol) ID() physics.BodyID { return p.id }

// Index returns the current target waypoint index.
func (p *Patrol) Index() int { return p.index }

// Target returns the current target waypoint.
func (p *Patrol) Target() mgl64.Vec3 { return p.waypoints[p.index] }

// Waypoints returns the route. Callers must not modify it.
func (p *Patrol) Waypoints() []mgl64.Vec3 { return p.waypoints }

// Position returns the commanded position.
func (p *Patrol) Position() mgl64.Vec3 { return p.position }

// Rotation returns the commanded facing.
func (p *Patrol) Rotation() mgl64.Quat { return p.rotation }

// Pose returns the commanded pose.
func (p *Patrol) Pose() components.Pose {
	return components.Pose{Position: p.position, Rotation: p.rotation}
}

// Step moves the actor toward its target at the configured speed and hands
// the result to the backend as a kinematic target.
func (p *Patrol) Step(dt float64) error {
	target := p.waypoints[p.index]
	delta := target.Sub(p.position)
	dist := delta.Len()

	if dist > 0 {
		dir := delta.Mul(1 / dist)
		p.rotation = transform.RotationBetween(p.baseForward, dir)

		travel := p.cfg.Speed * dt
		if travel >= dist {
			p.position = target
		} else {
			p.position = p.position.Add(dir.Mul(travel))
		}
	}

	if err := p.backend.SetKinematicTarget(p.id, p.Pose()); err != nil {
		return fmt.Errorf("patrol target: %w", err)
	}

	if transform.Distance(p.position, target) < p.cfg.WaypointEpsilon {
		p.index = (p.index + 1) % len(p.waypoints)
	}
	return nil
}

// IsPlayerHit reports whether the player is strictly inside the hit radius.
func (p *Patrol) IsPlayerHit(playerPos mgl64.Vec3) bool {
	return transform.Distance(p.position, playerPos) < p.cfg.HitRadius
}

// Reset returns the actor to spawn and targets the first waypoint.
func (p *Patrol) Reset() error {
	p.index = 0
	p.position = p.spawn.Position
	p.rotation = p.spawn.Rotation
	if p.rotation.Len() == 0 {
		p.rotation = mgl64.QuatIdent()
	}
	if err := p.backend.SetPose(p.id, p.Pose()); err != nil {
		return fmt.Errorf("patrol reset: %w", err)
	}
	return nil
}
