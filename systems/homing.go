package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/physics"
	"github.com/pthm-cable/brainmaze/transform"
)

// Homing is the seeking actor. Each step pushes it toward the player with an
// impulse that grows as the hit counter rises.
type Homing struct {
	backend physics.Backend
	id      physics.BodyID
	cfg     config.HomingConfig
	spawn   components.Pose
	pose    components.Pose
}

// NewHoming wraps an existing dynamic body, moves it to spawn and gives it the
// configured spin. Only registration spins it; Reset leaves it at rest.
func NewHoming(backend physics.Backend, id physics.BodyID, spawn components.Pose, cfg config.HomingConfig) (*Homing, error) {
	if id.Kind() != physics.KindDynamic {
		return nil, fmt.Errorf("homing actor needs a dynamic body, got %s", id.Kind())
	}
	h := &Homing{backend: backend, id: id, cfg: cfg, spawn: spawn}
	if err := h.Reset(); err != nil {
		return nil, err
	}
	spin := components.Velocity{Angular: cfg.AngularVelocity.Vec()}
	if err := backend.SetVelocity(id, spin); err != nil {
		return nil, fmt.Errorf("homing spin: %w", err)
	}
	return h, nil
}

// ID returns the physics body.
func (h *Homing) ID() physics.BodyID { return h.id }

// Pose returns the pose read at the last Sync or Reset.
func (h *Homing) Pose() components.Pose { return h.pose }

// Position returns the position read at the last Sync or Reset.
func (h *Homing) Position() mgl64.Vec3 { return h.pose.Position }

// Impulse returns the impulse applied toward target for the given hit count.
// ok is false at zero distance.
func (h *Homing) Impulse(target mgl64.Vec3, hits int) (mgl64.Vec3, bool) {
	d := target.Sub(h.pose.Position)
	dist := d.Len()
	if dist == 0 {
		return mgl64.Vec3{}, false
	}
	divisor := h.cfg.ForceDivisor - hits
	if divisor < 1 {
		divisor = 1
	}
	return d.Mul(1 / (dist * float64(divisor))), true
}

// Step applies one seeking impulse toward the player.
func (h *Homing) Step(playerPos mgl64.Vec3, hits int) error {
	imp, ok := h.Impulse(playerPos, hits)
	if !ok {
		return nil
	}
	if err := h.backend.AddImpulse(h.id, imp); err != nil {
		return fmt.Errorf("homing impulse: %w", err)
	}
	return nil
}

// IsPlayerHit reports whether the player is strictly inside the hit radius.
func (h *Homing) IsPlayerHit(playerPos mgl64.Vec3) bool {
	return transform.Distance(h.pose.Position, playerPos) < h.cfg.HitRadius
}

// Sync reads the body pose after a simulation step.
func (h *Homing) Sync() error {
	pose, err := h.backend.Pose(h.id)
	if err != nil {
		return fmt.Errorf("homing pose: %w", err)
	}
	h.pose = pose
	return nil
}

// Reset moves the actor to spawn and zeroes both linear and angular velocity.
func (h *Homing) Reset() error {
	if err := h.backend.SetPose(h.id, h.spawn); err != nil {
		return fmt.Errorf("homing reset: %w", err)
	}
	if err := h.backend.SetVelocity(h.id, components.Velocity{}); err != nil {
		return fmt.Errorf("homing reset: %w", err)
	}
	return h.Sync()
}
