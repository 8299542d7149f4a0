// Package systems contains the per-step actor logic driven by the game world.
package systems

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/physics"
	"github.com/pthm-cable/brainmaze/transform"
)

// Intent is the set of movement requests for one step.
type Intent uint8

const (
	IntentForward Intent = 1 << iota
	IntentBackward
	IntentLeft
	IntentRight
	IntentJump
	IntentDash

	IntentNone Intent = 0
)

// Has reports whether all bits in mask are set.
func (i Intent) Has(mask Intent) bool {
	return i&mask == mask
}

// GroundState tracks whether the player is standing or in the air.
type GroundState uint8

const (
	Grounded GroundState = iota
	Airborne
)

func (s GroundState) String() string {
	if s == Airborne {
		return "airborne"
	}
	return "grounded"
}

// DashState is the dash ability phase.
type DashState uint8

const (
	DashReady DashState = iota
	Dashing
	DashCooldown
)

func (s DashState) String() string {
	switch s {
	case Dashing:
		return "dashing"
	case DashCooldown:
		return "cooldown"
	}
	return "ready"
}

// View is the camera the player steers by and writes its position back to.
type View interface {
	Front() mgl64.Vec3
	Right() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
}

// Mover is the character controller the player drives.
type Mover interface {
	Move(disp mgl64.Vec3, minDist float64) physics.CollisionFlags
	Position() mgl64.Vec3
	FootPosition() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
}

// PlayerStep reports what happened during one Step.
type PlayerStep struct {
	Flags  physics.CollisionFlags
	Jumped bool
	Dashed bool
	Landed bool
}

// Player is the first-person character state machine.
type Player struct {
	cfg   config.PlayerConfig
	ctrl  Mover
	view  View
	spawn mgl64.Vec3

	Ground           GroundState `inspect:"label"`
	Dash             DashState   `inspect:"label"`
	VerticalVelocity float64     `inspect:"bar,min:-25,max:25,fmt:%.1f"`

	airborneTime float64
	dashTime     float64
}

// NewPlayer creates a grounded player at the controller's current position.
func NewPlayer(cfg config.PlayerConfig, ctrl Mover, view View) *Player {
	p := &Player{
		cfg:   cfg,
		ctrl:  ctrl,
		view:  view,
		spawn: ctrl.Position(),
	}
	p.Reset()
	return p
}

// Position returns the controller center.
func (p *Player) Position() mgl64.Vec3 { return p.ctrl.Position() }

// FootPosition returns the bottom of the controller.
func (p *Player) FootPosition() mgl64.Vec3 { return p.ctrl.FootPosition() }

// Spawn returns the reset position.
func (p *Player) Spawn() mgl64.Vec3 { return p.spawn }

// HasDashed reports whether a dash is active or cooling down.
func (p *Player) HasDashed() bool { return p.Dash != DashReady }

// SpeedFactor is the horizontal multiplier currently in effect.
func (p *Player) SpeedFactor() float64 {
	if p.Dash == Dashing {
		return p.cfg.DashFactor
	}
	return 1
}

// Step advances the player by dt with a single controller displacement.
func (p *Player) Step(intent Intent, dt float64) PlayerStep {
	var res PlayerStep

	p.advanceDash(dt)
	if intent.Has(IntentDash) && p.Dash == DashReady {
		p.Dash = Dashing
		p.dashTime = 0
		res.Dashed = true
	}

	disp := p.horizontal(intent).Mul(p.cfg.Speed * dt * p.SpeedFactor())

	switch p.Ground {
	case Grounded:
		if intent.Has(IntentJump) {
			p.VerticalVelocity = p.cfg.JumpVelocity
			p.Ground = Airborne
			p.airborneTime = 0
			res.Jumped = true
		} else {
			p.VerticalVelocity = -p.cfg.GroundStickVelocity
		}
	case Airborne:
		p.airborneTime += dt
		p.VerticalVelocity -= p.cfg.Gravity * dt
		if p.VerticalVelocity < -p.cfg.MaxFallSpeed {
			p.VerticalVelocity = -p.cfg.MaxFallSpeed
		}
	}
	disp[1] = p.VerticalVelocity * dt

	res.Flags = p.ctrl.Move(disp, p.cfg.MinMoveDistance)
	foot := p.ctrl.FootPosition()[1]

	switch p.Ground {
	case Airborne:
		if res.Flags.Has(physics.CollisionUp) && p.VerticalVelocity > 0 {
			p.VerticalVelocity = 0
		}
		descending := p.VerticalVelocity <= 0
		landed := descending && (res.Flags.Has(physics.CollisionDown) || foot <= p.cfg.GroundFootHeight)
		if landed || p.airborneTime >= p.cfg.AirborneTimeout {
			p.land()
			res.Landed = true
		}
	case Grounded:
		moved := disp.Len() >= p.cfg.MinMoveDistance
		if moved && !res.Flags.Has(physics.CollisionDown) && foot > p.cfg.GroundFootHeight {
			p.Ground = Airborne
			p.airborneTime = 0
			p.VerticalVelocity = 0
		}
	}

	p.view.SetPosition(p.ctrl.Position())
	return res
}

// Reset returns the player to spawn, grounded, with the dash ready.
func (p *Player) Reset() {
	p.ctrl.SetPosition(p.spawn)
	p.Ground = Grounded
	p.Dash = DashReady
	p.VerticalVelocity = -p.cfg.GroundStickVelocity
	p.airborneTime = 0
	p.dashTime = 0
	p.view.SetPosition(p.spawn)
}

func (p *Player) land() {
	p.Ground = Grounded
	p.airborneTime = 0
	p.VerticalVelocity = -p.cfg.GroundStickVelocity
}

// advanceDash runs the dash timers. The cooldown is measured from the dash start.
func (p *Player) advanceDash(dt float64) {
	if p.Dash == DashReady {
		return
	}
	p.dashTime += dt
	if p.Dash == Dashing && p.dashTime >= p.cfg.DashDuration {
		p.Dash = DashCooldown
	}
	if p.Dash == DashCooldown && p.dashTime >= p.cfg.DashCooldown {
		p.Dash = DashReady
		p.dashTime = 0
	}
}

// horizontal sums the requested directions on the ground plane. The result
// is not normalized, so diagonal input is faster, matching per-key movement.
func (p *Player) horizontal(intent Intent) mgl64.Vec3 {
	var dir mgl64.Vec3
	front, okFront := transform.Horizontal(p.view.Front())
	right, okRight := transform.Horizontal(p.view.Right())
	if okFront {
		if intent.Has(IntentForward) {
			dir = dir.Add(front)
		}
		if intent.Has(IntentBackward) {
			dir = dir.Sub(front)
		}
	}
	if okRight {
		if intent.Has(IntentRight) {
			dir = dir.Add(right)
		}
		if intent.Has(IntentLeft) {
			dir = dir.Sub(right)
		}
	}
	return dir
}
