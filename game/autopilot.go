package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/camera"
	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/transform"
)

// Autopilot drives the player in headless runs: it turns the camera toward
// the key, runs forward, dashes when the homing actor gets close and jumps
// when it stops making progress.
type Autopilot struct {
	// DashDistance triggers a dash when the homing actor is closer than this.
	DashDistance float64
	// StuckTicks is the number of steps without progress before a jump.
	StuckTicks int
	// StuckDistance is the horizontal progress that resets the stuck counter.
	StuckDistance float64

	anchor mgl64.Vec3
	still  int
}

// NewAutopilot creates an autopilot that dashes at dashDistance.
func NewAutopilot(dashDistance float64) *Autopilot {
	return &Autopilot{
		DashDistance:  dashDistance,
		StuckTicks:    30,
		StuckDistance: 0.5,
	}
}

// Intent aims cam and returns the intent for the next step.
func (a *Autopilot) Intent(w *World, cam *camera.FPS) systems.Intent {
	if w.Player() == nil {
		return systems.IntentNone
	}
	pos := w.PlayerPosition()

	intent := systems.IntentNone
	if key, ok := w.Key(); ok {
		if dir, ok := transform.Horizontal(key.Position.Sub(pos)); ok {
			yaw := mgl64.RadToDeg(math.Atan2(dir[2], dir[0]))
			cam.SetAngles(yaw, 0)
			intent |= systems.IntentForward
		}
	}

	if hp, ok := w.HomingPosition(); ok && !w.PlayerHasDashed() {
		if transform.Distance(hp, pos) < a.DashDistance {
			intent |= systems.IntentDash
		}
	}

	flat := mgl64.Vec3{pos[0], 0, pos[2]}
	if transform.Distance(flat, a.anchor) > a.StuckDistance {
		a.anchor = flat
		a.still = 0
	} else {
		a.still++
	}
	if a.still >= a.StuckTicks {
		intent |= systems.IntentJump
		a.still = 0
	}
	return intent
}

// Reset forgets the progress history.
func (a *Autopilot) Reset() {
	a.anchor = mgl64.Vec3{}
	a.still = 0
}
