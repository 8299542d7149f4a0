// Package camera provides the first-person camera the player looks through.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/transform"
)

// FPS is a yaw/pitch camera. Angles are in degrees.
type FPS struct {
	// eye point in world coordinates
	position mgl64.Vec3

	Yaw, Pitch float64

	// Sensitivity scales mouse deltas into degrees
	Sensitivity float64

	// PitchLimit clamps pitch to [-PitchLimit, PitchLimit]
	PitchLimit float64

	// EyeOffset is added to the height passed to SetPosition
	EyeOffset float64

	FOV float64

	front, right, up mgl64.Vec3
}

// New creates a camera looking along the given yaw and pitch.
func New(yaw, pitch float64) *FPS {
	c := &FPS{
		Yaw:         yaw,
		Pitch:       pitch,
		Sensitivity: 0.1,
		PitchLimit:  89,
		FOV:         60,
	}
	c.updateVectors()
	return c
}

// NewFromConfig creates a camera with every parameter taken from cfg.
func NewFromConfig(cfg config.CameraConfig) *FPS {
	c := New(cfg.Yaw, cfg.Pitch)
	c.Sensitivity = cfg.Sensitivity
	c.PitchLimit = cfg.PitchLimit
	c.FOV = cfg.FOV
	c.EyeOffset = cfg.EyeOffset
	c.SetAngles(cfg.Yaw, cfg.Pitch)
	return c
}

// Front returns the unit view direction.
func (c *FPS) Front() mgl64.Vec3 { return c.front }

// Right returns the unit right vector.
func (c *FPS) Right() mgl64.Vec3 { return c.right }

// Up returns the unit camera up vector.
func (c *FPS) Up() mgl64.Vec3 { return c.up }

// Position returns the eye position.
func (c *FPS) Position() mgl64.Vec3 { return c.position }

// SetPosition places the eye at p raised by EyeOffset.
func (c *FPS) SetPosition(p mgl64.Vec3) {
	c.position = p.Add(mgl64.Vec3{0, c.EyeOffset, 0})
}

// ProcessMouseMovement turns the camera by a mouse delta in pixels.
// Positive dy looks up.
func (c *FPS) ProcessMouseMovement(dx, dy float64) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	c.Pitch = clamp(c.Pitch, -c.PitchLimit, c.PitchLimit)
	c.updateVectors()
}

// SetAngles sets yaw and pitch directly, clamping pitch.
func (c *FPS) SetAngles(yaw, pitch float64) {
	c.Yaw = yaw
	c.Pitch = clamp(pitch, -c.PitchLimit, c.PitchLimit)
	c.updateVectors()
}

// Target returns a point one unit ahead of the eye.
func (c *FPS) Target() mgl64.Vec3 {
	return c.position.Add(c.front)
}

// ViewMatrix returns the render-space view matrix.
func (c *FPS) ViewMatrix() mgl32.Mat4 {
	eye, target := c.position, c.Target()
	return mgl32.LookAtV(
		mgl32.Vec3{float32(eye[0]), float32(eye[1]), float32(eye[2])},
		mgl32.Vec3{float32(target[0]), float32(target[1]), float32(target[2])},
		mgl32.Vec3{float32(c.up[0]), float32(c.up[1]), float32(c.up[2])},
	)
}

func (c *FPS) updateVectors() {
	c.front = transform.Front(c.Yaw, c.Pitch)
	c.right = c.front.Cross(transform.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
