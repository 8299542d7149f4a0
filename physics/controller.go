package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	maxResolveIterations = 4
	groundNormalY        = 0.7
	stepSkin             = 1e-4
)

// CollisionFlags reports which sides of the controller touched geometry during a move.
type CollisionFlags uint8

const (
	CollisionSides CollisionFlags = 1 << iota
	CollisionUp
	CollisionDown
)

// Has reports whether all bits in mask are set.
func (f CollisionFlags) Has(mask CollisionFlags) bool {
	return f&mask == mask
}

// Controller is an upright box character controller. It collides with static
// geometry only and is moved by explicit displacements, never by the solver.
type Controller struct {
	scene      *Scene
	center     mgl64.Vec3
	half       mgl64.Vec3
	stepOffset float64
	maxStep    float64
}

func newController(s *Scene, desc ControllerDesc) *Controller {
	minHalf := math.Min(desc.HalfExtents[0], math.Min(desc.HalfExtents[1], desc.HalfExtents[2]))
	return &Controller{
		scene:      s,
		center:     desc.Position,
		half:       desc.HalfExtents,
		stepOffset: desc.StepOffset,
		maxStep:    0.5 * minHalf,
	}
}

// Position returns the controller's center.
func (c *Controller) Position() mgl64.Vec3 { return c.center }

// FootPosition returns the bottom-center point of the box.
func (c *Controller) FootPosition() mgl64.Vec3 {
	return c.center.Sub(mgl64.Vec3{0, c.half[1], 0})
}

// HalfExtents returns the box half extents.
func (c *Controller) HalfExtents() mgl64.Vec3 { return c.half }

// SetPosition teleports the controller center without collision.
func (c *Controller) SetPosition(p mgl64.Vec3) { c.center = p }

// Move displaces the controller, sliding along static geometry and climbing
// ledges up to the step offset. Displacements shorter than minDist are dropped.
func (c *Controller) Move(disp mgl64.Vec3, minDist float64) CollisionFlags {
	dist := disp.Len()
	if dist < minDist || dist == 0 {
		return 0
	}
	c.scene.ensureStatics()

	steps := 1
	if c.maxStep > 0 {
		steps = int(math.Ceil(dist / c.maxStep))
	}
	d := disp.Mul(1 / float64(steps))
	horizontal := d[0] != 0 || d[2] != 0

	var flags CollisionFlags
	for i := 0; i < steps; i++ {
		c.center = c.center.Add(d)
		flags |= c.resolve(horizontal)
	}
	return flags
}

// resolve pushes the controller out of overlapping statics, deepest contact first.
func (c *Controller) resolve(horizontal bool) CollisionFlags {
	var flags CollisionFlags
	for iter := 0; iter < maxResolveIterations; iter++ {
		ct, s, ok := c.deepestContact(c.center)
		if !ok {
			break
		}
		side := math.Abs(ct.normal[1]) < groundNormalY
		if side && horizontal && c.tryStep(s) {
			flags |= CollisionDown
			continue
		}
		c.center = c.center.Add(ct.normal.Mul(ct.depth))
		switch {
		case ct.normal[1] >= groundNormalY:
			flags |= CollisionDown
		case ct.normal[1] <= -groundNormalY:
			flags |= CollisionUp
		default:
			flags |= CollisionSides
		}
	}
	return flags
}

func (c *Controller) deepestContact(center mgl64.Vec3) (contact, *shape, bool) {
	lo, hi := center.Sub(c.half), center.Add(c.half)
	var best contact
	var bestShape *shape
	for i := range c.scene.statics {
		s := &c.scene.statics[i]
		if !s.overlapsAABB(lo, hi) {
			continue
		}
		ct, ok := aabbContact(center, c.half, s)
		if ok && (bestShape == nil || ct.depth > best.depth) {
			best, bestShape = ct, s
		}
	}
	return best, bestShape, bestShape != nil
}

// tryStep lifts the controller onto s when its top is within the step offset
// of the foot and the raised position is free.
func (c *Controller) tryStep(s *shape) bool {
	if c.stepOffset <= 0 {
		return false
	}
	rise := s.max[1] - (c.center[1] - c.half[1])
	if rise <= 0 || rise > c.stepOffset {
		return false
	}
	raised := c.center.Add(mgl64.Vec3{0, rise + stepSkin, 0})
	if _, _, blocked := c.deepestContact(raised); blocked {
		return false
	}
	c.center = raised
	return true
}
