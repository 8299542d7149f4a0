package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
)

const contactEpsilon = 1e-9

var worldAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// shape is a collider resolved into world space.
type shape struct {
	kind     components.ShapeKind
	center   mgl64.Vec3
	axes     [3]mgl64.Vec3 // local axes in world space
	half     mgl64.Vec3
	radius   float64
	min, max mgl64.Vec3 // world AABB
}

func newShape(pose components.Pose, col components.Collider) shape {
	s := shape{
		kind:   col.Shape,
		center: pose.Position,
		half:   col.HalfExtents,
		radius: col.Radius,
	}
	rot := pose.Rotation
	if rot.Len() < contactEpsilon {
		rot = mgl64.QuatIdent()
	}
	for i := range worldAxes {
		s.axes[i] = rot.Rotate(worldAxes[i])
	}

	var ext mgl64.Vec3
	switch col.Shape {
	case components.ShapeSphere:
		ext = mgl64.Vec3{col.Radius, col.Radius, col.Radius}
	default:
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				ext[i] += math.Abs(s.axes[j][i]) * s.half[j]
			}
		}
	}
	s.min = s.center.Sub(ext)
	s.max = s.center.Add(ext)
	return s
}

// overlapsAABB is the broad-phase check against a world AABB.
func (s *shape) overlapsAABB(min, max mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if max[i] <= s.min[i] || min[i] >= s.max[i] {
			return false
		}
	}
	return true
}

// contact is the minimum translation that separates a moving shape from a
// static one. normal points away from the static shape.
type contact struct {
	normal mgl64.Vec3
	depth  float64
}

// aabbContact tests an axis-aligned box (center c, half extents h) against s.
// Boxes use the six face axes of the separating axis test.
func aabbContact(c, h mgl64.Vec3, s *shape) (contact, bool) {
	if s.kind == components.ShapeSphere {
		return aabbSphereContact(c, h, s.center, s.radius)
	}

	d := c.Sub(s.center)
	best := contact{depth: math.Inf(1)}
	test := func(axis mgl64.Vec3) bool {
		ra := h[0]*math.Abs(axis[0]) + h[1]*math.Abs(axis[1]) + h[2]*math.Abs(axis[2])
		var rb float64
		for j := 0; j < 3; j++ {
			rb += s.half[j] * math.Abs(s.axes[j].Dot(axis))
		}
		dist := d.Dot(axis)
		overlap := ra + rb - math.Abs(dist)
		if overlap <= contactEpsilon {
			return false
		}
		if overlap < best.depth {
			n := axis
			if dist < 0 {
				n = axis.Mul(-1)
			}
			best = contact{normal: n, depth: overlap}
		}
		return true
	}

	for _, axis := range worldAxes {
		if !test(axis) {
			return contact{}, false
		}
	}
	for _, axis := range s.axes {
		if !test(axis) {
			return contact{}, false
		}
	}
	return best, true
}

// aabbSphereContact separates a box from a static sphere.
func aabbSphereContact(c, h, center mgl64.Vec3, r float64) (contact, bool) {
	var closest mgl64.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = clamp(center[i], c[i]-h[i], c[i]+h[i])
	}
	v := closest.Sub(center)
	dist := v.Len()
	if dist >= r {
		return contact{}, false
	}
	if dist > contactEpsilon {
		return contact{normal: v.Mul(1 / dist), depth: r - dist}, true
	}

	// Sphere center inside the box: leave along the shallowest face.
	d := c.Sub(center)
	axis, depth := 0, math.Inf(1)
	for i := 0; i < 3; i++ {
		pen := h[i] - math.Abs(d[i]) + r
		if pen < depth {
			axis, depth = i, pen
		}
	}
	n := worldAxes[axis]
	if d[axis] < 0 {
		n = n.Mul(-1)
	}
	return contact{normal: n, depth: depth}, true
}

// sphereContact tests a sphere (center c, radius r) against s.
func sphereContact(c mgl64.Vec3, r float64, s *shape) (contact, bool) {
	if s.kind == components.ShapeSphere {
		v := c.Sub(s.center)
		dist := v.Len()
		sum := r + s.radius
		if dist >= sum {
			return contact{}, false
		}
		n := mgl64.Vec3{0, 1, 0}
		if dist > contactEpsilon {
			n = v.Mul(1 / dist)
		}
		return contact{normal: n, depth: sum - dist}, true
	}

	rel := c.Sub(s.center)
	var local, closest mgl64.Vec3
	for i := 0; i < 3; i++ {
		local[i] = rel.Dot(s.axes[i])
		closest[i] = clamp(local[i], -s.half[i], s.half[i])
	}
	diff := local.Sub(closest)
	dist := diff.Len()
	if dist >= r {
		return contact{}, false
	}
	if dist > contactEpsilon {
		var n mgl64.Vec3
		for i := 0; i < 3; i++ {
			n = n.Add(s.axes[i].Mul(diff[i] / dist))
		}
		return contact{normal: n, depth: r - dist}, true
	}

	axis, depth := 0, math.Inf(1)
	for i := 0; i < 3; i++ {
		pen := s.half[i] - math.Abs(local[i])
		if pen < depth {
			axis, depth = i, pen
		}
	}
	n := s.axes[axis]
	if local[axis] < 0 {
		n = n.Mul(-1)
	}
	return contact{normal: n, depth: depth + r}, true
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
