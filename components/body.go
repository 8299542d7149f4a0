package components

import "github.com/go-gl/mathgl/mgl64"

// ShapeKind identifies a collider's geometry.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	}
	return "unknown"
}

// Collider defines a body's collision shape in its local frame.
// HalfExtents applies to boxes and Radius to spheres.
type Collider struct {
	Shape       ShapeKind  `inspect:"label"`
	HalfExtents mgl64.Vec3 `inspect:"vec,fmt:%.2f"`
	Radius      float64    `inspect:"label,fmt:%.2f"`
}

// Body holds mass properties of a dynamic body.
type Body struct {
	Mass           float64 `inspect:"label,fmt:%.2f"`
	LinearDamping  float64 `inspect:"skip"`
	AngularDamping float64 `inspect:"skip"`
	GravityEnabled bool    `inspect:"label"`
}

// InvMass returns 1/Mass, or 0 for non-positive mass.
func (b Body) InvMass() float64 {
	if b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}
