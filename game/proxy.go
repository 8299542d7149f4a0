package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/systems"
)

// RenderProxy receives the model matrix of a registered actor after every
// step. The world only writes to it.
type RenderProxy interface {
	SetModelMatrix(m mgl32.Mat4)
}

// View is the camera the player steers by.
type View = systems.View

// Proxy is a headless RenderProxy that keeps the last matrix it was given.
type Proxy struct {
	Model   mgl32.Mat4
	Updates int
}

// SetModelMatrix stores m.
func (p *Proxy) SetModelMatrix(m mgl32.Mat4) {
	p.Model = m
	p.Updates++
}

// Position returns the translation of the stored matrix.
func (p *Proxy) Position() mgl32.Vec3 {
	return p.Model.Col(3).Vec3()
}

// Role tells a ProxyFactory what a proxy stands for.
type Role uint8

const (
	RoleFloor Role = iota
	RoleBoundary
	RoleWall
	RoleHoming
	RolePatrol
)

func (r Role) String() string {
	switch r {
	case RoleFloor:
		return "floor"
	case RoleBoundary:
		return "boundary"
	case RoleWall:
		return "wall"
	case RoleHoming:
		return "homing"
	case RolePatrol:
		return "patrol"
	}
	return "unknown"
}

// ProxyFactory creates render proxies while a level is built.
type ProxyFactory interface {
	Box(halfExtents mgl64.Vec3, role Role) RenderProxy
	Sphere(radius float64, role Role) RenderProxy
}

// HeadlessProxies hands out plain Proxy values.
type HeadlessProxies struct{}

func (HeadlessProxies) Box(mgl64.Vec3, Role) RenderProxy { return &Proxy{} }

func (HeadlessProxies) Sphere(float64, Role) RenderProxy { return &Proxy{} }
