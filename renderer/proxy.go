// Package renderer draws the maze and its actors with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/game"
)

// Shape is the mesh a proxy draws.
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeSphere
)

// Proxy is a raylib render proxy. The world writes its model matrix and the
// scene draws it in local space under that matrix.
type Proxy struct {
	Shape  Shape
	Size   rl.Vector3 // full extents for boxes, X is the radius for spheres
	Color  rl.Color
	Edges  rl.Color
	Role   game.Role
	model  mgl32.Mat4
	placed bool
}

// SetModelMatrix implements game.RenderProxy.
func (p *Proxy) SetModelMatrix(m mgl32.Mat4) {
	p.model = m
	p.placed = true
}

// Position returns the translation of the model matrix.
func (p *Proxy) Position() rl.Vector3 {
	t := p.model.Col(3)
	return rl.Vector3{X: t[0], Y: t[1], Z: t[2]}
}

// Draw renders the proxy. It must be called inside BeginMode3D.
func (p *Proxy) Draw() {
	if !p.placed {
		return
	}
	rl.PushMatrix()
	rl.MultMatrixf(p.model[:])
	switch p.Shape {
	case ShapeBox:
		rl.DrawCubeV(rl.Vector3{}, p.Size, p.Color)
		rl.DrawCubeWiresV(rl.Vector3{}, p.Size, p.Edges)
	case ShapeSphere:
		rl.DrawSphereEx(rl.Vector3{}, p.Size.X, 12, 16, p.Color)
		rl.DrawSphereWires(rl.Vector3{}, p.Size.X, 6, 8, p.Edges)
	}
	rl.PopMatrix()
}

// Palette maps a role to fill and edge colors.
type Palette map[game.Role][2]rl.Color

// DefaultPalette colors the maze in dim stone and the enemies brightly.
func DefaultPalette() Palette {
	return Palette{
		game.RoleFloor:    {rl.Color{R: 52, G: 56, B: 64, A: 255}, rl.Color{R: 40, G: 44, B: 50, A: 255}},
		game.RoleBoundary: {rl.Color{R: 70, G: 60, B: 80, A: 255}, rl.Color{R: 30, G: 25, B: 40, A: 255}},
		game.RoleWall:     {rl.Color{R: 120, G: 110, B: 130, A: 255}, rl.Color{R: 50, G: 45, B: 60, A: 255}},
		game.RoleHoming:   {rl.Color{R: 230, G: 120, B: 150, A: 255}, rl.Color{R: 140, G: 40, B: 70, A: 255}},
		game.RolePatrol:   {rl.Color{R: 240, G: 170, B: 60, A: 255}, rl.Color{R: 120, G: 70, B: 20, A: 255}},
	}
}

// Factory creates raylib proxies. It implements game.ProxyFactory.
type Factory struct {
	Palette Palette
	created []*Proxy
}

// NewFactory creates a factory using DefaultPalette.
func NewFactory() *Factory {
	return &Factory{Palette: DefaultPalette()}
}

// Box implements game.ProxyFactory.
func (f *Factory) Box(halfExtents mgl64.Vec3, role game.Role) game.RenderProxy {
	return f.add(&Proxy{
		Shape: ShapeBox,
		Size:  rl.Vector3{X: float32(2 * halfExtents[0]), Y: float32(2 * halfExtents[1]), Z: float32(2 * halfExtents[2])},
		Role:  role,
	})
}

// Sphere implements game.ProxyFactory.
func (f *Factory) Sphere(radius float64, role game.Role) game.RenderProxy {
	return f.add(&Proxy{
		Shape: ShapeSphere,
		Size:  rl.Vector3{X: float32(radius)},
		Role:  role,
	})
}

func (f *Factory) add(p *Proxy) *Proxy {
	colors, ok := f.Palette[p.Role]
	if !ok {
		colors = [2]rl.Color{rl.Gray, rl.DarkGray}
	}
	p.Color, p.Edges = colors[0], colors[1]
	f.created = append(f.created, p)
	return p
}

// Count returns how many proxies the factory has made.
func (f *Factory) Count() int { return len(f.created) }
