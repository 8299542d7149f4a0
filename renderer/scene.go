package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/camera"
	"github.com/pthm-cable/brainmaze/components"
	"github.com/pthm-cable/brainmaze/game"
)

// Overlays selects the debug geometry drawn with the scene.
type Overlays struct {
	Hitboxes bool
	HitRadii bool
	Routes   bool
}

// SceneRenderer draws a World from the player's camera.
type SceneRenderer struct {
	sky       *SkyRenderer
	hitRadius float64 // homing
	patrolHit float64
	keyColor  rl.Color
}

// NewSceneRenderer creates a renderer. Hit radii are only used by overlays.
func NewSceneRenderer(screenW, screenH int32, homingHitRadius, patrolHitRadius float64) *SceneRenderer {
	return &SceneRenderer{
		sky:       NewSkyRenderer(screenW, screenH),
		hitRadius: homingHitRadius,
		patrolHit: patrolHitRadius,
		keyColor:  rl.Gold,
	}
}

// Resize updates the screen size used by the sky.
func (s *SceneRenderer) Resize(w, h int32) {
	s.sky.Resize(w, h)
}

// Camera3D converts the FPS camera to a raylib perspective camera.
func Camera3D(cam *camera.FPS) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(cam.Position()),
		Target:     vec(cam.Target()),
		Up:         vec(cam.Up()),
		Fovy:       float32(cam.FOV),
		Projection: rl.CameraPerspective,
	}
}

// Draw renders the sky, every visible proxy, the key and enabled overlays.
// threat in [0, 1] tints the sky.
func (s *SceneRenderer) Draw(w *game.World, cam *camera.FPS, threat float32, timeSec float64, ov Overlays) {
	s.sky.Draw(threat)

	rl.BeginMode3D(Camera3D(cam))

	w.ForEachVisible(func(p game.RenderProxy) {
		if rp, ok := p.(*Proxy); ok {
			rp.Draw()
		}
	})

	if key, ok := w.Key(); ok {
		s.drawKey(key.Position, timeSec)
	}

	if ov.Hitboxes {
		for _, st := range w.Statics() {
			drawCollider(st.Pose, st.Collider, hitboxColor(st.Visible))
		}
	}
	if ov.HitRadii {
		if hp, ok := w.HomingPosition(); ok {
			rl.DrawSphereWires(vec(hp), float32(s.hitRadius), 8, 12, rl.Red)
		}
		for _, pp := range w.PatrolPositions() {
			rl.DrawSphereWires(vec(pp), float32(s.patrolHit), 8, 12, rl.Orange)
		}
	}
	if ov.Routes {
		for _, p := range w.Patrols() {
			wps := p.Waypoints()
			for i := range wps {
				rl.DrawLine3D(vec(wps[i]), vec(wps[(i+1)%len(wps)]), rl.SkyBlue)
			}
			rl.DrawLine3D(vec(p.Position()), vec(p.Target()), rl.Yellow)
			rl.DrawCubeV(vec(p.Target()), rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, rl.Yellow)
		}
	}

	rl.EndMode3D()
}

// drawKey draws a spinning, bobbing key marker.
func (s *SceneRenderer) drawKey(pos mgl64.Vec3, t float64) {
	p := vec(pos)
	p.Y += float32(0.25 * math.Sin(2*t))
	rl.PushMatrix()
	rl.Translatef(p.X, p.Y, p.Z)
	rl.Rotatef(float32(math.Mod(t*90, 360)), 0, 1, 0)
	rl.DrawCubeV(rl.Vector3{}, rl.Vector3{X: 0.6, Y: 0.6, Z: 0.6}, s.keyColor)
	rl.DrawCubeWiresV(rl.Vector3{}, rl.Vector3{X: 0.6, Y: 0.6, Z: 0.6}, rl.Orange)
	rl.PopMatrix()
}

func drawCollider(pose components.Pose, col components.Collider, color rl.Color) {
	center := vec(pose.Position)
	switch col.Shape {
	case components.ShapeBox:
		h := col.HalfExtents
		rl.DrawCubeWiresV(center, rl.Vector3{X: float32(2 * h[0]), Y: float32(2 * h[1]), Z: float32(2 * h[2])}, color)
	case components.ShapeSphere:
		rl.DrawSphereWires(center, float32(col.Radius), 6, 8, color)
	}
}

// hitboxColor highlights colliders that have no visible geometry.
func hitboxColor(visible bool) rl.Color {
	if visible {
		return rl.Green
	}
	return rl.Magenta
}

func vec(v mgl64.Vec3) rl.Vector3 {
	return rl.Vector3{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}
}
