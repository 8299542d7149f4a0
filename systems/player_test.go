package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/physics"
)

const stepDT = 1.0 / 60.0

// restHeight is the controller center when standing on the test floor.
const restHeight = 1.5 + 1.75

type fakeView struct {
	front, right mgl64.Vec3
	pos          mgl64.Vec3
}

func (v *fakeView) Front() mgl64.Vec3 { return v.front }
func (v *fakeView) Right() mgl64.Vec3 { return v.right }
func (v *fakeView) SetPosition(p mgl64.Vec3) { v.pos = p }

func newFakeView() *fakeView {
	return &fakeView{front: mgl64.Vec3{0, 0, -1}, right: mgl64.Vec3{1, 0, 0}}
}

// vecNear compares component-wise with an absolute tolerance.
func vecNear(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func testScene(t *testing.T) *physics.Scene {
	t.Helper()
	s := physics.NewScene(physics.SceneConfig{Workers: 1})
	t.Cleanup(s.Close)
	floor := components.Collider{Shape: components.ShapeBox, HalfExtents: mgl64.Vec3{50, 0.5, 50}}
	if _, err := s.AddStatic(components.IdentityPose(mgl64.Vec3{0, 1, 0}), floor); err != nil {
		t.Fatalf("adding floor: %v", err)
	}
	return s
}

func newTestPlayer(t *testing.T, spawn mgl64.Vec3) (*Player, *fakeView) {
	t.Helper()
	cfg := testConfig(t)
	s := testScene(t)
	ctrl, err := s.CreateController(physics.ControllerDesc{
		Position:    spawn,
		HalfExtents: cfg.Player.HalfExtents.Vec(),
		StepOffset:  cfg.Player.StepOffset,
	})
	if err != nil {
		t.Fatalf("creating controller: %v", err)
	}
	view := newFakeView()
	return NewPlayer(cfg.Player, ctrl, view), view
}

// fakeMover moves freely and never reports contact.
type fakeMover struct {
	center mgl64.Vec3
	half   float64
}

func (m *fakeMover) Move(disp mgl64.Vec3, minDist float64) physics.CollisionFlags {
	if disp.Len() >= minDist {
		m.center = m.center.Add(disp)
	}
	return 0
}
func (m *fakeMover) Position() mgl64.Vec3 { return m.center }
func (m *fakeMover) FootPosition() mgl64.Vec3 { return m.center.Sub(mgl64.Vec3{0, m.half, 0}) }
func (m *fakeMover) SetPosition(p mgl64.Vec3) { m.center = p }

// ---------- Grounding ----------

func TestPlayer_SettlesOnFloor(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{"30hz", 1.0 / 30},
		{"60hz", 1.0 / 60},
		{"144hz", 1.0 / 144},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, view := newTestPlayer(t, mgl64.Vec3{0, 6, 0})
			steps := int(5 / tt.dt)
			for i := 0; i < steps; i++ {
				p.Step(IntentNone, tt.dt)
				y := p.Position()[1]
				if math.IsNaN(y) || math.IsInf(y, 0) {
					t.Fatalf("step %d: non-finite height %v", i, y)
				}
			}

			if math.Abs(p.Position()[1]-restHeight) > 1e-3 {
				t.Errorf("expected center height %.3f, got %.4f", restHeight, p.Position()[1])
			}
			if p.Ground != Grounded {
				t.Errorf("expected grounded, got %s", p.Ground)
			}
			if p.VerticalVelocity != -p.cfg.GroundStickVelocity {
				t.Errorf("expected stick velocity %.3f, got %.3f", -p.cfg.GroundStickVelocity, p.VerticalVelocity)
			}
			if view.pos != p.Position() {
				t.Errorf("view not updated: view %v, controller %v", view.pos, p.Position())
			}
		})
	}
}

func TestPlayer_JumpAndLand(t *testing.T) {
	p, _ := newTestPlayer(t, mgl64.Vec3{0, restHeight, 0})
	p.Step(IntentNone, stepDT)

	res := p.Step(IntentJump, stepDT)
	if !res.Jumped {
		t.Fatal("expected jump from the ground")
	}
	if p.Ground != Airborne {
		t.Fatalf("expected airborne after jump, got %s", p.Ground)
	}
	if p.Position()[1] <= restHeight {
		t.Errorf("expected upward motion, got height %.3f", p.Position()[1])
	}

	// a second jump in the air does nothing
	vy := p.VerticalVelocity
	if res := p.Step(IntentJump, stepDT); res.Jumped {
		t.Error("jumped while airborne")
	}
	if p.VerticalVelocity >= vy {
		t.Errorf("expected gravity to reduce vertical velocity, %.3f -> %.3f", vy, p.VerticalVelocity)
	}

	landed := false
	var peak float64
	for i := 0; i < 120; i++ {
		peak = math.Max(peak, p.Position()[1])
		if p.Step(IntentNone, stepDT).Landed {
			landed = true
			break
		}
	}
	if !landed {
		t.Fatal("expected to land within two seconds")
	}
	if peak < restHeight+4 {
		t.Errorf("expected jump apex above %.2f, got %.2f", restHeight+4, peak)
	}
	if math.Abs(p.Position()[1]-restHeight) > 0.2 {
		t.Errorf("expected to land near %.2f, got %.3f", restHeight, p.Position()[1])
	}
}

func TestPlayer_FallSpeedClamped(t *testing.T) {
	cfg := testConfig(t)
	m := &fakeMover{center: mgl64.Vec3{0, 500, 0}, half: 1.75}
	p := NewPlayer(cfg.Player, m, newFakeView())

	for i := 0; i < 60; i++ {
		p.Step(IntentNone, stepDT)
		if p.VerticalVelocity < -cfg.Player.MaxFallSpeed {
			t.Fatalf("step %d: vertical velocity %.3f below -%.3f", i, p.VerticalVelocity, cfg.Player.MaxFallSpeed)
		}
	}
}

func TestPlayer_AirborneTimeoutForcesGrounded(t *testing.T) {
	cfg := testConfig(t)
	m := &fakeMover{center: mgl64.Vec3{0, 500, 0}, half: 1.75}
	p := NewPlayer(cfg.Player, m, newFakeView())

	p.Step(IntentNone, stepDT)
	if p.Ground != Airborne {
		t.Fatalf("expected to leave the ground with no support, got %s", p.Ground)
	}

	limit := int(cfg.Player.AirborneTimeout/stepDT) + 5
	for i := 0; i < limit; i++ {
		if p.Step(IntentNone, stepDT).Landed {
			if float64(i+1)*stepDT < cfg.Player.AirborneTimeout-stepDT {
				t.Errorf("forced landing too early at step %d", i)
			}
			return
		}
	}
	t.Errorf("expected forced landing within %d steps", limit)
}

// ---------- Dash ----------

func TestPlayer_DashBoostsThenCoolsDown(t *testing.T) {
	p, _ := newTestPlayer(t, mgl64.Vec3{0, restHeight, 0})
	p.Step(IntentNone, stepDT)

	base := p.cfg.Speed * stepDT
	boosted := base * p.cfg.DashFactor

	stepZ := func(intent Intent) (float64, PlayerStep) {
		before := p.Position()[2]
		res := p.Step(intent, stepDT)
		return before - p.Position()[2], res
	}

	if dz, _ := stepZ(IntentForward); math.Abs(dz-base) > 1e-9 {
		t.Fatalf("expected baseline displacement %.4f, got %.4f", base, dz)
	}

	dz, res := stepZ(IntentForward | IntentDash)
	if !res.Dashed || !p.HasDashed() {
		t.Fatal("expected dash to start")
	}
	if math.Abs(dz-boosted) > 1e-9 {
		t.Errorf("expected boosted displacement %.4f, got %.4f", boosted, dz)
	}
	for i := 0; i < 3; i++ {
		if dz, _ := stepZ(IntentForward); math.Abs(dz-boosted) > 1e-9 {
			t.Errorf("dash step %d: expected %.4f, got %.4f", i, boosted, dz)
		}
	}

	for i := 0; i < 30; i++ {
		p.Step(IntentNone, stepDT)
	}
	if p.Dash != DashCooldown {
		t.Fatalf("expected cooldown after dash duration, got %s", p.Dash)
	}

	// dash during cooldown is ignored
	dz, res = stepZ(IntentForward | IntentDash)
	if res.Dashed {
		t.Error("dash accepted during cooldown")
	}
	if math.Abs(dz-base) > 1e-9 {
		t.Errorf("expected baseline displacement during cooldown, got %.4f", dz)
	}
	if !p.HasDashed() {
		t.Error("expected HasDashed to stay true during cooldown")
	}

	for i := 0; i < 200; i++ {
		p.Step(IntentNone, stepDT)
	}
	if p.HasDashed() {
		t.Error("expected dash ready after cooldown")
	}
}

func TestPlayer_DirectionsFollowView(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   mgl64.Vec3
	}{
		{"forward", IntentForward, mgl64.Vec3{0, 0, -1}},
		{"backward", IntentBackward, mgl64.Vec3{0, 0, 1}},
		{"right", IntentRight, mgl64.Vec3{1, 0, 0}},
		{"left", IntentLeft, mgl64.Vec3{-1, 0, 0}},
		{"forward_right", IntentForward | IntentRight, mgl64.Vec3{1, 0, -1}},
		{"cancel", IntentForward | IntentBackward, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPlayer(t, mgl64.Vec3{0, restHeight, 0})
			p.Step(IntentNone, stepDT)
			before := p.Position()
			p.Step(tt.intent, stepDT)
			got := p.Position().Sub(before)
			got[1] = 0
			want := tt.want.Mul(p.cfg.Speed * stepDT)
			if !vecNear(got, want, 1e-9) {
				t.Errorf("expected displacement %v, got %v", want, got)
			}
		})
	}
}

func TestPlayer_PitchedViewStillMovesFlat(t *testing.T) {
	p, view := newTestPlayer(t, mgl64.Vec3{0, restHeight, 0})
	view.front = mgl64.Vec3{0, -0.8, -0.6}
	p.Step(IntentNone, stepDT)

	before := p.Position()
	p.Step(IntentForward, stepDT)
	dz := before[2] - p.Position()[2]
	if math.Abs(dz-p.cfg.Speed*stepDT) > 1e-9 {
		t.Errorf("expected full-speed flat move %.4f, got %.4f", p.cfg.Speed*stepDT, dz)
	}

	// straight down has no horizontal component
	view.front = mgl64.Vec3{0, -1, 0}
	before = p.Position()
	p.Step(IntentForward, stepDT)
	if d := p.Position().Sub(before); math.Abs(d[0])+math.Abs(d[2]) > 1e-12 {
		t.Errorf("expected no horizontal motion, got %v", d)
	}
}

// ---------- Reset ----------

func TestPlayer_ResetIdempotent(t *testing.T) {
	spawn := mgl64.Vec3{2, restHeight, 3}
	p, view := newTestPlayer(t, spawn)

	p.Step(IntentForward|IntentDash, stepDT)
	p.Step(IntentJump, stepDT)
	for i := 0; i < 10; i++ {
		p.Step(IntentLeft, stepDT)
	}

	p.Reset()
	first := *p
	p.Reset()

	if p.Position() != spawn {
		t.Errorf("expected spawn %v, got %v", spawn, p.Position())
	}
	if p.Ground != first.Ground || p.Dash != first.Dash || p.VerticalVelocity != first.VerticalVelocity {
		t.Errorf("second reset changed state: %+v vs %+v", first, *p)
	}
	if p.Ground != Grounded || p.HasDashed() {
		t.Errorf("expected grounded with dash ready, got %s/%s", p.Ground, p.Dash)
	}
	if view.pos != spawn {
		t.Errorf("expected view at spawn, got %v", view.pos)
	}
}
