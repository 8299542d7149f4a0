package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
)

func testScene(t *testing.T, workers int) *Scene {
	t.Helper()
	s := NewScene(SceneConfig{
		Gravity:           mgl64.Vec3{0, -9.81, 0},
		Material:          Material{StaticFriction: 0.5, DynamicFriction: 0.5, Restitution: 0.2},
		Workers:           workers,
		ParallelThreshold: 0,
	})
	t.Cleanup(s.Close)
	return s
}

func box(h mgl64.Vec3) components.Collider {
	return components.Collider{Shape: components.ShapeBox, HalfExtents: h}
}

func sphere(r float64) components.Collider {
	return components.Collider{Shape: components.ShapeSphere, Radius: r}
}

func addFloor(t *testing.T, s *Scene) {
	t.Helper()
	_, err := s.AddStatic(components.IdentityPose(mgl64.Vec3{0, 1, 0}), box(mgl64.Vec3{50, 0.5, 50}))
	if err != nil {
		t.Fatalf("AddStatic: %v", err)
	}
}

func TestAddImpulseScalesByMass(t *testing.T) {
	s := testScene(t, 1)
	id, err := s.AddDynamic(components.IdentityPose(mgl64.Vec3{}), sphere(1), components.Body{Mass: 4}, components.Velocity{})
	if err != nil {
		t.Fatalf("AddDynamic: %v", err)
	}

	if err := s.AddImpulse(id, mgl64.Vec3{2, 0, -8}); err != nil {
		t.Fatalf("AddImpulse: %v", err)
	}
	vel, err := s.Velocity(id)
	if err != nil {
		t.Fatalf("Velocity: %v", err)
	}
	if !vel.Linear.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, -2}, 1e-12) {
		t.Errorf("velocity = %v, want (0.5, 0, -2)", vel.Linear)
	}
}

func TestGravityOnlyWhenEnabled(t *testing.T) {
	s := testScene(t, 1)
	floating, _ := s.AddDynamic(components.IdentityPose(mgl64.Vec3{0, 10, 0}), sphere(1), components.Body{Mass: 1}, components.Velocity{})
	falling, _ := s.AddDynamic(components.IdentityPose(mgl64.Vec3{5, 10, 0}), sphere(1), components.Body{Mass: 1, GravityEnabled: true}, components.Velocity{})

	if err := s.Simulate(0.1); err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	fp, _ := s.Pose(floating)
	if fp.Position != (mgl64.Vec3{0, 10, 0}) {
		t.Errorf("gravity-disabled body moved to %v", fp.Position)
	}
	fv, _ := s.Velocity(falling)
	if math.Abs(fv.Linear.Y()+0.981) > 1e-9 {
		t.Errorf("falling velocity y = %v, want -0.981", fv.Linear.Y())
	}
}

func TestSphereRestsOnFloor(t *testing.T) {
	s := testScene(t, 1)
	addFloor(t, s)
	id, _ := s.AddDynamic(components.IdentityPose(mgl64.Vec3{0, 5, 0}), sphere(1), components.Body{Mass: 1, GravityEnabled: true}, components.Velocity{})

	for i := 0; i < 600; i++ {
		if err := s.Simulate(1.0 / 60); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
	}

	p, _ := s.Pose(id)
	// floor top is 1.5, so the center should settle at 2.5
	if p.Position.Y() < 2.5-0.02 || p.Position.Y() > 2.6 {
		t.Errorf("sphere center y = %v, want ~2.5", p.Position.Y())
	}
}

func TestAngularVelocityRotates(t *testing.T) {
	s := testScene(t, 1)
	id, _ := s.AddDynamic(components.IdentityPose(mgl64.Vec3{}), sphere(1), components.Body{Mass: 1},
		components.Velocity{Angular: mgl64.Vec3{0.5, 0.5, 0.5}})

	for i := 0; i < 10; i++ {
		_ = s.Simulate(1.0 / 60)
	}
	p, _ := s.Pose(id)
	if p.Rotation.ApproxEqualThreshold(mgl64.QuatIdent(), 1e-6) {
		t.Error("expected rotation to change")
	}
	if math.Abs(p.Rotation.Len()-1) > 1e-9 {
		t.Errorf("rotation not normalized: len=%v", p.Rotation.Len())
	}
}

func TestKinematicTargetAppliedOnSimulate(t *testing.T) {
	s := testScene(t, 1)
	id, err := s.AddKinematic(components.IdentityPose(mgl64.Vec3{}), sphere(2))
	if err != nil {
		t.Fatalf("AddKinematic: %v", err)
	}

	target := components.IdentityPose(mgl64.Vec3{1, 2, 3})
	if err := s.SetKinematicTarget(id, target); err != nil {
		t.Fatalf("SetKinematicTarget: %v", err)
	}
	p, _ := s.Pose(id)
	if p.Position != (mgl64.Vec3{}) {
		t.Errorf("pose changed before Simulate: %v", p.Position)
	}

	_ = s.Simulate(1.0 / 60)
	p, _ = s.Pose(id)
	if p.Position != target.Position {
		t.Errorf("pose after Simulate = %v, want %v", p.Position, target.Position)
	}
}

func TestBackendErrors(t *testing.T) {
	s := testScene(t, 1)
	static, _ := s.AddStatic(components.IdentityPose(mgl64.Vec3{}), box(mgl64.Vec3{1, 1, 1}))
	kin, _ := s.AddKinematic(components.IdentityPose(mgl64.Vec3{}), sphere(1))

	if err := s.SetPose(static, components.IdentityPose(mgl64.Vec3{1, 0, 0})); !errors.Is(err, ErrImmovable) {
		t.Errorf("SetPose(static) error = %v, want ErrImmovable", err)
	}
	if _, err := s.Pose(BodyID{}); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("Pose(zero) error = %v, want ErrUnknownBody", err)
	}
	if err := s.AddImpulse(kin, mgl64.Vec3{1, 0, 0}); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("AddImpulse(kinematic) error = %v, want ErrUnknownBody", err)
	}
	if _, err := s.AddStatic(components.IdentityPose(mgl64.Vec3{}), box(mgl64.Vec3{1, 0, 1})); err == nil {
		t.Error("expected error for zero half extent")
	}
	if _, err := s.AddDynamic(components.IdentityPose(mgl64.Vec3{}), sphere(1), components.Body{}, components.Velocity{}); err == nil {
		t.Error("expected error for zero mass")
	}
	if err := s.Simulate(0); err == nil {
		t.Error("expected error for zero step")
	}
	if err := s.Simulate(math.NaN()); err == nil {
		t.Error("expected error for NaN step")
	}

	desc := ControllerDesc{HalfExtents: mgl64.Vec3{0.5, 1.75, 0.5}}
	if _, err := s.CreateController(desc); err != nil {
		t.Fatalf("CreateController: %v", err)
	}
	if _, err := s.CreateController(desc); !errors.Is(err, ErrControllerExists) {
		t.Errorf("second CreateController error = %v, want ErrControllerExists", err)
	}
}

func TestSimulateDeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) []mgl64.Vec3 {
		s := testScene(t, workers)
		addFloor(t, s)
		var ids []BodyID
		for i := 0; i < 32; i++ {
			x := float64(i%8)*3 - 12
			z := float64(i/8)*3 - 6
			id, _ := s.AddDynamic(components.IdentityPose(mgl64.Vec3{x, 4 + float64(i%3), z}), sphere(1),
				components.Body{Mass: 1, GravityEnabled: true},
				components.Velocity{Linear: mgl64.Vec3{float64(i%5) - 2, 0, 1}})
			ids = append(ids, id)
		}
		for i := 0; i < 120; i++ {
			_ = s.Simulate(1.0 / 60)
		}
		out := make([]mgl64.Vec3, len(ids))
		for i, id := range ids {
			p, _ := s.Pose(id)
			out[i] = p.Position
		}
		return out
	}

	serial := run(1)
	parallel := run(4)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("body %d: serial %v != parallel %v", i, serial[i], parallel[i])
		}
	}
}
