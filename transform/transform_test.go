package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
)

// vecNear compares component-wise with an absolute tolerance.
func vecNear(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func quatNear(a, b mgl64.Quat, tol float64) bool {
	return math.Abs(a.W-b.W) <= tol && vecNear(a.V, b.V, tol)
}

func TestPositionFromModel(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(4, 5, 6))
	got := PositionFromModel(m)
	want := mgl64.Vec3{1, 2, 3}
	if !vecNear(got, want, 1e-6) {
		t.Errorf("PositionFromModel = %v, want %v", got, want)
	}
}

func TestRotationFromModelStripsScale(t *testing.T) {
	rot := mgl32.HomogRotate3DY(float32(math.Pi / 2))
	m := mgl32.Translate3D(5, 0, 0).Mul4(rot).Mul4(mgl32.Scale3D(3, 3, 3))

	q := RotationFromModel(m)
	if math.Abs(q.Len()-1) > 1e-6 {
		t.Fatalf("quaternion not unit: len=%v", q.Len())
	}

	// +X rotated a quarter turn about Y lands on -Z
	got := q.Rotate(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{0, 0, -1}
	if !vecNear(got, want, 1e-5) {
		t.Errorf("rotated +X = %v, want %v", got, want)
	}
}

func TestModelPoseRoundtrip(t *testing.T) {
	pose := components.Pose{
		Position: mgl64.Vec3{-3, 7, 11},
		Rotation: mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0}),
	}
	back := PoseFromModel(ModelFromPose(pose))

	if !vecNear(back.Position, pose.Position, 1e-5) {
		t.Errorf("position = %v, want %v", back.Position, pose.Position)
	}
	// q and -q are the same rotation
	if !quatNear(back.Rotation, pose.Rotation, 1e-5) &&
		!quatNear(back.Rotation.Scale(-1), pose.Rotation, 1e-5) {
		t.Errorf("rotation = %v, want %v", back.Rotation, pose.Rotation)
	}
}

func TestFront(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		want       mgl64.Vec3
	}{
		{"default yaw looks down -Z", -90, 0, mgl64.Vec3{0, 0, -1}},
		{"yaw 0 looks down +X", 0, 0, mgl64.Vec3{1, 0, 0}},
		{"pitch up", 0, 90, mgl64.Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Front(tt.yaw, tt.pitch)
			if !vecNear(got, tt.want, 1e-6) {
				t.Errorf("Front(%v, %v) = %v, want %v", tt.yaw, tt.pitch, got, tt.want)
			}
		})
	}
}

func TestHorizontal(t *testing.T) {
	dir, ok := Horizontal(mgl64.Vec3{3, 10, 4})
	if !ok {
		t.Fatal("expected non-degenerate projection")
	}
	if !vecNear(dir, mgl64.Vec3{0.6, 0, 0.8}, 1e-9) {
		t.Errorf("Horizontal = %v, want (0.6, 0, 0.8)", dir)
	}

	if _, ok := Horizontal(mgl64.Vec3{0, -1, 0}); ok {
		t.Error("vertical vector should be degenerate")
	}
}

func TestRotationBetween(t *testing.T) {
	x := mgl64.Vec3{1, 0, 0}
	z := mgl64.Vec3{0, 0, 1}

	tests := []struct {
		name     string
		from, to mgl64.Vec3
	}{
		{"parallel", x, x},
		{"quarter", x, z},
		{"antiparallel", x, x.Mul(-1)},
		{"antiparallel vertical", WorldUp, WorldUp.Mul(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := RotationBetween(tt.from, tt.to)
			got := q.Rotate(tt.from)
			if !vecNear(got, tt.to, 1e-6) {
				t.Errorf("rotated %v = %v, want %v", tt.from, got, tt.to)
			}
		})
	}

	if q := RotationBetween(x, x.Mul(-1)); math.Abs(math.Abs(q.V.Y())-1) > 1e-9 {
		t.Errorf("antiparallel turn should be about world up, got axis %v", q.V)
	}
}
