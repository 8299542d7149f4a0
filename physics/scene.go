package physics

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/brainmaze/components"
)

// ErrImmovable is returned when a static body is asked to move.
var ErrImmovable = errors.New("physics: static bodies are immovable")

// SceneConfig configures a Scene.
type SceneConfig struct {
	Gravity  mgl64.Vec3
	Material Material
	// Workers sizes the integration dispatcher (0 = GOMAXPROCS).
	Workers int
	// ParallelThreshold is the dynamic body count below which integration
	// runs on the calling goroutine.
	ParallelThreshold int
}

// bodySnapshot captures read-only state of a dynamic body for integration.
type bodySnapshot struct {
	Entity   ecs.Entity
	Pose     components.Pose
	Vel      components.Velocity
	Collider components.Collider
	Body     components.Body
}

// bodyResult is the integrated state applied after the parallel phase.
type bodyResult struct {
	Pose components.Pose
	Vel  components.Velocity
}

// Scene is the default Backend.
type Scene struct {
	world    *ecs.World
	gravity  mgl64.Vec3
	material Material

	staticMapper    *ecs.Map3[components.Pose, components.Collider, components.Static]
	dynamicMapper   *ecs.Map4[components.Pose, components.Velocity, components.Collider, components.Body]
	kinematicMapper *ecs.Map3[components.Pose, components.Collider, components.KinematicTarget]

	staticFilter    *ecs.Filter3[components.Pose, components.Collider, components.Static]
	dynamicFilter   *ecs.Filter4[components.Pose, components.Velocity, components.Collider, components.Body]
	kinematicFilter *ecs.Filter2[components.Pose, components.KinematicTarget]

	poseMap   *ecs.Map1[components.Pose]
	velMap    *ecs.Map1[components.Velocity]
	bodyMap   *ecs.Map1[components.Body]
	targetMap *ecs.Map1[components.KinematicTarget]

	// statics is rebuilt from the ECS when staticsDirty is set
	statics      []shape
	staticsDirty bool

	controller *Controller

	snapshots         []bodySnapshot
	results           []bodyResult
	parallelThreshold int
	dispatcher        *dispatcher
}

// NewScene creates an empty scene.
func NewScene(cfg SceneConfig) *Scene {
	world := ecs.NewWorld()
	s := &Scene{
		world:    world,
		gravity:  cfg.Gravity,
		material: cfg.Material,

		staticMapper:    ecs.NewMap3[components.Pose, components.Collider, components.Static](world),
		dynamicMapper:   ecs.NewMap4[components.Pose, components.Velocity, components.Collider, components.Body](world),
		kinematicMapper: ecs.NewMap3[components.Pose, components.Collider, components.KinematicTarget](world),

		staticFilter:    ecs.NewFilter3[components.Pose, components.Collider, components.Static](world),
		dynamicFilter:   ecs.NewFilter4[components.Pose, components.Velocity, components.Collider, components.Body](world),
		kinematicFilter: ecs.NewFilter2[components.Pose, components.KinematicTarget](world),

		poseMap:   ecs.NewMap1[components.Pose](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		bodyMap:   ecs.NewMap1[components.Body](world),
		targetMap: ecs.NewMap1[components.KinematicTarget](world),

		parallelThreshold: cfg.ParallelThreshold,
		snapshots:         make([]bodySnapshot, 0, 16),
		results:           make([]bodyResult, 0, 16),
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > 1 {
		s.dispatcher = newDispatcher(workers, s.integrateChunk)
	}
	return s
}

// Close stops the integration workers.
func (s *Scene) Close() {
	if s.dispatcher != nil {
		s.dispatcher.stop()
	}
}

// AddStatic adds an immovable collider.
func (s *Scene) AddStatic(pose components.Pose, col components.Collider) (BodyID, error) {
	if err := validateCollider(col); err != nil {
		return BodyID{}, err
	}
	pose = normalizePose(pose)
	e := s.staticMapper.NewEntity(&pose, &col, &components.Static{})
	s.staticsDirty = true
	return BodyID{entity: e, kind: KindStatic}, nil
}

// AddDynamic adds a simulated rigid body.
func (s *Scene) AddDynamic(pose components.Pose, col components.Collider, body components.Body, vel components.Velocity) (BodyID, error) {
	if err := validateCollider(col); err != nil {
		return BodyID{}, err
	}
	if body.Mass <= 0 {
		return BodyID{}, fmt.Errorf("physics: dynamic body mass must be positive, got %v", body.Mass)
	}
	pose = normalizePose(pose)
	e := s.dynamicMapper.NewEntity(&pose, &vel, &col, &body)
	return BodyID{entity: e, kind: KindDynamic}, nil
}

// AddKinematic adds a body that follows targets set with SetKinematicTarget.
func (s *Scene) AddKinematic(pose components.Pose, col components.Collider) (BodyID, error) {
	if err := validateCollider(col); err != nil {
		return BodyID{}, err
	}
	pose = normalizePose(pose)
	target := components.KinematicTarget{Pose: pose}
	e := s.kinematicMapper.NewEntity(&pose, &col, &target)
	return BodyID{entity: e, kind: KindKinematic}, nil
}

// CreateController creates the scene's single character controller.
func (s *Scene) CreateController(desc ControllerDesc) (*Controller, error) {
	if s.controller != nil {
		return nil, ErrControllerExists
	}
	for i := 0; i < 3; i++ {
		if desc.HalfExtents[i] <= 0 {
			return nil, fmt.Errorf("physics: controller half extents must be positive, got %v", desc.HalfExtents)
		}
	}
	s.controller = newController(s, desc)
	return s.controller, nil
}

func (s *Scene) check(id BodyID) error {
	if !id.Valid() || !s.world.Alive(id.entity) {
		return ErrUnknownBody
	}
	return nil
}

// Pose returns a body's current pose.
func (s *Scene) Pose(id BodyID) (components.Pose, error) {
	if err := s.check(id); err != nil {
		return components.Pose{}, err
	}
	return *s.poseMap.Get(id.entity), nil
}

// SetPose teleports a dynamic or kinematic body. A kinematic body's pending
// target is replaced so it stays where it was put.
func (s *Scene) SetPose(id BodyID, pose components.Pose) error {
	if err := s.check(id); err != nil {
		return err
	}
	if id.kind == KindStatic {
		return ErrImmovable
	}
	pose = normalizePose(pose)
	*s.poseMap.Get(id.entity) = pose
	if id.kind == KindKinematic {
		*s.targetMap.Get(id.entity) = components.KinematicTarget{Pose: pose}
	}
	return nil
}

// Velocity returns a dynamic body's velocity.
func (s *Scene) Velocity(id BodyID) (components.Velocity, error) {
	if err := s.check(id); err != nil {
		return components.Velocity{}, err
	}
	if id.kind != KindDynamic {
		return components.Velocity{}, fmt.Errorf("%w: %s body has no velocity", ErrUnknownBody, id.kind)
	}
	return *s.velMap.Get(id.entity), nil
}

// SetVelocity overwrites a dynamic body's velocity.
func (s *Scene) SetVelocity(id BodyID, vel components.Velocity) error {
	if err := s.check(id); err != nil {
		return err
	}
	if id.kind != KindDynamic {
		return fmt.Errorf("%w: %s body has no velocity", ErrUnknownBody, id.kind)
	}
	*s.velMap.Get(id.entity) = vel
	return nil
}

// AddImpulse applies an instantaneous linear impulse to a dynamic body.
func (s *Scene) AddImpulse(id BodyID, impulse mgl64.Vec3) error {
	if err := s.check(id); err != nil {
		return err
	}
	if id.kind != KindDynamic {
		return fmt.Errorf("%w: impulse on %s body", ErrUnknownBody, id.kind)
	}
	vel := s.velMap.Get(id.entity)
	vel.Linear = vel.Linear.Add(impulse.Mul(s.bodyMap.Get(id.entity).InvMass()))
	return nil
}

// SetKinematicTarget sets the pose a kinematic body reaches at the next Simulate.
func (s *Scene) SetKinematicTarget(id BodyID, pose components.Pose) error {
	if err := s.check(id); err != nil {
		return err
	}
	if id.kind != KindKinematic {
		return fmt.Errorf("%w: kinematic target on %s body", ErrUnknownBody, id.kind)
	}
	*s.targetMap.Get(id.entity) = components.KinematicTarget{Pose: normalizePose(pose), Pending: true}
	return nil
}

// Simulate advances the scene by dt seconds and blocks until done.
func (s *Scene) Simulate(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("physics: invalid step %v", dt)
	}
	s.ensureStatics()
	s.stepKinematic()

	// Phase A: snapshot dynamic bodies
	s.snapshots = s.snapshots[:0]
	query := s.dynamicFilter.Query()
	for query.Next() {
		pose, vel, col, body := query.Get()
		s.snapshots = append(s.snapshots, bodySnapshot{
			Entity:   query.Entity(),
			Pose:     *pose,
			Vel:      *vel,
			Collider: *col,
			Body:     *body,
		})
	}

	n := len(s.snapshots)
	if n > 0 {
		if cap(s.results) < n {
			s.results = make([]bodyResult, n)
		}
		s.results = s.results[:n]

		// Phase B: integrate
		if s.dispatcher == nil || n < s.parallelThreshold {
			s.integrateChunk(0, n, dt)
		} else {
			s.dispatcher.run(n, dt)
		}

		// Phase C: apply in snapshot order
		for i, snap := range s.snapshots {
			*s.poseMap.Get(snap.Entity) = s.results[i].Pose
			*s.velMap.Get(snap.Entity) = s.results[i].Vel
		}
	}

	return nil
}

func (s *Scene) stepKinematic() {
	query := s.kinematicFilter.Query()
	for query.Next() {
		pose, target := query.Get()
		if target.Pending {
			*pose = target.Pose
			target.Pending = false
		}
	}
}

// ensureStatics rebuilds the world-space static shape cache.
func (s *Scene) ensureStatics() {
	if !s.staticsDirty {
		return
	}
	s.statics = s.statics[:0]
	query := s.staticFilter.Query()
	for query.Next() {
		pose, col, _ := query.Get()
		s.statics = append(s.statics, newShape(*pose, *col))
	}
	s.staticsDirty = false
}

// integrateChunk integrates snapshots [i0, i1). It only reads shared state.
func (s *Scene) integrateChunk(i0, i1 int, dt float64) {
	for i := i0; i < i1; i++ {
		snap := &s.snapshots[i]
		s.results[i] = s.integrate(snap, dt)
	}
}

func (s *Scene) integrate(snap *bodySnapshot, dt float64) bodyResult {
	body := snap.Body
	lin := snap.Vel.Linear
	ang := snap.Vel.Angular

	if body.GravityEnabled {
		lin = lin.Add(s.gravity.Mul(dt))
	}
	lin = lin.Mul(1 / (1 + dt*body.LinearDamping))
	ang = ang.Mul(1 / (1 + dt*body.AngularDamping))

	pos := snap.Pose.Position.Add(lin.Mul(dt))
	rot := snap.Pose.Rotation
	if ang.Len() > 0 {
		spin := mgl64.Quat{W: 0, V: ang.Mul(0.5 * dt)}
		rot = rot.Add(spin.Mul(rot)).Normalize()
	}

	// Dynamic boxes collide as their inscribed sphere.
	r := snap.Collider.Radius
	if snap.Collider.Shape == components.ShapeBox {
		h := snap.Collider.HalfExtents
		r = math.Min(h[0], math.Min(h[1], h[2]))
	}
	lo := pos.Sub(mgl64.Vec3{r, r, r})
	hi := pos.Add(mgl64.Vec3{r, r, r})
	for i := range s.statics {
		st := &s.statics[i]
		if !st.overlapsAABB(lo, hi) {
			continue
		}
		ct, ok := sphereContact(pos, r, st)
		if !ok {
			continue
		}
		pos = pos.Add(ct.normal.Mul(ct.depth))
		lin = s.respond(lin, ct.normal)
	}

	return bodyResult{
		Pose: components.Pose{Position: pos, Rotation: rot},
		Vel:  components.Velocity{Linear: lin, Angular: ang},
	}
}

// respond reflects the approaching normal velocity with restitution and
// removes tangential velocity up to the friction limit.
func (s *Scene) respond(v, n mgl64.Vec3) mgl64.Vec3 {
	vn := v.Dot(n)
	if vn >= 0 {
		return v
	}
	jn := -(1 + s.material.Restitution) * vn
	v = v.Add(n.Mul(jn))

	vt := v.Sub(n.Mul(v.Dot(n)))
	speed := vt.Len()
	if speed > contactEpsilon {
		jt := math.Min(speed, s.material.DynamicFriction*jn)
		v = v.Sub(vt.Mul(jt / speed))
	}
	return v
}

func validateCollider(col components.Collider) error {
	switch col.Shape {
	case components.ShapeBox:
		for i := 0; i < 3; i++ {
			if !(col.HalfExtents[i] > 0) {
				return fmt.Errorf("physics: box half extents must be positive, got %v", col.HalfExtents)
			}
		}
	case components.ShapeSphere:
		if !(col.Radius > 0) {
			return fmt.Errorf("physics: sphere radius must be positive, got %v", col.Radius)
		}
	default:
		return fmt.Errorf("physics: unknown shape %d", col.Shape)
	}
	return nil
}

func normalizePose(p components.Pose) components.Pose {
	if p.Rotation.Len() < contactEpsilon {
		p.Rotation = mgl64.QuatIdent()
	} else {
		p.Rotation = p.Rotation.Normalize()
	}
	return p
}
