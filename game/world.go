// Package game ties the physics scene and the actor step logic into a
// playable round: registration of level geometry and actors, the fixed
// simulation step, and the queries the game loop asks after each step.
package game

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/physics"
	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/transform"
)

// ColliderHandle indexes a registered static collider.
type ColliderHandle int

// ControllerHandle identifies the player controller.
type ControllerHandle int

// ActorKind distinguishes the two enemy kinds.
type ActorKind uint8

const (
	ActorHoming ActorKind = iota
	ActorPatrol
)

// ActorHandle refers to a registered enemy.
type ActorHandle struct {
	Kind  ActorKind
	Index int
}

// StaticCollider is an immovable piece of level geometry.
type StaticCollider struct {
	Body     physics.BodyID
	Pose     components.Pose
	Collider components.Collider
	Proxy    RenderProxy
	Visible  bool
}

// Key is the pickup that wins the round.
type Key struct {
	Position     mgl64.Vec3
	PickupRadius float64
}

// PhaseTimer receives the name of each step phase as it starts.
type PhaseTimer interface {
	StartPhase(phase string)
}

// World owns the physics backend and every registered actor.
type World struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend physics.Backend

	statics []StaticCollider

	controller *physics.Controller
	player     *systems.Player
	intent     systems.Intent
	lastStep   systems.PlayerStep

	homing      *systems.Homing
	homingProxy RenderProxy

	patrols       []*systems.Patrol
	patrolProxies []RenderProxy

	key *Key

	session Session
	phases  PhaseTimer
}

// SceneConfig converts the loaded configuration into physics scene settings.
func SceneConfig(cfg *config.Config) physics.SceneConfig {
	return physics.SceneConfig{
		Gravity: cfg.Physics.Gravity.Vec(),
		Material: physics.Material{
			StaticFriction:  cfg.Material.StaticFriction,
			DynamicFriction: cfg.Material.DynamicFriction,
			Restitution:     cfg.Material.Restitution,
		},
		Workers:           cfg.Physics.Workers,
		ParallelThreshold: cfg.Physics.ParallelThreshold,
	}
}

// NewWorld creates an empty world backed by a new physics scene.
// A nil logger uses slog.Default.
func NewWorld(cfg *config.Config, logger *slog.Logger) *World {
	return NewWorldWithBackend(cfg, physics.NewScene(SceneConfig(cfg)), logger)
}

// NewWorldWithBackend creates an empty world on an existing backend. The
// world takes ownership and closes it in Close.
func NewWorldWithBackend(cfg *config.Config, backend physics.Backend, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
	}
}

// Close releases the physics backend.
func (w *World) Close() {
	w.backend.Close()
}

// SetPhaseTimer installs a timer notified as each step phase begins. Nil disables it.
func (w *World) SetPhaseTimer(t PhaseTimer) {
	w.phases = t
}

func (w *World) phase(name string) {
	if w.phases != nil {
		w.phases.StartPhase(name)
	}
}

// ---------- Registration ----------

// RegisterStaticBox adds an immovable box. Hitbox-only boxes collide but are
// never drawn and may omit the proxy.
func (w *World) RegisterStaticBox(pose components.Pose, halfExtents mgl64.Vec3, proxy RenderProxy, hitboxOnly bool) (ColliderHandle, error) {
	if halfExtents[0] <= 0 || halfExtents[1] <= 0 || halfExtents[2] <= 0 {
		return -1, fmt.Errorf("static box %v: %w", halfExtents, ErrInvalidExtents)
	}
	col := components.Collider{Shape: components.ShapeBox, HalfExtents: halfExtents}
	return w.addStatic(pose, col, proxy, !hitboxOnly)
}

// RegisterStaticSphere adds an immovable, visible sphere.
func (w *World) RegisterStaticSphere(pose components.Pose, radius float64, proxy RenderProxy) (ColliderHandle, error) {
	if radius <= 0 {
		return -1, fmt.Errorf("static sphere radius %v: %w", radius, ErrInvalidRadius)
	}
	col := components.Collider{Shape: components.ShapeSphere, Radius: radius}
	return w.addStatic(pose, col, proxy, true)
}

func (w *World) addStatic(pose components.Pose, col components.Collider, proxy RenderProxy, visible bool) (ColliderHandle, error) {
	if visible && proxy == nil {
		return -1, fmt.Errorf("static %s: %w", col.Shape, ErrMissingProxy)
	}
	id, err := w.backend.AddStatic(pose, col)
	if err != nil {
		return -1, fmt.Errorf("static %s: %w", col.Shape, err)
	}
	if proxy != nil {
		proxy.SetModelMatrix(transform.ModelFromPose(pose))
	}

	w.statics = append(w.statics, StaticCollider{
		Body:     id,
		Pose:     pose,
		Collider: col,
		Proxy:    proxy,
		Visible:  visible,
	})
	w.logger.Debug("static registered", "shape", col.Shape.String(), "position", pose.Position, "visible", visible)
	return ColliderHandle(len(w.statics) - 1), nil
}

// RegisterPlayer creates the single character controller centered at the
// spawn position and binds the view to it.
func (w *World) RegisterPlayer(spawn components.Pose, halfExtents mgl64.Vec3, view View) (ControllerHandle, error) {
	if w.player != nil {
		return -1, ErrPlayerExists
	}
	if view == nil {
		return -1, ErrMissingView
	}
	if halfExtents[0] <= 0 || halfExtents[1] <= 0 || halfExtents[2] <= 0 {
		return -1, fmt.Errorf("player %v: %w", halfExtents, ErrInvalidExtents)
	}

	ctrl, err := w.backend.CreateController(physics.ControllerDesc{
		Position:    spawn.Position,
		HalfExtents: halfExtents,
		StepOffset:  w.cfg.Player.StepOffset,
	})
	if err != nil {
		return -1, fmt.Errorf("player controller: %w", err)
	}
	w.controller = ctrl
	w.player = systems.NewPlayer(w.cfg.Player, ctrl, view)
	w.logger.Debug("player registered", "spawn", spawn.Position)
	return 0, nil
}

// RegisterHomingActor adds the seeking sphere. Gravity is disabled and the
// configured spin is applied.
func (w *World) RegisterHomingActor(spawn components.Pose, radius float64, proxy RenderProxy) (ActorHandle, error) {
	if w.homing != nil {
		return ActorHandle{}, ErrHomingExists
	}
	if radius <= 0 {
		return ActorHandle{}, fmt.Errorf("homing radius %v: %w", radius, ErrInvalidRadius)
	}
	if proxy == nil {
		return ActorHandle{}, fmt.Errorf("homing: %w", ErrMissingProxy)
	}

	hc := w.cfg.Homing
	body := components.Body{
		Mass:           w.homingMass(radius),
		LinearDamping:  hc.LinearDamping,
		AngularDamping: hc.AngularDamping,
	}
	col := components.Collider{Shape: components.ShapeSphere, Radius: radius}
	id, err := w.backend.AddDynamic(spawn, col, body, components.Velocity{})
	if err != nil {
		return ActorHandle{}, fmt.Errorf("homing body: %w", err)
	}
	h, err := systems.NewHoming(w.backend, id, spawn, hc)
	if err != nil {
		return ActorHandle{}, err
	}

	w.homing = h
	w.homingProxy = proxy
	proxy.SetModelMatrix(transform.ModelFromPose(h.Pose()))
	w.logger.Debug("homing actor registered", "spawn", spawn.Position, "mass", body.Mass)
	return ActorHandle{Kind: ActorHoming}, nil
}

// RegisterPatrolActor adds a kinematic sphere that loops over waypoints.
func (w *World) RegisterPatrolActor(spawn components.Pose, waypoints []mgl64.Vec3, radius float64, proxy RenderProxy) (ActorHandle, error) {
	if len(waypoints) < 2 {
		return ActorHandle{}, fmt.Errorf("patrol: %w", ErrTooFewWaypoints)
	}
	if radius <= 0 {
		return ActorHandle{}, fmt.Errorf("patrol radius %v: %w", radius, ErrInvalidRadius)
	}
	if proxy == nil {
		return ActorHandle{}, fmt.Errorf("patrol: %w", ErrMissingProxy)
	}

	col := components.Collider{Shape: components.ShapeSphere, Radius: radius}
	id, err := w.backend.AddKinematic(spawn, col)
	if err != nil {
		return ActorHandle{}, fmt.Errorf("patrol body: %w", err)
	}
	p, err := systems.NewPatrol(w.backend, id, spawn, waypoints, w.cfg.Patrol)
	if err != nil {
		return ActorHandle{}, err
	}

	w.patrols = append(w.patrols, p)
	w.patrolProxies = append(w.patrolProxies, proxy)
	proxy.SetModelMatrix(transform.ModelFromPose(p.Pose()))
	w.logger.Debug("patrol actor registered", "spawn", spawn.Position, "waypoints", len(waypoints))
	return ActorHandle{Kind: ActorPatrol, Index: len(w.patrols) - 1}, nil
}

// RegisterKey places the win pickup. A later call replaces it.
func (w *World) RegisterKey(position mgl64.Vec3, pickupRadius float64) error {
	if pickupRadius <= 0 {
		return fmt.Errorf("key radius %v: %w", pickupRadius, ErrInvalidRadius)
	}
	w.key = &Key{Position: position, PickupRadius: pickupRadius}
	return nil
}

// ForEachVisible calls fn for every visible static and every actor proxy.
func (w *World) ForEachVisible(fn func(RenderProxy)) {
	for i := range w.statics {
		if w.statics[i].Visible {
			fn(w.statics[i].Proxy)
		}
	}
	if w.homingProxy != nil {
		fn(w.homingProxy)
	}
	for _, p := range w.patrolProxies {
		fn(p)
	}
}

// Statics returns the registered static colliders.
func (w *World) Statics() []StaticCollider {
	return w.statics
}

// Static returns the collider behind h.
func (w *World) Static(h ColliderHandle) (StaticCollider, bool) {
	if h < 0 || int(h) >= len(w.statics) {
		return StaticCollider{}, false
	}
	return w.statics[h], true
}

// Proxy returns the render proxy of a registered actor.
func (w *World) Proxy(h ActorHandle) (RenderProxy, bool) {
	switch h.Kind {
	case ActorHoming:
		return w.homingProxy, w.homingProxy != nil && h.Index == 0
	case ActorPatrol:
		if h.Index >= 0 && h.Index < len(w.patrolProxies) {
			return w.patrolProxies[h.Index], true
		}
	}
	return nil, false
}

// ---------- Stepping ----------

// SetIntent queues the intent consumed by the next Advance.
func (w *World) SetIntent(intent systems.Intent) {
	w.intent = intent
}

// Advance runs one full step: player, enemies, physics solve, proxy sync and
// session bookkeeping. The queued intent is cleared.
func (w *World) Advance(dt float64) error {
	if err := checkDelta("advance", dt); err != nil {
		return err
	}
	if w.player == nil {
		return ErrNoPlayer
	}

	w.phase(systems.PhasePlayer)
	intent := w.intent
	w.intent = systems.IntentNone
	if err := w.UpdatePlayer(intent, dt); err != nil {
		return err
	}

	if err := w.UpdateEnemies(dt); err != nil {
		return err
	}

	w.phase(systems.PhaseSolve)
	if err := w.backend.Simulate(dt); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	w.phase(systems.PhaseSync)
	if err := w.sync(); err != nil {
		return err
	}

	w.session.Elapsed += dt
	w.session.Frames++
	if !w.session.KeyFound && w.PlayerFoundKey() {
		w.session.KeyFound = true
	}
	return nil
}

// UpdatePlayer steps the player controller by dt.
func (w *World) UpdatePlayer(intent systems.Intent, dt float64) error {
	if err := checkDelta("update player", dt); err != nil {
		return err
	}
	if w.player == nil {
		return ErrNoPlayer
	}
	w.lastStep = w.player.Step(intent, dt)
	return nil
}

// UpdateEnemies applies the homing impulse and moves every patrol actor.
func (w *World) UpdateEnemies(dt float64) error {
	if err := checkDelta("update enemies", dt); err != nil {
		return err
	}
	if w.homing != nil {
		w.phase(systems.PhaseHoming)
		target := w.PlayerPosition()
		if err := w.homing.Step(target, w.session.HitCounter); err != nil {
			return err
		}
	}

	w.phase(systems.PhasePatrol)
	for _, p := range w.patrols {
		if err := p.Step(dt); err != nil {
			return err
		}
	}
	return nil
}

// sync reads actor poses back from the backend and writes the proxies.
func (w *World) sync() error {
	if w.homing != nil {
		if err := w.homing.Sync(); err != nil {
			return err
		}
		w.homingProxy.SetModelMatrix(transform.ModelFromPose(w.homing.Pose()))
	}
	for i, p := range w.patrols {
		w.patrolProxies[i].SetModelMatrix(transform.ModelFromPose(p.Pose()))
	}
	return nil
}

// LastPlayerStep reports what the player did in the most recent step.
func (w *World) LastPlayerStep() systems.PlayerStep {
	return w.lastStep
}

// ---------- Queries ----------

// IsPlayerDead reports whether the player's feet fell below the death height.
func (w *World) IsPlayerDead() bool {
	if w.player == nil {
		return false
	}
	return w.player.FootPosition()[1] <= w.cfg.Player.DeathHeight
}

// IsPlayerHit reports whether any enemy is within its hit radius of the player.
func (w *World) IsPlayerHit() bool {
	if w.player == nil {
		return false
	}
	pos := w.player.Position()
	if w.homing != nil && w.homing.IsPlayerHit(pos) {
		return true
	}
	for _, p := range w.patrols {
		if p.IsPlayerHit(pos) {
			return true
		}
	}
	return false
}

// PlayerHasDashed reports whether a dash is active or cooling down.
func (w *World) PlayerHasDashed() bool {
	return w.player != nil && w.player.HasDashed()
}

// PlayerFoundKey reports whether the player is strictly inside the key's pickup radius.
func (w *World) PlayerFoundKey() bool {
	if w.player == nil || w.key == nil {
		return false
	}
	return transform.Distance(w.player.Position(), w.key.Position) < w.key.PickupRadius
}

// Key returns the registered key, if any.
func (w *World) Key() (Key, bool) {
	if w.key == nil {
		return Key{}, false
	}
	return *w.key, true
}

// Player returns the player state machine, or nil before RegisterPlayer.
func (w *World) Player() *systems.Player {
	return w.player
}

// PlayerPosition returns the controller center.
func (w *World) PlayerPosition() mgl64.Vec3 {
	if w.player == nil {
		return mgl64.Vec3{}
	}
	return w.player.Position()
}

// HomingPosition returns the seeking actor's position.
func (w *World) HomingPosition() (mgl64.Vec3, bool) {
	if w.homing == nil {
		return mgl64.Vec3{}, false
	}
	return w.homing.Position(), true
}

// HomingPose returns the seeking actor's pose.
func (w *World) HomingPose() (components.Pose, bool) {
	if w.homing == nil {
		return components.Pose{}, false
	}
	return w.homing.Pose(), true
}

// HomingVelocity reads the seeking actor's velocity from the backend.
func (w *World) HomingVelocity() (components.Velocity, bool) {
	if w.homing == nil {
		return components.Velocity{}, false
	}
	v, err := w.backend.Velocity(w.homing.ID())
	if err != nil {
		return components.Velocity{}, false
	}
	return v, true
}

// PatrolPositions returns the position of every patrol actor in registration order.
func (w *World) PatrolPositions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(w.patrols))
	for i, p := range w.patrols {
		out[i] = p.Position()
	}
	return out
}

// Patrols returns the patrol actors in registration order.
func (w *World) Patrols() []*systems.Patrol {
	return w.patrols
}

// ---------- Session ----------

// Session returns a copy of the round counters.
func (w *World) Session() Session {
	return w.session
}

// ScoreCounter returns the score.
func (w *World) ScoreCounter() int { return w.session.Score }

// SetScoreCounter replaces the score. Negative values become zero.
func (w *World) SetScoreCounter(score int) {
	w.session.Score = max(score, 0)
}

// HitCounter returns the hit counter.
func (w *World) HitCounter() int { return w.session.HitCounter }

// SetHitCounter replaces the hit counter, clamped so the homing divisor stays positive.
func (w *World) SetHitCounter(hits int) {
	w.session.HitCounter = min(max(hits, 0), w.cfg.Derived.MaxHitCounter)
}

// ResetGame returns every actor to its spawn state and clears the session.
// Calling it twice in a row leaves the same state as calling it once.
func (w *World) ResetGame() error {
	if w.player != nil {
		w.player.Reset()
	}
	w.intent = systems.IntentNone
	w.lastStep = systems.PlayerStep{}

	if w.homing != nil {
		if err := w.homing.Reset(); err != nil {
			return err
		}
	}
	for _, p := range w.patrols {
		if err := p.Reset(); err != nil {
			return err
		}
	}
	if err := w.sync(); err != nil {
		return err
	}

	w.session = Session{}
	w.logger.Info("game reset")
	return nil
}

// checkDelta rejects zero, negative, NaN and infinite step lengths.
func checkDelta(op string, dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%s %v: %w", op, dt, ErrInvalidDelta)
	}
	return nil
}

// homingMass reuses the derived mass for the configured radius.
func (w *World) homingMass(radius float64) float64 {
	if radius == w.cfg.Homing.Radius && w.cfg.Derived.HomingMass > 0 {
		return w.cfg.Derived.HomingMass
	}
	return sphereMass(w.cfg.Homing.Density, radius)
}

func sphereMass(density, radius float64) float64 {
	m := density * 4.0 / 3.0 * math.Pi * radius * radius * radius
	if m <= 0 {
		return 1
	}
	return m
}
