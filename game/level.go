package game

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/components"
	"github.com/pthm-cable/brainmaze/config"
)

// BuildLevel creates a world and registers the authored layout from cfg:
// floor, boundaries, maze walls, the player bound to view, the homing actor,
// every patrol route and the key.
func BuildLevel(cfg *config.Config, view View, proxies ProxyFactory, logger *slog.Logger) (*World, error) {
	if proxies == nil {
		proxies = HeadlessProxies{}
	}
	w := NewWorld(cfg, logger)
	if err := populate(w, cfg, view, proxies); err != nil {
		w.Close()
		return nil, err
	}
	w.logger.Info("level built",
		"statics", len(w.statics),
		"patrols", len(w.patrols),
	)
	return w, nil
}

func populate(w *World, cfg *config.Config, view View, proxies ProxyFactory) error {
	lvl := cfg.Level

	if err := addBox(w, lvl.Floor, proxies, RoleFloor); err != nil {
		return fmt.Errorf("floor: %w", err)
	}
	for i, b := range lvl.Boundaries {
		if err := addBox(w, b, proxies, RoleBoundary); err != nil {
			return fmt.Errorf("boundary %d: %w", i, err)
		}
	}
	for i, b := range lvl.Walls {
		if err := addBox(w, b, proxies, RoleWall); err != nil {
			return fmt.Errorf("wall %d: %w", i, err)
		}
	}

	spawn := components.IdentityPose(lvl.PlayerSpawn.Vec())
	if _, err := w.RegisterPlayer(spawn, cfg.Player.HalfExtents.Vec(), view); err != nil {
		return err
	}

	r := cfg.Homing.Radius
	homingSpawn := components.IdentityPose(lvl.HomingSpawn.Vec())
	if _, err := w.RegisterHomingActor(homingSpawn, r, proxies.Sphere(r, RoleHoming)); err != nil {
		return err
	}

	for i, route := range lvl.Patrols {
		waypoints := make([]mgl64.Vec3, len(route.Waypoints))
		for j, wp := range route.Waypoints {
			waypoints[j] = wp.Vec()
		}
		pr := cfg.Patrol.Radius
		patrolSpawn := components.IdentityPose(route.Spawn.Vec())
		if _, err := w.RegisterPatrolActor(patrolSpawn, waypoints, pr, proxies.Sphere(pr, RolePatrol)); err != nil {
			return fmt.Errorf("patrol %d: %w", i, err)
		}
	}

	return w.RegisterKey(lvl.KeyPosition.Vec(), cfg.Key.PickupRadius)
}

func addBox(w *World, b config.BoxConfig, proxies ProxyFactory, role Role) error {
	half := b.HalfExtents.Vec()
	var proxy RenderProxy
	if !b.HitboxOnly {
		proxy = proxies.Box(half, role)
	}
	_, err := w.RegisterStaticBox(components.IdentityPose(b.Center.Vec()), half, proxy, b.HitboxOnly)
	return err
}
