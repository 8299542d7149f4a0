package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, telemetry.SessionTotals{
		Score:      g.world.ScoreCounter(),
		HitCounter: g.world.HitCounter(),
		Round:      g.Round(),
	})
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			g.logger.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			g.logger.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				g.logger.Error("failed to write bookmark", "error", err)
			}
		}
		g.saveSnapshot(&bm)
	}
}

// broadcast sends a frame snapshot to spectators every spectate.every_n_ticks steps.
func (g *Game) broadcast() {
	if g.spectator == nil {
		return
	}
	every := int32(g.cfg.Spectate.EveryNTicks)
	if every > 1 && g.tick%every != 0 && g.state == StatePlaying {
		return
	}
	g.spectator.Broadcast(g.Snapshot(nil))
}

// saveSnapshot writes a bookmark snapshot to the snapshot directory, or to
// the output directory when none was given.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	var (
		path string
		err  error
	)
	snapshot := g.Snapshot(bookmark)
	switch {
	case g.snapshotDir != "":
		path, err = telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	case g.outputManager != nil:
		path, err = g.outputManager.WriteSnapshot(snapshot)
	default:
		return
	}
	if err != nil {
		g.logger.Error("failed to save snapshot", "error", err)
		return
	}

	g.logger.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot builds a snapshot of the current frame.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	session := g.world.Session()
	snapshot := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		Tick:    g.tick,
		SimTime: float64(g.tick) * g.cfg.Physics.DT,
		State:   g.state.String(),
		Session: telemetry.SessionState{
			Round:      g.Round(),
			Score:      session.Score,
			HitCounter: session.HitCounter,
			KeyFound:   session.KeyFound,
		},
		Bookmark: bookmark,
	}

	if p := g.world.Player(); p != nil {
		snapshot.Player = telemetry.PlayerState{
			Position: p.Position(),
			Yaw:      g.camera.Yaw,
			Pitch:    g.camera.Pitch,
			Grounded: p.Ground == systems.Grounded,
			Dash:     p.Dash.String(),
		}
	}

	if pose, ok := g.world.HomingPose(); ok {
		snapshot.Homing = actorState(pose.Position, pose.Rotation, 0)
	}
	for _, p := range g.world.Patrols() {
		snapshot.Patrols = append(snapshot.Patrols, actorState(p.Position(), p.Rotation(), p.Index()))
	}

	if key, ok := g.world.Key(); ok && !session.KeyFound {
		pos := [3]float64(key.Position)
		snapshot.Key = &pos
	}

	return snapshot
}

func actorState(pos mgl64.Vec3, rot mgl64.Quat, target int) telemetry.ActorState {
	return telemetry.ActorState{
		Position: pos,
		Rotation: [4]float64{rot.W, rot.V[0], rot.V[1], rot.V[2]},
		Target:   target,
	}
}
