package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/telemetry"
)

// arenaConfig strips the level down to the floor, the player at
// (0, 3.5, 0), the homing actor ten units away and a distant key.
func arenaConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testConfig(t)
	cfg.Level.Boundaries = nil
	cfg.Level.Walls = nil
	cfg.Level.Patrols = nil
	cfg.Level.PlayerSpawn = config.Vec3{0, 3.5, 0}
	cfg.Level.HomingSpawn = config.Vec3{0, 3.5, 10}
	cfg.Level.KeyPosition = config.Vec3{40, 3.2, 40}
	return cfg
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func runUntilOver(t *testing.T, g *Game, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks && g.State() == StatePlaying; i++ {
		if err := g.Update(stepDT, systems.IntentNone); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
}

type recordingSink struct {
	snapshots []*telemetry.Snapshot
}

func (s *recordingSink) Broadcast(snap *telemetry.Snapshot) {
	s.snapshots = append(s.snapshots, snap)
}

// ---------- Level ----------

func TestBuildLevel_Defaults(t *testing.T) {
	cfg := testConfig(t)
	w, err := BuildLevel(cfg, newFakeView(), nil, quietLogger())
	if err != nil {
		t.Fatalf("BuildLevel: %v", err)
	}
	defer w.Close()

	wantStatics := 1 + len(cfg.Level.Boundaries) + len(cfg.Level.Walls)
	if got := len(w.Statics()); got != wantStatics {
		t.Errorf("expected %d statics, got %d", wantStatics, got)
	}
	if len(cfg.Level.Walls) != 74 {
		t.Errorf("expected 74 maze walls in the default level, got %d", len(cfg.Level.Walls))
	}
	if got := len(w.Patrols()); got != len(cfg.Level.Patrols) {
		t.Errorf("expected %d patrols, got %d", len(cfg.Level.Patrols), got)
	}
	if _, ok := w.Key(); !ok {
		t.Error("expected a key")
	}
	if w.PlayerPosition() != cfg.Level.PlayerSpawn.Vec() {
		t.Errorf("player not at spawn: %v", w.PlayerPosition())
	}

	drawn := 0
	w.ForEachVisible(func(RenderProxy) { drawn++ })
	if want := wantStatics + 1 + len(cfg.Level.Patrols); drawn != want {
		t.Errorf("expected %d visible proxies, got %d", want, drawn)
	}
}

func TestBuildLevel_RejectsBadWall(t *testing.T) {
	cfg := arenaConfig(t)
	cfg.Level.Walls = []config.BoxConfig{{Center: config.Vec3{0, 2, 0}, HalfExtents: config.Vec3{1, 0, 1}}}

	_, err := BuildLevel(cfg, newFakeView(), nil, quietLogger())
	if !errors.Is(err, ErrInvalidExtents) {
		t.Errorf("expected ErrInvalidExtents, got %v", err)
	}
}

// ---------- Rounds ----------

func TestGame_CaughtEndsRoundUntilRestart(t *testing.T) {
	g := newTestGame(t, Options{Config: arenaConfig(t)})

	runUntilOver(t, g, 2000)
	if g.State() != StateGameOver {
		t.Fatalf("expected game over, got %s", g.State())
	}

	frozen := g.Tick()
	if err := g.Update(stepDT, systems.IntentForward); err != nil {
		t.Fatal(err)
	}
	if g.Tick() != frozen {
		t.Error("world should not advance after game over")
	}

	rounds := g.Rounds()
	if len(rounds) != 1 || rounds[0].Outcome != telemetry.OutcomeCaught {
		t.Fatalf("expected one caught round, got %+v", rounds)
	}
	if rounds[0].Score < 1 {
		t.Errorf("expected a positive score for surviving several seconds, got %d", rounds[0].Score)
	}

	if err := g.Restart(); err != nil {
		t.Fatal(err)
	}
	if g.State() != StatePlaying {
		t.Errorf("expected playing after restart, got %s", g.State())
	}
	if s := g.World().Session(); s != (Session{}) {
		t.Errorf("expected cleared session after restart, got %+v", s)
	}
	if g.Round() != 2 {
		t.Errorf("expected round 2, got %d", g.Round())
	}
}

func TestGame_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		adjust  func(cfg *config.Config)
		state   State
		outcome string
	}{
		{
			name: "key at spawn wins",
			adjust: func(cfg *config.Config) {
				cfg.Level.KeyPosition = config.Vec3{0, 3.5, 1}
			},
			state:   StateWon,
			outcome: telemetry.OutcomeWon,
		},
		{
			name: "no floor falls",
			adjust: func(cfg *config.Config) {
				cfg.Level.Floor.Center = config.Vec3{0, -100, 0}
				cfg.Level.HomingSpawn = config.Vec3{0, 3.5, -45}
			},
			state:   StateGameOver,
			outcome: telemetry.OutcomeFell,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := arenaConfig(t)
			tt.adjust(cfg)
			g := newTestGame(t, Options{Config: cfg})

			runUntilOver(t, g, 600)
			if g.State() != tt.state {
				t.Fatalf("expected %s, got %s", tt.state, g.State())
			}
			rounds := g.Rounds()
			if len(rounds) != 1 || rounds[0].Outcome != tt.outcome {
				t.Errorf("expected outcome %q, got %+v", tt.outcome, rounds)
			}
		})
	}
}

func TestGame_ScoreAndDifficultyRamp(t *testing.T) {
	cfg := arenaConfig(t)
	cfg.Level.HomingSpawn = config.Vec3{0, 3.5, -45}
	cfg.Homing.RampInterval = 1
	g := newTestGame(t, Options{Config: cfg})

	for i := 0; i < 130; i++ {
		if err := g.Update(stepDT, systems.IntentNone); err != nil {
			t.Fatal(err)
		}
	}
	if g.State() != StatePlaying {
		t.Fatalf("round ended early: %s", g.State())
	}

	s := g.World().Session()
	if s.Score != 2 {
		t.Errorf("expected score 2 after ~2.2s, got %d", s.Score)
	}
	if s.HitCounter != 2 {
		t.Errorf("expected hit counter 2 after ~2.2s, got %d", s.HitCounter)
	}
}

// ---------- Telemetry ----------

func TestGame_WritesOutputFiles(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats
	g, err := NewGameWithOptions(Options{
		Config:         arenaConfig(t),
		Logger:         quietLogger(),
		OutputDir:      dir,
		StatsWindowSec: 1,
		OnStats:        func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatal(err)
	}

	runUntilOver(t, g, 2000)
	g.Unload()

	if len(windows) < 2 {
		t.Errorf("expected several stats windows, got %d", len(windows))
	}
	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "rounds.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "rounds.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var rounds []*telemetry.RoundStats
	if err := gocsv.UnmarshalFile(f, &rounds); err != nil {
		t.Fatalf("reading rounds.csv: %v", err)
	}
	if len(rounds) != 1 || rounds[0].Outcome != telemetry.OutcomeCaught {
		t.Errorf("expected the caught round in rounds.csv, got %d rows", len(rounds))
	}
}

func TestGame_SpectatorSnapshots(t *testing.T) {
	cfg := arenaConfig(t)
	cfg.Spectate.EveryNTicks = 3
	sink := &recordingSink{}
	g := newTestGame(t, Options{Config: cfg, Spectator: sink})

	for i := 0; i < 30; i++ {
		if err := g.Update(stepDT, systems.IntentNone); err != nil {
			t.Fatal(err)
		}
	}

	if len(sink.snapshots) != 10 {
		t.Fatalf("expected 10 snapshots, got %d", len(sink.snapshots))
	}
	last := sink.snapshots[len(sink.snapshots)-1]
	if last.Tick != 30 || last.State != "playing" {
		t.Errorf("unexpected last snapshot: tick %d state %s", last.Tick, last.State)
	}
	if last.Version != telemetry.SnapshotVersion {
		t.Errorf("expected version %d, got %d", telemetry.SnapshotVersion, last.Version)
	}
	if last.Key == nil {
		t.Error("expected the unclaimed key in the snapshot")
	}
	if last.Player.Position[1] <= 0 {
		t.Errorf("expected player above the floor, got %v", last.Player.Position)
	}
}

func TestGame_HeadlessAutopilot(t *testing.T) {
	g := newTestGame(t, Options{Config: testConfig(t)})

	for i := 0; i < 600; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if g.State() != StatePlaying {
			t.Fatalf("headless run should restart ended rounds, state %s", g.State())
		}
	}
	if g.Tick() != 600 {
		t.Errorf("expected 600 ticks, got %d", g.Tick())
	}
}
