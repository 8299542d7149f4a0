package game

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/pthm-cable/brainmaze/camera"
	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/telemetry"
	"github.com/pthm-cable/brainmaze/transform"
)

// State is the round state of a Game.
type State uint8

const (
	StatePlaying State = iota
	StateGameOver
	StateWon
)

func (s State) String() string {
	switch s {
	case StateGameOver:
		return "game_over"
	case StateWon:
		return "won"
	}
	return "playing"
}

// SnapshotSink receives frame snapshots for live spectators.
type SnapshotSink interface {
	Broadcast(s *telemetry.Snapshot)
}

// Options configures a Game.
type Options struct {
	Config  *config.Config // nil uses config.Cfg()
	Camera  *camera.FPS    // nil creates one from the camera config
	Proxies ProxyFactory   // nil uses HeadlessProxies
	Logger  *slog.Logger

	LogStats       bool
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	SnapshotDir    string
	OutputDir      string

	Spectator SnapshotSink
	OnStats   func(telemetry.WindowStats)
}

// Game drives rounds on a World: it applies the score and difficulty rules,
// decides game over and win, and feeds telemetry.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger
	world  *World
	camera *camera.FPS

	autopilot *Autopilot

	state      State
	tick       int32
	scoreClock float64
	rampClock  float64
	lastPos    mgl64.Vec3
	unloaded   bool

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	roundTracker     *telemetry.RoundTracker
	outputManager    *telemetry.OutputManager
	spectator        SnapshotSink
	snapshotDir      string
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
}

// NewGameWithOptions builds the configured level and its telemetry.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cam := opts.Camera
	if cam == nil {
		cam = camera.NewFromConfig(cfg.Camera)
	}

	world, err := BuildLevel(cfg, cam, opts.Proxies, logger)
	if err != nil {
		return nil, fmt.Errorf("building level: %w", err)
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:    cfg,
		logger: logger,
		world:  world,
		camera: cam,

		autopilot: NewAutopilot(3 * cfg.Homing.HitRadius),

		collector:        telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector:    telemetry.NewStepPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10, cfg.Homing.HitRadius),
		roundTracker:     telemetry.NewRoundTracker(cfg.Physics.DT),
		spectator:        opts.Spectator,
		snapshotDir:      opts.SnapshotDir,
		logStats:         opts.LogStats,
		statsCallback:    opts.OnStats,
	}
	world.SetPhaseTimer(g.perfCollector)
	g.lastPos = world.PlayerPosition()

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			world.Close()
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			logger.Error("failed to write config", "error", err)
		}
		g.outputManager = om
	}

	return g, nil
}

// Update advances one step with the given intent. Nothing moves once the
// round is over until Restart is called.
func (g *Game) Update(dt float64, intent systems.Intent) error {
	if g.state != StatePlaying {
		return nil
	}

	g.perfCollector.StartTick()
	g.world.SetIntent(intent)
	if err := g.world.Advance(dt); err != nil {
		g.perfCollector.EndTick()
		return err
	}

	g.perfCollector.StartPhase(systems.PhaseTelemetry)
	g.tick++
	g.recordStep(dt)
	g.updateCounters(dt)
	g.checkOutcome()
	g.flushTelemetry()
	g.broadcast()
	g.perfCollector.EndTick()
	return nil
}

// UpdateHeadless steps once at the fixed dt under the autopilot and starts a
// new round as soon as the current one ends.
func (g *Game) UpdateHeadless() error {
	intent := g.autopilot.Intent(g.world, g.camera)
	if err := g.Update(g.cfg.Physics.DT, intent); err != nil {
		return err
	}
	if g.state != StatePlaying {
		return g.Restart()
	}
	return nil
}

// Restart resets the world and begins a new round.
func (g *Game) Restart() error {
	if err := g.world.ResetGame(); err != nil {
		return err
	}
	g.state = StatePlaying
	g.scoreClock = 0
	g.rampClock = 0
	g.lastPos = g.world.PlayerPosition()
	g.autopilot.Reset()

	ev := telemetry.NewEvent(telemetry.EventReset, g.tick)
	g.collector.Record(ev)
	g.roundTracker.Record(ev)
	return nil
}

// recordStep turns the player's step report into events and samples.
func (g *Game) recordStep(dt float64) {
	step := g.world.LastPlayerStep()
	if step.Jumped {
		g.record(telemetry.EventJump)
	}
	if step.Dashed {
		g.record(telemetry.EventDash)
	}

	pos := g.world.PlayerPosition()
	moved := transform.Distance(pos, g.lastPos)
	g.lastPos = pos

	homingDist := 0.0
	if hp, ok := g.world.HomingPosition(); ok {
		homingDist = transform.Distance(hp, pos)
	}
	g.collector.Sample(homingDist, moved/dt)
	g.roundTracker.Sample(homingDist, moved)
}

// updateCounters awards one point per survived second and raises the hit
// counter every homing.ramp_interval seconds.
func (g *Game) updateCounters(dt float64) {
	g.scoreClock += dt
	for g.scoreClock >= 1 {
		g.scoreClock--
		g.world.SetScoreCounter(g.world.ScoreCounter() + 1)
	}

	interval := g.cfg.Homing.RampInterval
	if interval <= 0 {
		return
	}
	g.rampClock += dt
	for g.rampClock >= interval {
		g.rampClock -= interval
		g.world.SetHitCounter(g.world.HitCounter() + 1)
	}
}

// checkOutcome ends the round on a win, a fall or a hit, in that order.
func (g *Game) checkOutcome() {
	switch {
	case g.world.Session().KeyFound:
		g.record(telemetry.EventKeyFound)
		g.endRound(StateWon, telemetry.OutcomeWon)
	case g.world.IsPlayerDead():
		g.record(telemetry.EventDeath)
		g.endRound(StateGameOver, telemetry.OutcomeFell)
	case g.world.IsPlayerHit():
		g.record(telemetry.EventHit)
		g.endRound(StateGameOver, telemetry.OutcomeCaught)
	}
}

func (g *Game) endRound(state State, outcome string) {
	g.state = state
	round := g.roundTracker.End(g.tick, outcome, g.world.ScoreCounter(), g.world.HitCounter())

	g.logger.Info("round over",
		"round", round.Round,
		"outcome", outcome,
		"survival_sec", round.SurvivalSec,
		"score", round.Score,
		"hit_counter", round.HitCounter,
	)

	if g.outputManager != nil {
		if err := g.outputManager.WriteRound(round); err != nil {
			g.logger.Error("failed to write round", "error", err)
		}
	}
}

func (g *Game) record(t telemetry.EventType) {
	ev := telemetry.NewEvent(t, g.tick)
	g.collector.Record(ev)
	g.roundTracker.Record(ev)
}

// RecordFrame records render frame timing in graphical mode.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// PerfStats returns step timing over the recent window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// Tick returns the number of completed steps.
func (g *Game) Tick() int32 { return g.tick }

// State returns the current round state.
func (g *Game) State() State { return g.state }

// Round returns the number of the round in progress, or of the round that just ended.
func (g *Game) Round() int {
	if g.state != StatePlaying {
		return g.roundTracker.Count()
	}
	return g.roundTracker.Current().Round
}

// Rounds returns every finished round.
func (g *Game) Rounds() []telemetry.RoundStats {
	return g.roundTracker.History()
}

// World returns the simulated world.
func (g *Game) World() *World { return g.world }

// Camera returns the player's camera.
func (g *Game) Camera() *camera.FPS { return g.camera }

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config { return g.cfg }

// Unload closes output files and releases the physics backend.
func (g *Game) Unload() {
	if g.unloaded {
		return
	}
	g.unloaded = true
	if g.state == StatePlaying && g.tick > 0 {
		g.endRound(StatePlaying, telemetry.OutcomeQuit)
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			g.logger.Error("failed to close output", "error", err)
		}
	}
	g.world.Close()
}
