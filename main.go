package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/brainmaze/camera"
	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/game"
	"github.com/pthm-cable/brainmaze/inspector"
	"github.com/pthm-cable/brainmaze/renderer"
	"github.com/pthm-cable/brainmaze/spectate"
	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/ui"
)

// maxFrameDT caps the step after a stalled frame (window drag, breakpoint).
const maxFrameDT = 0.1

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics under the autopilot")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	spectateAddr := flag.String("spectate", "", "Serve the spectator stream on this address (overrides config)")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Config:         cfg,
		Logger:         logger,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
	}

	addr := cfg.Spectate.Addr
	if *spectateAddr != "" {
		addr = *spectateAddr
	}
	if addr != "" {
		hub := spectate.NewHub(cfg.Spectate, logger)
		opts.Spectator = hub
		go func() {
			if err := hub.ListenAndServe(ctx, addr); err != nil {
				logger.Error("spectator stream stopped", "error", err)
			}
		}()
	}

	if *headless {
		runHeadless(ctx, opts, *maxTicks)
		return
	}
	runGraphical(ctx, opts, *maxTicks)
}

func runHeadless(ctx context.Context, opts game.Options, maxTicks int) {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"dt", opts.Config.Physics.DT,
		"max_ticks", maxTicks,
		"output_dir", opts.OutputDir,
	)

	for ctx.Err() == nil {
		if err := g.UpdateHeadless(); err != nil {
			slog.Error("step failed", "tick", g.Tick(), "error", err)
			return
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "rounds", len(g.Rounds()))
			return
		}
	}
	slog.Info("interrupted", "tick", g.Tick())
}

func runGraphical(ctx context.Context, opts game.Options, maxTicks int) {
	cfg := opts.Config
	width, height := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(width, height, "Brain Maze")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.DisableCursor()

	cam := camera.NewFromConfig(cfg.Camera)
	opts.Camera = cam
	opts.Proxies = renderer.NewFactory()

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	scene := renderer.NewSceneRenderer(width, height, cfg.Homing.HitRadius, cfg.Patrol.HitRadius)
	hud := ui.NewHUD(260)
	perf := ui.NewPerfPanel(width-330, 10, 320)
	ins := inspector.NewInspector(width)
	overlays := ui.NewOverlayRegistry()
	controls := ui.NewControlsPanel(10, 240, 260)
	endScreen := ui.NewEndScreen()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if rl.IsWindowResized() {
			width, height = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
			scene.Resize(width, height)
			perf = ui.NewPerfPanel(width-330, 10, 320)
			ins.Resize(width)
		}

		overlays.HandleInput()
		if overlays.IsEnabled(ui.OverlayInspector) {
			ins.HandleInput(g.World())
		}

		if g.State() == game.StatePlaying {
			ui.HandleCursorToggle()
			ui.Look(cam)
			dt := float64(rl.GetFrameTime())
			if dt > maxFrameDT {
				dt = maxFrameDT
			}
			if dt > 0 {
				if err := g.Update(dt, ui.ReadIntent()); err != nil {
					slog.Error("step failed", "tick", g.Tick(), "error", err)
					return
				}
			}
		}
		g.RecordFrame()

		quit := draw(g, scene, hud, perf, ins, overlays, controls, endScreen, width, height)
		if quit {
			break
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
}

func draw(
	g *game.Game,
	scene *renderer.SceneRenderer,
	hud *ui.HUD,
	perf *ui.PerfPanel,
	ins *inspector.Inspector,
	overlays *ui.OverlayRegistry,
	controls *ui.ControlsPanel,
	endScreen *ui.EndScreen,
	width, height int32,
) (quit bool) {
	w := g.World()
	cfg := g.Config()
	data := hudData(g)

	threat := float32(0)
	if cfg.Derived.MaxHitCounter > 0 {
		threat = float32(data.HitCounter) / float32(cfg.Derived.MaxHitCounter)
	}

	rl.BeginDrawing()
	defer rl.EndDrawing()

	scene.Draw(w, g.Camera(), threat, data.Elapsed, renderer.Overlays{
		Hitboxes: overlays.IsEnabled(ui.OverlayHitboxes),
		HitRadii: overlays.IsEnabled(ui.OverlayHitRadii),
		Routes:   overlays.IsEnabled(ui.OverlayRoutes),
	})

	hud.Draw(data, width, height)
	hud.DrawControls(width, height, "WASD move  SPACE jump  SHIFT dash  2 cursor  TAB overlays  ESC quit")
	if overlays.IsEnabled(ui.OverlayControls) {
		controls.Draw(overlays)
	}
	if overlays.IsEnabled(ui.OverlayPerf) {
		perf.Draw(g.PerfStats())
	}
	if overlays.IsEnabled(ui.OverlayInspector) {
		ins.Draw(w)
	}

	if g.State() == game.StatePlaying {
		return false
	}

	rl.EnableCursor()
	end := ui.EndScreenData{
		Won:         g.State() == game.StateWon,
		Round:       g.Round(),
		Sensitivity: float32(g.Camera().Sensitivity),
	}
	if rounds := g.Rounds(); len(rounds) > 0 {
		last := rounds[len(rounds)-1]
		end.Reason = last.Outcome
		end.Score = last.Score
		end.SurvivalSec = last.SurvivalSec
	}

	action, sens := endScreen.Draw(end, width, height)
	g.Camera().Sensitivity = float64(sens)
	switch action {
	case ui.MenuRestart:
		if err := g.Restart(); err != nil {
			slog.Error("restart failed", "error", err)
			return true
		}
		rl.DisableCursor()
	case ui.MenuQuit:
		return true
	}
	return false
}

func hudData(g *game.Game) ui.HUDData {
	w := g.World()
	cfg := g.Config()
	s := w.Session()

	data := ui.HUDData{
		Round:         g.Round(),
		Score:         s.Score,
		HitCounter:    s.HitCounter,
		MaxHitCounter: cfg.Derived.MaxHitCounter,
		Elapsed:       s.Elapsed,
		HitRadius:     cfg.Homing.HitRadius,
		KeyDistance:   -1,
		Tick:          g.Tick(),
		FPS:           rl.GetFPS(),
	}
	if p := w.Player(); p != nil {
		data.Dash = p.Dash.String()
		data.Grounded = p.Ground == systems.Grounded
	}
	pos := w.PlayerPosition()
	if hp, ok := w.HomingPosition(); ok {
		data.HomingDistance = hp.Sub(pos).Len()
	}
	if key, ok := w.Key(); ok && !s.KeyFound {
		data.KeyDistance = key.Position.Sub(pos).Len()
	}
	return data
}
