package main

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/brainmaze/config"
	"github.com/pthm-cable/brainmaze/game"
	"github.com/pthm-cable/brainmaze/systems"
	"github.com/pthm-cable/brainmaze/telemetry"
)

// Evaluator scores parameter vectors by how long an idle player survives the
// homing actor, compared to a target catch time.
type Evaluator struct {
	params    *ParamVector
	base      *config.Config
	target    float64   // seconds
	maxSec    float64   // cap for a run that never catches
	distances []float64 // homing spawn distances, one run each

	mu       sync.Mutex
	lastMean float64
	lastStd  float64
}

// NewEvaluator creates an evaluator for catches around target seconds.
func NewEvaluator(params *ParamVector, base *config.Config, target, maxSec float64) *Evaluator {
	return &Evaluator{
		params:    params,
		base:      base,
		target:    target,
		maxSec:    maxSec,
		distances: []float64{10, 20, 35},
	}
}

// Last returns the mean and standard deviation of catch times from the most
// recent Evaluate call.
func (e *Evaluator) Last() (mean, std float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastMean, e.lastStd
}

// Evaluate returns the fitness for raw parameter values (lower is better):
// the squared relative miss of the mean catch time plus a spread penalty.
func (e *Evaluator) Evaluate(raw []float64) float64 {
	cfg := *e.base
	if err := e.params.ApplyToConfig(&cfg, raw); err != nil {
		return 1e9
	}

	times := make([]float64, len(e.distances))
	var wg sync.WaitGroup
	for i, d := range e.distances {
		wg.Add(1)
		go func(i int, d float64) {
			defer wg.Done()
			times[i] = e.catchTime(cfg, d)
		}(i, d)
	}
	wg.Wait()

	mean, std := stat.MeanStdDev(times, nil)
	e.mu.Lock()
	e.lastMean, e.lastStd = mean, std
	e.mu.Unlock()

	miss := (mean - e.target) / e.target
	spread := std / e.target
	return miss*miss + 0.1*spread*spread
}

// catchTime runs an open-floor arena with the homing actor dist units from
// an idle player and returns the simulated seconds until the hit.
func (e *Evaluator) catchTime(cfg config.Config, dist float64) float64 {
	spawn := cfg.Level.PlayerSpawn
	cfg.Level.Boundaries = nil
	cfg.Level.Walls = nil
	cfg.Level.Patrols = nil
	cfg.Level.HomingSpawn = config.Vec3{spawn[0], spawn[1], spawn[2] + dist}
	cfg.Level.KeyPosition = config.Vec3{spawn[0] + 1000, spawn[1], spawn[2]}

	g, err := game.NewGameWithOptions(game.Options{
		Config: &cfg,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		return e.maxSec
	}
	defer g.Unload()

	maxTicks := int(e.maxSec / cfg.Physics.DT)
	for i := 0; i < maxTicks && g.State() == game.StatePlaying; i++ {
		if err := g.Update(cfg.Physics.DT, systems.IntentNone); err != nil {
			return e.maxSec
		}
	}

	rounds := g.Rounds()
	if len(rounds) == 0 || rounds[0].Outcome != telemetry.OutcomeCaught {
		return e.maxSec
	}
	return rounds[0].SurvivalSec
}
