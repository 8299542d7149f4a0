package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/brainmaze/systems"
)

// PerfCollector tracks per-phase step timing over a rolling window of ticks.
// Phases are indexed in registration order; unknown phase names are added on
// first use.
type PerfCollector struct {
	window int
	phases []string
	index  map[string]int

	// Ring buffers, one slot per tick
	ticks    []time.Duration
	phaseDur [][]time.Duration
	write    int
	count    int

	current    []time.Duration
	tickStart  time.Time
	phaseStart time.Time
	active     int // index into phases, -1 when no phase is open

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over window ticks with the
// given phases pre-registered.
func NewPerfCollector(window int, phases ...string) *PerfCollector {
	if window < 1 {
		window = 60
	}
	p := &PerfCollector{
		window: window,
		index:  make(map[string]int),
		ticks:  make([]time.Duration, window),
		active: -1,
	}
	for _, name := range phases {
		p.phaseIndex(name)
	}
	return p
}

// NewStepPerfCollector creates a collector with the world step phases.
func NewStepPerfCollector(window int) *PerfCollector {
	return NewPerfCollector(window, systems.NewSystemRegistry().IDs()...)
}

func (p *PerfCollector) phaseIndex(name string) int {
	if i, ok := p.index[name]; ok {
		return i
	}
	i := len(p.phases)
	p.phases = append(p.phases, name)
	p.index[name] = i
	p.phaseDur = append(p.phaseDur, make([]time.Duration, p.window))
	p.current = append(p.current, 0)
	return i
}

// Phases returns the known phase names in order.
func (p *PerfCollector) Phases() []string {
	return p.phases
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	for i := range p.current {
		p.current[i] = 0
	}
	p.active = -1
}

// StartPhase closes the open phase, if any, and starts timing the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.active = p.phaseIndex(phase)
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.active >= 0 {
		p.current[p.active] += now.Sub(p.phaseStart)
		p.active = -1
	}
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)

	p.ticks[p.write] = now.Sub(p.tickStart)
	for i, d := range p.current {
		p.phaseDur[i][p.write] = d
	}
	p.write = (p.write + 1) % p.window
	if p.count < p.window {
		p.count++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations and share of the average tick)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, len(p.phases)),
		PhasePct:      make(map[string]float64, len(p.phases)),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.count == 0 {
		return stats
	}

	var total time.Duration
	for i := 0; i < p.count; i++ {
		d := p.ticks[i]
		total += d
		if i == 0 || d < stats.MinTickDuration {
			stats.MinTickDuration = d
		}
		if d > stats.MaxTickDuration {
			stats.MaxTickDuration = d
		}
	}
	stats.AvgTickDuration = total / time.Duration(p.count)
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}

	for pi, name := range p.phases {
		var sum time.Duration
		for i := 0; i < p.count; i++ {
			sum += p.phaseDur[pi][i]
		}
		if sum == 0 {
			continue
		}
		avg := sum / time.Duration(p.count)
		stats.PhaseAvg[name] = avg
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[name] = float64(avg) / float64(stats.AvgTickDuration) * 100
		}
	}

	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range stepPhases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

var stepPhases = []string{
	systems.PhasePlayer, systems.PhaseHoming, systems.PhasePatrol,
	systems.PhaseSolve, systems.PhaseSync, systems.PhaseTelemetry,
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PlayerPct    float64 `csv:"player_pct"`
	HomingPct    float64 `csv:"homing_pct"`
	PatrolPct    float64 `csv:"patrol_pct"`
	SolvePct     float64 `csv:"solve_pct"`
	SyncPct      float64 `csv:"sync_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PlayerPct:    s.PhasePct[systems.PhasePlayer],
		HomingPct:    s.PhasePct[systems.PhaseHoming],
		PatrolPct:    s.PhasePct[systems.PhasePatrol],
		SolvePct:     s.PhasePct[systems.PhaseSolve],
		SyncPct:      s.PhasePct[systems.PhaseSync],
		TelemetryPct: s.PhasePct[systems.PhaseTelemetry],
	}
}
