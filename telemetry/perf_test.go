package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/brainmaze/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewStepPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhasePlayer)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.PhaseSolve)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[systems.PhasePlayer]; !ok {
		t.Error("expected player phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[systems.PhaseSolve]; !ok {
		t.Error("expected solve phase to be tracked")
	}
	// phases that never ran are omitted
	if _, ok := stats.PhaseAvg[systems.PhaseSync]; ok {
		t.Error("expected untouched sync phase to be absent")
	}

	row := stats.ToCSV(600)
	if row.WindowEnd != 600 || row.SolvePct <= 0 {
		t.Errorf("unexpected csv row: %+v", row)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase("solve")
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v exceeds max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

// spin busy-waits for d; sleeps are too coarse on some hosts.
func spin(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		pc.StartPhase("slow")
		spin(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
	if got := pc.Phases(); len(got) != 2 || got[0] != "fast" || got[1] != "slow" {
		t.Errorf("expected phases [fast slow], got %v", got)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms frame time, got %v", stats.FPS)
	}
}
