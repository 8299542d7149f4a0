package telemetry

import (
	"math"
	"testing"
)

func TestCollector_WindowLength(t *testing.T) {
	c := NewCollector(10, 1.0/60)
	if got := c.WindowDurationTicks(); got != 600 && got != 599 {
		t.Fatalf("expected ~600 ticks per window, got %d", got)
	}
	if c.ShouldFlush(c.WindowDurationTicks() - 1) {
		t.Error("flush requested before window end")
	}
	if !c.ShouldFlush(c.WindowDurationTicks()) {
		t.Error("flush not requested at window end")
	}

	tiny := NewCollector(0, 1.0/60)
	if tiny.WindowDurationTicks() != 1 {
		t.Errorf("expected minimum window of 1 tick, got %d", tiny.WindowDurationTicks())
	}
}

func TestCollector_FlushCountsAndResets(t *testing.T) {
	c := NewCollector(1, 0.5)

	c.Record(NewEvent(EventHit, 1))
	c.Record(NewEvent(EventHit, 1))
	c.Record(NewEvent(EventDash, 1))
	c.Record(NewEvent(EventJump, 2))
	c.Sample(4, 12)
	c.Sample(2, 0)

	if c.Count(EventHit) != 2 {
		t.Errorf("expected 2 hits before flush, got %d", c.Count(EventHit))
	}

	stats := c.Flush(2, SessionTotals{Score: 7, HitCounter: 2, Round: 1})
	if stats.Hits != 2 || stats.Dashes != 1 || stats.Jumps != 1 || stats.Deaths != 0 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.Score != 7 || stats.HitCounter != 2 || stats.Round != 1 {
		t.Errorf("session totals not copied: %+v", stats)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("sim time = %v, want 1.0", stats.SimTimeSec)
	}
	if stats.HomingDistMin != 2 || math.Abs(stats.HomingDistMean-3) > 1e-9 {
		t.Errorf("distance stats = min %v mean %v, want 2/3", stats.HomingDistMin, stats.HomingDistMean)
	}
	if math.Abs(stats.PlayerSpeedMean-6) > 1e-9 {
		t.Errorf("speed mean = %v, want 6", stats.PlayerSpeedMean)
	}

	next := c.Flush(4, SessionTotals{})
	if next.Hits != 0 || next.HomingDistMean != 0 {
		t.Errorf("expected empty second window, got %+v", next)
	}
	if next.WindowStartTick != 2 {
		t.Errorf("expected second window to start at 2, got %d", next.WindowStartTick)
	}
}
