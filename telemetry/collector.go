package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	counts [numEventTypes]int

	// Per-tick samples for current window
	homingDistances []float64
	playerSpeeds    []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		homingDistances:     make([]float64, 0, ticksPerWindow),
		playerSpeeds:        make([]float64, 0, ticksPerWindow),
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	if int(ev.Type) < len(c.counts) {
		c.counts[ev.Type]++
	}
}

// Count returns the number of events of type t in the current window.
func (c *Collector) Count(t EventType) int {
	if int(t) >= len(c.counts) {
		return 0
	}
	return c.counts[t]
}

// Sample records per-tick measurements.
func (c *Collector) Sample(homingDistance, playerSpeed float64) {
	c.homingDistances = append(c.homingDistances, homingDistance)
	c.playerSpeeds = append(c.playerSpeeds, playerSpeed)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// SessionTotals holds the session counters at flush time.
type SessionTotals struct {
	Score      int
	HitCounter int
	Round      int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, totals SessionTotals) WindowStats {
	dist := ComputeDistanceStats(c.homingDistances)
	speedMean, _ := MeanStd(c.playerSpeeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Round:      totals.Round,
		Score:      totals.Score,
		HitCounter: totals.HitCounter,

		Hits:      c.counts[EventHit],
		Deaths:    c.counts[EventDeath],
		Resets:    c.counts[EventReset],
		Jumps:     c.counts[EventJump],
		Dashes:    c.counts[EventDash],
		KeysFound: c.counts[EventKeyFound],

		HomingDistMean: dist.Mean,
		HomingDistStd:  dist.Std,
		HomingDistMin:  dist.Min,
		HomingDistP10:  dist.P10,
		HomingDistP50:  dist.P50,
		HomingDistP90:  dist.P90,

		PlayerSpeedMean: speedMean,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.counts = [numEventTypes]int{}
	c.homingDistances = c.homingDistances[:0]
	c.playerSpeeds = c.playerSpeeds[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
