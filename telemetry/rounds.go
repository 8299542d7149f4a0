package telemetry

import "math"

// Round outcomes.
const (
	OutcomeCaught = "caught"
	OutcomeFell   = "fell"
	OutcomeWon    = "won"
	OutcomeQuit   = "quit"
)

// RoundStats tracks one play-through from reset to game over.
type RoundStats struct {
	Round         int     `csv:"round"`
	StartTick     int32   `csv:"start_tick"`
	EndTick       int32   `csv:"end_tick"`
	SurvivalSec   float64 `csv:"survival_sec"`
	Outcome       string  `csv:"outcome"`
	Score         int     `csv:"score"`
	HitCounter    int     `csv:"hit_counter"`
	Jumps         int     `csv:"jumps"`
	Dashes        int     `csv:"dashes"`
	ClosestHoming float64 `csv:"closest_homing"`
	DistanceMoved float64 `csv:"distance_moved"`
}

// RoundTracker manages the statistics of the current round.
type RoundTracker struct {
	current RoundStats
	dt      float64
	history []RoundStats
}

// NewRoundTracker creates a tracker whose first round starts at tick 0.
func NewRoundTracker(dt float64) *RoundTracker {
	rt := &RoundTracker{dt: dt}
	rt.begin(1, 0)
	return rt
}

func (rt *RoundTracker) begin(round int, tick int32) {
	rt.current = RoundStats{
		Round:         round,
		StartTick:     tick,
		ClosestHoming: math.Inf(1),
	}
}

// Current returns the in-progress round.
func (rt *RoundTracker) Current() RoundStats {
	return rt.current
}

// Record updates the round from a telemetry event.
func (rt *RoundTracker) Record(ev Event) {
	switch ev.Type {
	case EventJump:
		rt.current.Jumps++
	case EventDash:
		rt.current.Dashes++
	}
}

// Sample updates per-tick measurements.
func (rt *RoundTracker) Sample(homingDistance, moved float64) {
	if homingDistance < rt.current.ClosestHoming {
		rt.current.ClosestHoming = homingDistance
	}
	rt.current.DistanceMoved += moved
}

// End closes the current round, starts the next one and returns the closed round.
func (rt *RoundTracker) End(tick int32, outcome string, score, hitCounter int) RoundStats {
	done := rt.current
	done.EndTick = tick
	done.SurvivalSec = float64(tick-done.StartTick) * rt.dt
	done.Outcome = outcome
	done.Score = score
	done.HitCounter = hitCounter
	if math.IsInf(done.ClosestHoming, 1) {
		done.ClosestHoming = 0
	}

	rt.history = append(rt.history, done)
	rt.begin(done.Round+1, tick)
	return done
}

// History returns all finished rounds.
func (rt *RoundTracker) History() []RoundStats {
	return rt.history
}

// Count returns the number of finished rounds.
func (rt *RoundTracker) Count() int {
	return len(rt.history)
}

// BestSurvival returns the longest finished round, or false if none has ended.
func (rt *RoundTracker) BestSurvival() (RoundStats, bool) {
	if len(rt.history) == 0 {
		return RoundStats{}, false
	}
	best := rt.history[0]
	for _, r := range rt.history[1:] {
		if r.SurvivalSec > best.SurvivalSec {
			best = r
		}
	}
	return best, true
}
