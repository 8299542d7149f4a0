package game

// Session holds the counters of the current round.
type Session struct {
	Score      int
	HitCounter int
	KeyFound   bool
	Elapsed    float64 // simulated seconds since the last reset
	Frames     int64
}
