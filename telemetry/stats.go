package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Session state at window end
	Round      int `csv:"round"`
	Score      int `csv:"score"`
	HitCounter int `csv:"hit_counter"`

	// Events during window
	Hits      int `csv:"hits"`
	Deaths    int `csv:"deaths"`
	Resets    int `csv:"resets"`
	Jumps     int `csv:"jumps"`
	Dashes    int `csv:"dashes"`
	KeysFound int `csv:"keys_found"`

	// Homing actor distance to the player (sampled every tick)
	HomingDistMean float64 `csv:"homing_dist_mean"`
	HomingDistStd  float64 `csv:"homing_dist_std"`
	HomingDistMin  float64 `csv:"homing_dist_min"`
	HomingDistP10  float64 `csv:"homing_dist_p10"`
	HomingDistP50  float64 `csv:"homing_dist_p50"`
	HomingDistP90  float64 `csv:"homing_dist_p90"`

	PlayerSpeedMean float64 `csv:"player_speed_mean"`
}

// DistanceStats summarizes a set of distance samples.
type DistanceStats struct {
	Mean, Std     float64
	Min           float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// MeanStd returns the mean and sample standard deviation. Fewer than two
// values give a zero deviation.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	mean, std = stat.MeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// ComputeDistanceStats calculates mean, deviation, minimum and percentiles.
func ComputeDistanceStats(values []float64) DistanceStats {
	if len(values) == 0 {
		return DistanceStats{}
	}

	var ds DistanceStats
	ds.Mean, ds.Std = MeanStd(values)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	ds.Min = sorted[0]
	ds.P10 = Percentile(sorted, 0.10)
	ds.P50 = Percentile(sorted, 0.50)
	ds.P90 = Percentile(sorted, 0.90)
	return ds
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("round", s.Round),
		slog.Int("score", s.Score),
		slog.Int("hit_counter", s.HitCounter),
		slog.Int("hits", s.Hits),
		slog.Int("deaths", s.Deaths),
		slog.Int("resets", s.Resets),
		slog.Int("jumps", s.Jumps),
		slog.Int("dashes", s.Dashes),
		slog.Int("keys_found", s.KeysFound),
		slog.Float64("homing_dist_mean", s.HomingDistMean),
		slog.Float64("homing_dist_std", s.HomingDistStd),
		slog.Float64("homing_dist_min", s.HomingDistMin),
		slog.Float64("homing_dist_p50", s.HomingDistP50),
		slog.Float64("player_speed_mean", s.PlayerSpeedMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"round", s.Round,
		"score", s.Score,
		"hit_counter", s.HitCounter,
		"hits", s.Hits,
		"deaths", s.Deaths,
		"resets", s.Resets,
		"jumps", s.Jumps,
		"dashes", s.Dashes,
		"keys_found", s.KeysFound,
		"homing_dist_mean", s.HomingDistMean,
		"homing_dist_min", s.HomingDistMin,
		"homing_dist_p10", s.HomingDistP10,
		"homing_dist_p90", s.HomingDistP90,
		"player_speed_mean", s.PlayerSpeedMean,
	)
}
