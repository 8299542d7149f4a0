package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/brainmaze/config"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector(loadDefaults(t))
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestParamVector_ClampRoundsIntegers(t *testing.T) {
	pv := NewParamVector(loadDefaults(t))
	got := pv.Clamp([]float64{12.6, 100, -1})
	if got[0] != 13 {
		t.Errorf("force_divisor: expected 13, got %v", got[0])
	}
	if got[1] != pv.Specs[1].Max {
		t.Errorf("ramp_interval: expected clamp to %v, got %v", pv.Specs[1].Max, got[1])
	}
	if got[2] != pv.Specs[2].Min {
		t.Errorf("linear_damping: expected clamp to %v, got %v", pv.Specs[2].Min, got[2])
	}
}

func TestParamVector_ApplyRefreshesDerived(t *testing.T) {
	cfg := loadDefaults(t)
	pv := NewParamVector(cfg)
	if err := pv.ApplyToConfig(cfg, []float64{8, 5, 0.5}); err != nil {
		t.Fatal(err)
	}
	if cfg.Homing.ForceDivisor != 8 || cfg.Derived.MaxHitCounter != 7 {
		t.Errorf("expected K=8 and max hit counter 7, got %d and %d", cfg.Homing.ForceDivisor, cfg.Derived.MaxHitCounter)
	}
	if cfg.Homing.RampInterval != 5 || cfg.Homing.LinearDamping != 0.5 {
		t.Errorf("unexpected homing config %+v", cfg.Homing)
	}
}

func TestEvaluator_FasterRampCatchesSooner(t *testing.T) {
	if testing.Short() {
		t.Skip("runs several simulations")
	}
	base := loadDefaults(t)
	pv := NewParamVector(base)
	ev := NewEvaluator(pv, base, 20, 60)
	ev.distances = []float64{15, 25}

	ev.Evaluate([]float64{20, 30, 0})
	slow, _ := ev.Last()
	ev.Evaluate([]float64{20, 1, 0})
	fast, _ := ev.Last()

	if !(fast < slow) {
		t.Errorf("expected a 1s ramp to catch sooner than a 30s ramp: %.1fs vs %.1fs", fast, slow)
	}
}
