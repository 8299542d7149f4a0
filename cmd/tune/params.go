package main

import (
	"math"

	"github.com/pthm-cable/brainmaze/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string
	Path    string // config path for logging
	Min     float64
	Max     float64
	Default float64
	Integer bool // rounded before use
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the homing difficulty parameters, defaulted from cfg.
func NewParamVector(cfg *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "force_divisor", Path: "homing.force_divisor", Min: 4, Max: 60, Default: float64(cfg.Homing.ForceDivisor), Integer: true},
			{Name: "ramp_interval", Path: "homing.ramp_interval", Min: 1, Max: 30, Default: cfg.Homing.RampInterval},
			{Name: "linear_damping", Path: "homing.linear_damping", Min: 0, Max: 2, Default: cfg.Homing.LinearDamping},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to the [0,1] search space.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return out
}

// Clamp bounds every value and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Min(math.Max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		out[i] = val
	}
	return out
}

// ApplyToConfig writes clamped values into cfg and refreshes derived values.
// Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	v := pv.Clamp(values)
	cfg.Homing.ForceDivisor = int(v[0])
	cfg.Homing.RampInterval = v[1]
	cfg.Homing.LinearDamping = v[2]
	return cfg.Finalize()
}
