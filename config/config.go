// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Material  MaterialConfig  `yaml:"material"`
	Player    PlayerConfig    `yaml:"player"`
	Camera    CameraConfig    `yaml:"camera"`
	Homing    HomingConfig    `yaml:"homing"`
	Patrol    PatrolConfig    `yaml:"patrol"`
	Key       KeyConfig       `yaml:"key"`
	Level     LevelConfig     `yaml:"level"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Spectate  SpectateConfig  `yaml:"spectate"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a YAML-friendly [x, y, z] triple.
type Vec3 [3]float64

// Vec returns the triple as an mgl64 vector.
func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds scene parameters.
type PhysicsConfig struct {
	DT                float64 `yaml:"dt"`                 // Fixed step used by headless runs
	Gravity           Vec3    `yaml:"gravity"`            // Applied to gravity-enabled dynamic bodies
	Workers           int     `yaml:"workers"`            // Dispatcher size (0 = GOMAXPROCS)
	ParallelThreshold int     `yaml:"parallel_threshold"` // Dynamic body count below which integration stays on the caller
}

// MaterialConfig describes the shared surface material.
type MaterialConfig struct {
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
	Restitution     float64 `yaml:"restitution"`
}

// PlayerConfig holds character controller tuning. Velocities are in units per second.
type PlayerConfig struct {
	HalfExtents         Vec3    `yaml:"half_extents"`
	StepOffset          float64 `yaml:"step_offset"`
	MinMoveDistance     float64 `yaml:"min_move_distance"`
	Speed               float64 `yaml:"speed"`
	JumpVelocity        float64 `yaml:"jump_velocity"`
	Gravity             float64 `yaml:"gravity"`               // Airborne downward acceleration
	MaxFallSpeed        float64 `yaml:"max_fall_speed"`        // Terminal downward speed while airborne
	GroundStickVelocity float64 `yaml:"ground_stick_velocity"` // Downward speed applied while grounded
	GroundFootHeight    float64 `yaml:"ground_foot_height"`    // Foot height treated as ground contact
	AirborneTimeout     float64 `yaml:"airborne_timeout"`      // Seconds after which a jump is forced back to grounded
	DashFactor          float64 `yaml:"dash_factor"`
	DashDuration        float64 `yaml:"dash_duration"`
	DashCooldown        float64 `yaml:"dash_cooldown"` // Seconds from dash start until the next dash is allowed
	DeathHeight         float64 `yaml:"death_height"`
}

// CameraConfig holds first-person camera parameters.
type CameraConfig struct {
	Yaw         float64 `yaml:"yaw"`   // Degrees
	Pitch       float64 `yaml:"pitch"` // Degrees
	Sensitivity float64 `yaml:"sensitivity"`
	PitchLimit  float64 `yaml:"pitch_limit"`
	FOV         float64 `yaml:"fov"`
	EyeOffset   float64 `yaml:"eye_offset"` // Added to the controller center height
}

// HomingConfig holds the seeking ball parameters.
type HomingConfig struct {
	Radius          float64 `yaml:"radius"`
	Density         float64 `yaml:"density"`
	ForceDivisor    int     `yaml:"force_divisor"` // K in impulse = dir / (|dir| * (K - hits))
	HitRadius       float64 `yaml:"hit_radius"`
	AngularVelocity Vec3    `yaml:"angular_velocity"`
	LinearDamping   float64 `yaml:"linear_damping"`
	AngularDamping  float64 `yaml:"angular_damping"`
	RampInterval    float64 `yaml:"ramp_interval"` // Seconds survived per hit counter increment (0 = never)
}

// PatrolConfig holds waypoint-follower parameters.
type PatrolConfig struct {
	Radius          float64 `yaml:"radius"`
	Speed           float64 `yaml:"speed"`            // Units per second along the path
	WaypointEpsilon float64 `yaml:"waypoint_epsilon"` // Arrival distance for advancing the target
	HitRadius       float64 `yaml:"hit_radius"`
}

// KeyConfig holds the win pickup parameters.
type KeyConfig struct {
	PickupRadius float64 `yaml:"pickup_radius"`
}

// BoxConfig describes an axis-aligned static box.
type BoxConfig struct {
	Center      Vec3 `yaml:"center"`
	HalfExtents Vec3 `yaml:"half_extents"`
	HitboxOnly  bool `yaml:"hitbox_only"`
}

// PatrolRoute describes one patrolling actor.
type PatrolRoute struct {
	Spawn     Vec3   `yaml:"spawn"`
	Waypoints []Vec3 `yaml:"waypoints"`
}

// LevelConfig is the authored level layout.
type LevelConfig struct {
	Floor       BoxConfig     `yaml:"floor"`
	Boundaries  []BoxConfig   `yaml:"boundaries"`
	Walls       []BoxConfig   `yaml:"walls"`
	PlayerSpawn Vec3          `yaml:"player_spawn"`
	HomingSpawn Vec3          `yaml:"homing_spawn"`
	KeyPosition Vec3          `yaml:"key_position"`
	Patrols     []PatrolRoute `yaml:"patrols"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// SpectateConfig holds the spectator stream parameters.
type SpectateConfig struct {
	Addr        string `yaml:"addr"` // Empty disables the stream
	EveryNTicks int    `yaml:"every_n_ticks"`
	ClientQueue int    `yaml:"client_queue"`
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	HomingMass    float64 // density * sphere volume
	MaxHitCounter int     // K - 1, keeps the impulse divisor positive
}

var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(err)
	}
}

// Cfg returns the global configuration. Init must be called first.
func Cfg() *Config {
	if global == nil {
		panic("config not initialized")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Finalize validates c and recomputes derived values after in-code edits.
func (c *Config) Finalize() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

func (c *Config) validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Homing.ForceDivisor < 1 {
		return fmt.Errorf("homing.force_divisor must be at least 1, got %d", c.Homing.ForceDivisor)
	}
	if c.Homing.RampInterval < 0 {
		return fmt.Errorf("homing.ramp_interval must not be negative, got %v", c.Homing.RampInterval)
	}
	for i, r := range c.Level.Patrols {
		if len(r.Waypoints) < 2 {
			return fmt.Errorf("level.patrols[%d]: need at least 2 waypoints, got %d", i, len(r.Waypoints))
		}
	}
	return nil
}

// computeDerived calculates derived values from the loaded config.
func (c *Config) computeDerived() {
	r := c.Homing.Radius
	c.Derived.HomingMass = c.Homing.Density * 4.0 / 3.0 * math.Pi * r * r * r
	if c.Derived.HomingMass <= 0 {
		c.Derived.HomingMass = 1
	}
	c.Derived.MaxHitCounter = c.Homing.ForceDivisor - 1
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
