// Package config holds the runtime-tunable parameters for a walker. It is
// loaded from YAML, but every field has a sensible default so a zero-config
// walker still stands up.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// PatternKind selects how the ground detector spreads its sample rays.
type PatternKind string

const (
	PatternGrid       PatternKind = "grid"
	PatternSphere     PatternKind = "sphere"
	PatternHemisphere PatternKind = "hemisphere"
	PatternCircle     PatternKind = "circle"
)

// GaitPolicy selects which sequencer decides when a leg may step.
type GaitPolicy string

const (
	// GaitRoundRobin ties stepping to distance traveled: legs fire one at a
	// time, in index order, as the distance accumulator wraps the step size.
	GaitRoundRobin GaitPolicy = "round_robin"

	// GaitThreshold lets any leg step once it has drifted more than a step
	// size from its planted position, capped to a maximum number of legs in
	// flight at once.
	GaitThreshold GaitPolicy = "threshold"
)

// Vec3 is the YAML shape of a 3D vector.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec returns the mgl64 value of the vector.
func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Ground configures the ground/surface detector.
type Ground struct {
	Pattern      PatternKind `yaml:"pattern"`
	SampleCount  int         `yaml:"sample_count"`
	SampleRadius float64     `yaml:"sample_radius"`

	// Curvature bows a grid pattern toward the probe axis; zero keeps it
	// flat. Ignored by the other patterns.
	Curvature float64 `yaml:"curvature"`

	// MaxAngleDeg caps a hemisphere pattern, in degrees from the probe axis.
	MaxAngleDeg float64 `yaml:"max_angle_deg"`

	CheckDistance float64 `yaml:"check_distance"`
	CastRadius    float64 `yaml:"cast_radius"`

	// Interval throttles resampling, in seconds. Zero samples every tick.
	Interval float64 `yaml:"interval"`

	// WeightedNormal switches the detector from the unweighted mean of hit
	// normals to the distance-weighted mean the foothold sampler uses.
	WeightedNormal bool `yaml:"weighted_normal"`

	// TwoRing doubles every cast with a leading and trailing offset along
	// the direction of travel, for denser coverage at the body's edges.
	// Only honored together with WeightedNormal.
	TwoRing bool `yaml:"two_ring"`
}

// Legs configures the leg stepping engine and body orientation.
type Legs struct {
	// RestOffsets are the per-leg default foot positions, body-local. The
	// number of legs is the length of this list.
	RestOffsets []Vec3 `yaml:"rest_offsets"`

	StepSize   float64 `yaml:"step_size"`
	StepHeight float64 `yaml:"step_height"`

	// Smoothness is the number of sub-steps (ticks) a step animation spans.
	Smoothness int `yaml:"smoothness"`

	VelocityMultiplier float64 `yaml:"velocity_multiplier"`

	// FootCastDistance is how far above/below a predicted foothold the
	// sampler probes for the real surface.
	FootCastDistance float64 `yaml:"foot_cast_distance"`
	FootCastRadius   float64 `yaml:"foot_cast_radius"`

	// OrientationPairs names the two opposite leg pairs whose foot
	// difference vectors span the body plane. Pair order fixes the sign of
	// the cross product, so swapping a pair flips the computed up.
	OrientationPairs [][2]int `yaml:"orientation_pairs"`

	// OrientationSmoothing damps body re-orientation; the per-tick gain is
	// 1/(smoothing+1).
	OrientationSmoothing float64 `yaml:"orientation_smoothing"`

	// ImmediateStep skips step animation entirely and snaps feet to their
	// resolved targets in one tick. Used for teleport recovery.
	ImmediateStep bool `yaml:"immediate_step"`
}

// Gait configures the gait sequencer.
type Gait struct {
	Policy GaitPolicy `yaml:"policy"`

	// MaxMoving caps in-flight legs under the threshold policy.
	MaxMoving int `yaml:"max_moving"`

	// Epsilon is the speed below which the round-robin distance accumulator
	// freezes, to avoid jitter at near-zero speed.
	Epsilon float64 `yaml:"epsilon"`
}

// Mover configures the surface-following character controller.
type Mover struct {
	MoveSpeed        float64 `yaml:"move_speed"`
	SprintMultiplier float64 `yaml:"sprint_multiplier"`
	JumpSpeed        float64 `yaml:"jump_speed"`
	Gravity          float64 `yaml:"gravity"`
	RideHeight       float64 `yaml:"ride_height"`

	// AlignSmoothing damps re-orientation toward the ground normal; the
	// per-tick gain is 1/(smoothing+1).
	AlignSmoothing float64 `yaml:"align_smoothing"`
}

// Inspect configures the read-only websocket snapshot stream.
type Inspect struct {
	Addr     string  `yaml:"addr"`
	Interval float64 `yaml:"interval"`
}

type Config struct {
	// TickRate is the fixed simulation rate, in ticks per second.
	TickRate int `yaml:"tick_rate"`

	// VelocitySmoothing is the exponential smoothing factor applied to the
	// body velocity, in [0, 1); higher is smoother.
	VelocitySmoothing float64 `yaml:"velocity_smoothing"`

	Ground  Ground  `yaml:"ground"`
	Legs    Legs    `yaml:"legs"`
	Gait    Gait    `yaml:"gait"`
	Mover   Mover   `yaml:"mover"`
	Inspect Inspect `yaml:"inspect"`
}

// Default returns the configuration for a six-legged walker with feet
// arranged radially around the body.
func Default() *Config {
	cfg := &Config{
		TickRate:          60,
		VelocitySmoothing: 0.8,
		Ground: Ground{
			Pattern:       PatternHemisphere,
			SampleCount:   16,
			SampleRadius:  0.5,
			MaxAngleDeg:   80,
			CheckDistance: 1.5,
			CastRadius:    0.05,
		},
		Legs: Legs{
			StepSize:             0.6,
			StepHeight:           0.3,
			Smoothness:           2,
			VelocityMultiplier:   0.25,
			FootCastDistance:     2.0,
			FootCastRadius:       0.05,
			OrientationSmoothing: 4,
		},
		Gait: Gait{
			Policy:    GaitRoundRobin,
			MaxMoving: 3,
			Epsilon:   0.01,
		},
		Mover: Mover{
			MoveSpeed:        2.5,
			SprintMultiplier: 1.8,
			JumpSpeed:        4.0,
			Gravity:          9.81,
			RideHeight:       0.5,
			AlignSmoothing:   4,
		},
		Inspect: Inspect{
			Interval: 0.1,
		},
	}

	// Six legs, hexapod style: front/mid/back on each side.
	const r = 1.2
	for _, deg := range []float64{60, 120, 0, 180, -60, -120} {
		a := deg * math.Pi / 180
		cfg.Legs.RestOffsets = append(cfg.Legs.RestOffsets, Vec3{
			X: math.Cos(a) * r,
			Y: -0.4,
			Z: math.Sin(a) * r,
		})
	}
	cfg.Legs.OrientationPairs = DefaultOrientationPairs(len(cfg.Legs.RestOffsets))

	return cfg
}

// DefaultOrientationPairs returns two opposite leg pairs for a body with n
// legs laid out counter-clockwise: (0, n/2) and (3n/4, n/4). The pair order
// makes the cross of the two difference vectors point out of the body's
// back, i.e. along local up.
func DefaultOrientationPairs(n int) [][2]int {
	return [][2]int{
		{0, n / 2},
		{(3 * n) / 4, n / 4},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations which would divide by zero or wedge the
// simulation. It normalizes the handful of fields where clamping is kinder
// than erroring.
func (c *Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}

	switch c.Ground.Pattern {
	case PatternGrid, PatternSphere, PatternHemisphere, PatternCircle:
	default:
		return fmt.Errorf("unknown sample pattern %q", c.Ground.Pattern)
	}

	if c.Ground.SampleCount < 1 {
		return fmt.Errorf("ground.sample_count must be at least 1, got %d", c.Ground.SampleCount)
	}
	if c.Ground.SampleRadius <= 0 {
		return fmt.Errorf("ground.sample_radius must be positive, got %g", c.Ground.SampleRadius)
	}
	if c.Ground.CheckDistance <= 0 {
		return fmt.Errorf("ground.check_distance must be positive, got %g", c.Ground.CheckDistance)
	}

	if len(c.Legs.RestOffsets) < 3 {
		return fmt.Errorf("need at least 3 legs, got %d", len(c.Legs.RestOffsets))
	}
	if c.Legs.StepSize <= 0 {
		return fmt.Errorf("legs.step_size must be positive, got %g", c.Legs.StepSize)
	}

	// A step must always terminate, even if configured with zero sub-steps.
	if c.Legs.Smoothness < 1 {
		c.Legs.Smoothness = 1
	}

	n := len(c.Legs.RestOffsets)
	if len(c.Legs.OrientationPairs) == 0 {
		c.Legs.OrientationPairs = DefaultOrientationPairs(n)
	}
	if len(c.Legs.OrientationPairs) != 2 {
		return fmt.Errorf("legs.orientation_pairs needs exactly 2 pairs, got %d", len(c.Legs.OrientationPairs))
	}
	for _, p := range c.Legs.OrientationPairs {
		for _, i := range p {
			if i < 0 || i >= n {
				return fmt.Errorf("orientation pair index %d out of range for %d legs", i, n)
			}
		}
	}

	switch c.Gait.Policy {
	case GaitRoundRobin, GaitThreshold:
	default:
		return fmt.Errorf("unknown gait policy %q", c.Gait.Policy)
	}
	if c.Gait.MaxMoving < 1 {
		return fmt.Errorf("gait.max_moving must be at least 1, got %d", c.Gait.MaxMoving)
	}

	return nil
}
