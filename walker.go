package spiderbro

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/Maxashi/spiderbro/config"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "spiderbro",
})

// Input is the abstract player intent consumed by the character-controller
// component. The demo binary synthesizes it; a real host feeds it from
// whatever input device it owns.
type Input struct {
	// Move is the two-axis movement vector: X strafes, Y walks forward.
	// Both axes are expected in [-1, 1].
	Move mgl64.Vec2

	Jump   bool
	Sprint bool
}

// State is the shared per-body state which every component reads and some
// components write. There is exactly one writer per field: the walker owns
// the velocity fields, the ground detector owns Grounded/GroundNormal/
// GroundPoint, and the mover or the leg engine owns Position/Rotation.
type State struct {
	// DT is the fixed simulation timestep, in seconds.
	DT float64

	// The world pose of the center of the body.
	Position mgl64.Vec3
	Rotation mgl64.Quat

	// RawVelocity is the position delta of the last tick divided by DT.
	// Velocity is its exponentially smoothed counterpart; gait timing and
	// foothold prediction read this one, so a single noisy tick does not
	// scatter the feet.
	RawVelocity mgl64.Vec3
	Velocity    mgl64.Vec3

	Grounded     bool
	GroundNormal mgl64.Vec3
	GroundPoint  mgl64.Vec3

	Input Input

	// Components can set this to true to indicate that the walker should
	// shut down.
	Shutdown bool
}

// Forward returns the body's forward axis (+Z in local space) in world space.
func (s *State) Forward() mgl64.Vec3 {
	return s.Rotation.Rotate(mgl64.Vec3{0, 0, 1})
}

// Up returns the body's up axis (+Y in local space) in world space.
func (s *State) Up() mgl64.Vec3 {
	return s.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
}

// Right returns the body's right axis (+X in local space) in world space.
func (s *State) Right() mgl64.Vec3 {
	return s.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
}

// TransformPoint transforms a body-local point into world space.
func (s *State) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return s.Position.Add(s.Rotation.Rotate(local))
}

// InverseTransformPoint transforms a world-space point into body space.
func (s *State) InverseTransformPoint(world mgl64.Vec3) mgl64.Vec3 {
	return s.Rotation.Inverse().Rotate(world.Sub(s.Position))
}

// Component is anything which can be attached to a walker and receive ticks
// every frame. Tick errors are logged and the simulation carries on; a
// component which cannot work at all should disable itself during Boot
// rather than fail every tick.
type Component interface {
	Boot() error
	Tick(now time.Time, state *State) error
}

// ConfigReloader is implemented by components which react to configuration
// changes at runtime.
type ConfigReloader interface {
	OnConfigChanged(cfg *config.Config)
}

// Walker is the body aggregate: the shared state plus the ordered component
// list which animates it.
type Walker struct {
	Components []Component
	State      State

	velocitySmoothing float64
	lastPosition      mgl64.Vec3
}

// New creates a walker at the origin with an identity rotation.
func New(cfg *config.Config) *Walker {
	return &Walker{
		Components: []Component{},
		State: State{
			DT:           1.0 / float64(cfg.TickRate),
			Rotation:     mgl64.QuatIdent(),
			GroundNormal: mgl64.Vec3{0, 1, 0},
		},
		velocitySmoothing: cfg.VelocitySmoothing,
	}
}

// Add registers a component to receive ticks every frame. Components tick in
// registration order, so detectors should be added before the components
// which consume their output.
func (w *Walker) Add(c Component) {
	w.Components = append(w.Components, c)
}

// Boot calls Boot on each component.
func (w *Walker) Boot() error {
	for _, c := range w.Components {
		if err := c.Boot(); err != nil {
			return err
		}
	}

	w.lastPosition = w.State.Position
	return nil
}

// Tick advances the simulation by one fixed step: velocity bookkeeping
// first, then every component in registration order.
func (w *Walker) Tick(now time.Time) {
	s := &w.State

	s.RawVelocity = s.Position.Sub(w.lastPosition).Mul(1.0 / s.DT)
	w.lastPosition = s.Position

	// Exponential smoothing. A factor of 0 passes the raw velocity through.
	k := mgl64.Clamp(w.velocitySmoothing, 0, 0.999)
	s.Velocity = s.Velocity.Mul(k).Add(s.RawVelocity.Mul(1 - k))

	for _, c := range w.Components {
		if err := c.Tick(now, s); err != nil {
			log.Warnf("component tick: %s", err)
		}
	}
}

// OnConfigChanged fans a reloaded configuration out to every component that
// cares about it.
func (w *Walker) OnConfigChanged(cfg *config.Config) {
	w.State.DT = 1.0 / float64(cfg.TickRate)
	w.velocitySmoothing = cfg.VelocitySmoothing

	for _, c := range w.Components {
		if r, ok := c.(ConfigReloader); ok {
			r.OnConfigChanged(cfg)
		}
	}
}
