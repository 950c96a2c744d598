// Package legs is the leg stepping engine: it owns the per-leg state, asks
// the gait sequencer which legs may move, resolves footholds onto the
// walking surface, animates steps, and keeps the body oriented over its
// feet.
package legs

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/Maxashi/spiderbro"
	"github.com/Maxashi/spiderbro/components/legs/gait"
	"github.com/Maxashi/spiderbro/config"
	"github.com/Maxashi/spiderbro/mathx"
	"github.com/Maxashi/spiderbro/phys"
	"github.com/Maxashi/spiderbro/sampler"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "legs",
})

// Legs is the stepping component. It exclusively owns the leg array; other
// components read foot positions through LegStates.
type Legs struct {
	caster phys.Caster
	cfg    config.Legs
	seq    gait.Sequencer

	legs []*Leg

	// up is the smoothed body up vector derived from the foot polygon.
	up mgl64.Vec3

	initialized bool
	disabled    bool
	halted      bool
}

// New creates the stepping engine from configuration. The caster resolves
// footholds onto the actual surface; without one the component disables
// itself at boot.
func New(caster phys.Caster, cfg *config.Config) *Legs {
	c := &Legs{
		caster: caster,
		cfg:    cfg.Legs,
		seq:    newSequencer(cfg.Gait),
		up:     mgl64.Vec3{0, 1, 0},
	}

	for i, off := range cfg.Legs.RestOffsets {
		c.legs = append(c.legs, &Leg{
			Name:       fmt.Sprintf("leg-%d", i),
			RestOffset: off.Vec(),
		})
	}

	return c
}

func newSequencer(cfg config.Gait) gait.Sequencer {
	switch cfg.Policy {
	case config.GaitThreshold:
		return &gait.Threshold{MaxMoving: cfg.MaxMoving}
	default:
		return &gait.RoundRobin{Epsilon: cfg.Epsilon}
	}
}

// Boot checks collaborators. Feet are planted on the first tick, once a
// body pose is available.
func (c *Legs) Boot() error {
	if c.caster == nil {
		log.Warn("no collision caster assigned; leg stepping disabled")
		c.disabled = true
		return nil
	}

	if len(c.legs) < 3 {
		return fmt.Errorf("need at least 3 legs, got %d", len(c.legs))
	}

	return nil
}

// Halt aborts every in-flight step and stops the component for good.
// Call when the body is being torn down, so no step resumes against a
// freed transform.
func (c *Legs) Halt() {
	for _, l := range c.legs {
		l.abort()
	}
	c.halted = true
}

// OnConfigChanged applies new stepping parameters. A changed leg count
// rebuilds the leg array and replants on the next tick; everything else
// takes effect immediately. The sequencer is rebuilt so a policy change
// sticks.
func (c *Legs) OnConfigChanged(cfg *config.Config) {
	rebuilt := len(cfg.Legs.RestOffsets) != len(c.legs)
	c.cfg = cfg.Legs
	c.seq = newSequencer(cfg.Gait)

	if rebuilt {
		log.Infof("leg count changed to %d; replanting", len(cfg.Legs.RestOffsets))
		c.legs = c.legs[:0]
		for i, off := range cfg.Legs.RestOffsets {
			c.legs = append(c.legs, &Leg{
				Name:       fmt.Sprintf("leg-%d", i),
				RestOffset: off.Vec(),
			})
		}
		c.initialized = false
		return
	}

	for i, off := range cfg.Legs.RestOffsets {
		c.legs[i].RestOffset = off.Vec()
	}
}

// Tick runs one simulation step of the engine: plant-on-first-tick, gait
// selection, step triggering, in-flight step advancement, and body
// orientation.
func (c *Legs) Tick(now time.Time, state *spiderbro.State) error {
	if c.disabled || c.halted {
		return nil
	}

	if !c.initialized {
		c.plantAll(state)
		c.initialized = true
	}

	c.trigger(state)

	for _, l := range c.legs {
		if l.Moving {
			l.advance()
		} else {
			// Ineligible legs hold their planted position exactly.
			l.Foot = l.Planted
		}
	}

	c.updateOrientation(state)
	return nil
}

// plantAll puts every foot at its rest position, projected onto the
// surface. Runs once, on the first tick after boot or a leg-count change.
func (c *Legs) plantAll(state *spiderbro.State) {
	for _, l := range c.legs {
		desired := state.TransformPoint(l.RestOffset)
		target, _, ok := sampler.ResolvePoint(desired, state.Up(), mgl64.Vec3{}, c.caster, c.castParams())
		if !ok {
			target = desired
		}
		l.snapTo(target)
	}
}

// trigger asks the sequencer which legs may move and starts their steps.
func (c *Legs) trigger(state *spiderbro.State) {
	ctx := gait.Context{
		DT:       state.DT,
		Velocity: state.Velocity,
		StepSize: c.cfg.StepSize,
		Up:       c.up,
		Legs:     make([]gait.LegView, len(c.legs)),
	}
	for i, l := range c.legs {
		ctx.Legs[i] = gait.LegView{
			Moving:  l.Moving,
			Planted: l.Planted,
			Desired: state.TransformPoint(l.RestOffset).Add(state.Velocity.Mul(c.cfg.VelocityMultiplier)),
		}
	}

	for _, i := range c.seq.Next(ctx) {
		l := c.legs[i]
		if l.Moving {
			// Sequencer contract violated; refuse rather than restart the
			// step mid-flight.
			log.Warnf("%s: step trigger while moving; ignored", l.Name)
			continue
		}
		c.beginStep(l, state)
	}
}

// beginStep computes the leg's target foothold and starts the animation.
//
// The target leads the rest position along the direction of travel: the
// rest-to-foot error scaled by speed (bounded by the step size), plus the
// velocity lead itself. The predicted point is then projected onto the
// actual surface with a velocity-biased probe; if the surface cannot be
// found at all the unprojected prediction is used as-is.
func (c *Legs) beginStep(l *Leg, state *spiderbro.State) {
	desired := state.TransformPoint(l.RestOffset)
	vel := state.Velocity

	lead := mgl64.Clamp(vel.Len()*c.cfg.VelocityMultiplier, 0, c.cfg.StepSize)
	predicted := desired.
		Add(desired.Sub(l.Foot).Mul(lead)).
		Add(vel.Mul(c.cfg.VelocityMultiplier))

	target, _, ok := sampler.ResolvePoint(predicted, state.Up(), vel, c.caster, c.castParams())
	if !ok {
		target = predicted
	}

	if c.cfg.ImmediateStep {
		l.snapTo(target)
		return
	}

	l.beginStep(target, state.Up(), c.cfg.StepHeight, c.cfg.Smoothness)
	log.Debugf("%s: stepping %v -> %v", l.Name, l.Planted, target)
}

func (c *Legs) castParams() sampler.CastParams {
	return sampler.CastParams{
		Radius:      c.cfg.FootCastRadius,
		MaxDistance: c.cfg.FootCastDistance,
		Mask:        phys.MaskAll,
	}
}

// updateOrientation fits a plane through the foot polygon with two edge
// vectors between the configured opposite leg pairs, smooths the resulting
// up vector, and re-orients the body around it. A degenerate (colinear)
// cross product keeps the previous up.
func (c *Legs) updateOrientation(state *spiderbro.State) {
	pairs := c.cfg.OrientationPairs
	if len(pairs) != 2 {
		return
	}
	for _, p := range pairs {
		if p[0] >= len(c.legs) || p[1] >= len(c.legs) {
			return
		}
	}

	a := c.legs[pairs[0][0]].Foot.Sub(c.legs[pairs[0][1]].Foot)
	b := c.legs[pairs[1][0]].Foot.Sub(c.legs[pairs[1][1]].Foot)

	normal := mathx.SafeNormalize(a.Cross(b), c.up)

	gain := 1 / (c.cfg.OrientationSmoothing + 1)
	c.up = mathx.SafeNormalize(mathx.Lerp(c.up, normal, gain), c.up)

	state.Rotation = mathx.LookRotation(state.Forward(), c.up)
}

// Up returns the smoothed body up vector derived from the feet.
func (c *Legs) Up() mgl64.Vec3 { return c.up }

// LegState is a read-only copy of one leg, for inspection and IK readback.
type LegState struct {
	Name       string
	RestOffset mgl64.Vec3
	Foot       mgl64.Vec3
	Planted    mgl64.Vec3
	Moving     bool
}

// LegStates snapshots every leg.
func (c *Legs) LegStates() []LegState {
	out := make([]LegState, len(c.legs))
	for i, l := range c.legs {
		out[i] = LegState{
			Name:       l.Name,
			RestOffset: l.RestOffset,
			Foot:       l.Foot,
			Planted:    l.Planted,
			Moving:     l.Moving,
		}
	}
	return out
}
