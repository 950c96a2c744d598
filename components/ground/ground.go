// Package ground owns the walker's contact-with-the-world state: whether the
// body is grounded and which way the local surface faces. Everything that
// moves or orients the body reads this component's output.
package ground

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/Maxashi/spiderbro"
	"github.com/Maxashi/spiderbro/config"
	"github.com/Maxashi/spiderbro/pattern"
	"github.com/Maxashi/spiderbro/phys"
	"github.com/Maxashi/spiderbro/sampler"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "ground",
})

// Detector resamples the surface under the body every tick (or every
// Interval seconds when throttled) and maintains the grounded flag and the
// current surface normal.
type Detector struct {
	caster phys.Caster
	cfg    config.Ground

	points     []pattern.Point
	lastParams pattern.Params

	grounded bool
	normal   mgl64.Vec3
	point    mgl64.Vec3

	sinceSample float64
	disabled    bool
}

// New creates a detector probing downward through the given caster.
func New(caster phys.Caster, cfg config.Ground) *Detector {
	return &Detector{
		caster: caster,
		cfg:    cfg,
		normal: mgl64.Vec3{0, 1, 0},

		// Start the throttle expired, so a throttled detector still
		// samples on its very first tick.
		sinceSample: cfg.Interval,
	}
}

// Boot checks collaborators and builds the initial sample pattern. A missing
// caster disables the component for the session rather than failing the
// walker: the body simply never reports grounded.
func (d *Detector) Boot() error {
	if d.caster == nil {
		log.Warn("no collision caster assigned; ground detection disabled")
		d.disabled = true
		return nil
	}

	d.checkUpdatedVariables()
	return nil
}

// OnConfigChanged swaps in the new configuration. The pattern itself is
// regenerated lazily on the next tick, when the parameter diff is noticed.
func (d *Detector) OnConfigChanged(cfg *config.Config) {
	d.cfg = cfg.Ground
}

// Tick runs the two detector phases: react to configuration changes, then
// resample the surface.
func (d *Detector) Tick(now time.Time, state *spiderbro.State) error {
	if d.disabled {
		return nil
	}

	d.checkUpdatedVariables()

	d.sinceSample += state.DT
	if d.cfg.Interval > 0 && d.sinceSample < d.cfg.Interval {
		d.publish(state)
		return nil
	}
	d.sinceSample = 0

	d.checkGrounded(state)
	d.publish(state)
	return nil
}

// checkUpdatedVariables regenerates the sample pattern when any of its
// parameters changed since the last tick.
func (d *Detector) checkUpdatedVariables() {
	params := pattern.Params{
		Kind:      d.cfg.Pattern,
		Count:     d.cfg.SampleCount,
		Radius:    d.cfg.SampleRadius,
		Axis:      mgl64.Vec3{0, -1, 0},
		Curvature: d.cfg.Curvature,
		MaxAngle:  d.cfg.MaxAngleDeg * math.Pi / 180,
	}

	if params == d.lastParams && d.points != nil {
		return
	}

	d.points = pattern.Generate(params)
	d.lastParams = params
	log.Debugf("regenerated sample pattern: kind=%s points=%d", params.Kind, len(d.points))
}

// checkGrounded casts every pattern direction out to the check distance and
// reduces the hits. Unlike foothold resolution, the detector's normal is the
// plain arithmetic mean of hit normals unless configured otherwise. A
// zero-hit tick clears the grounded flag but keeps the previous normal, so
// downstream consumers never see a zero vector.
func (d *Detector) checkGrounded(state *spiderbro.State) {
	var posSum, normSum mgl64.Vec3
	hits := 0

	p := sampler.CastParams{
		Radius:      d.cfg.CastRadius,
		MaxDistance: d.cfg.CheckDistance,
		Mask:        phys.MaskAll,
	}

	if d.cfg.WeightedNormal {
		var res sampler.Result
		if d.cfg.TwoRing {
			inner := d.cfg.SampleRadius * 0.25
			outer := d.cfg.SampleRadius * 0.5
			res = sampler.SampleTwoRing(state.Position, state.Rotation, d.points, state.Velocity, inner, outer, d.caster, p)
		} else {
			res = sampler.Sample(state.Position, state.Rotation, d.points, d.caster, p)
		}
		d.grounded = res.Ok()
		if res.Ok() {
			d.point = res.Point
			if res.Normal.LenSqr() > 0 {
				d.normal = res.Normal
			}
		}
		return
	}

	for _, sp := range d.points {
		origin := state.Position.Add(state.Rotation.Rotate(sp.Offset))
		dir := state.Rotation.Rotate(sp.Dir)

		var hit phys.Hit
		var ok bool
		if p.Radius > 0 {
			hit, ok = d.caster.SphereCast(origin, p.Radius, dir, p.MaxDistance, p.Mask)
		} else {
			hit, ok = d.caster.Raycast(origin, dir, p.MaxDistance, p.Mask)
		}
		if !ok {
			continue
		}

		hits++
		posSum = posSum.Add(hit.Point)
		normSum = normSum.Add(hit.Normal)
	}

	d.grounded = hits > 0
	if hits > 0 {
		d.point = posSum.Mul(1 / float64(hits))
		d.normal = normSum.Mul(1 / float64(hits)).Normalize()
	}
}

func (d *Detector) publish(state *spiderbro.State) {
	state.Grounded = d.grounded
	state.GroundNormal = d.normal
	state.GroundPoint = d.point
}

// Grounded reports whether the last sample found any surface.
func (d *Detector) Grounded() bool { return d.grounded }

// Normal returns the current surface normal. Never zero: before the first
// hit it is world up, afterwards the last sampled mean.
func (d *Detector) Normal() mgl64.Vec3 { return d.normal }

// Point returns the representative contact point of the last sample.
func (d *Detector) Point() mgl64.Vec3 { return d.point }

// SamplePoints exposes the current pattern for debug overlays.
func (d *Detector) SamplePoints() []pattern.Point {
	out := make([]pattern.Point, len(d.points))
	copy(out, d.points)
	return out
}
