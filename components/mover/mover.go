// Package mover is the surface-following character controller: the
// single-point analogue of the leg engine. It turns player input into
// movement along whatever surface the ground detector reports, including
// walls and ceilings, with a ballistic fallback while airborne.
package mover

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/Maxashi/spiderbro"
	"github.com/Maxashi/spiderbro/config"
	"github.com/Maxashi/spiderbro/mathx"
	"github.com/Maxashi/spiderbro/phys"
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "mover",
})

// Mover consumes State.Input and the ground detector's output. It must tick
// after the detector.
type Mover struct {
	caster phys.Caster
	cfg    config.Mover

	// airVel is the ballistic velocity while airborne; zero when grounded.
	airVel mgl64.Vec3

	// jumpLatch keeps a held jump button from firing every tick.
	jumpLatch bool

	// airborne tracks the jump-to-landing window independently of the
	// detector, which may still report the surface behind us right after a
	// jump.
	airborne bool
}

// New creates a controller. The caster probes for surfaces ahead of the
// body so it can transfer onto walls; without one the controller still
// works, but only on whatever surface the detector reports.
func New(caster phys.Caster, cfg *config.Config) *Mover {
	return &Mover{caster: caster, cfg: cfg.Mover}
}

func (m *Mover) Boot() error {
	if m.caster == nil {
		log.Warn("no collision caster assigned; surface pivoting disabled")
	}
	return nil
}

func (m *Mover) OnConfigChanged(cfg *config.Config) {
	m.cfg = cfg.Mover
}

func (m *Mover) Tick(now time.Time, state *spiderbro.State) error {
	if m.airborne {
		m.tickAirborne(state)
		return nil
	}

	if !state.Grounded {
		// Walked off an edge: fall, carrying the current velocity.
		m.airVel = state.RawVelocity
		m.airborne = true
		m.tickAirborne(state)
		return nil
	}

	m.tickGrounded(state)
	return nil
}

// tickGrounded moves the body within the surface tangent plane and keeps it
// riding at a fixed height above the sampled contact point. A surface ahead
// along the direction of travel takes over as the attachment plane, so the
// body pivots from floor to wall instead of piercing it.
func (m *Mover) tickGrounded(state *spiderbro.State) {
	up := state.GroundNormal

	if state.Input.Jump && !m.jumpLatch {
		m.jumpLatch = true
		m.airVel = state.RawVelocity.Add(up.Mul(m.cfg.JumpSpeed))
		m.airborne = true
		state.Grounded = false
		log.Debug("jump")
		return
	}
	if !state.Input.Jump {
		m.jumpLatch = false
	}

	speed := m.cfg.MoveSpeed
	if state.Input.Sprint {
		speed *= m.cfg.SprintMultiplier
	}

	move := m.planarMove(state, up)

	// Probe for a surface within ride height of the travel direction. The
	// detector's averaged normal stays dominated by the current surface
	// until too late, and one-sided geometry stops reporting hits once the
	// origin is behind it, so waiting for penetration detaches the walker
	// for good.
	var wall phys.Hit
	pivoted := false
	if m.caster != nil && move.Len() > 0 {
		dir := move.Mul(1 / move.Len())
		if hit, ok := m.caster.Raycast(state.Position, dir, m.cfg.RideHeight, phys.MaskAll); ok {
			wall = hit
			pivoted = true
			up = hit.Normal
			move = m.planarMove(state, up)
			log.Debugf("pivoting onto surface with normal %v", up)
		}
	}

	// Re-orient gradually toward the attachment normal.
	gain := 1 / (m.cfg.AlignSmoothing + 1)
	bodyUp := mathx.SafeNormalize(mathx.Lerp(state.Up(), up, gain), up)
	state.Rotation = mathx.LookRotation(state.Forward(), bodyUp)

	state.Position = state.Position.Add(move.Mul(speed * state.DT))

	if pivoted {
		// Hold ride height off the new surface. The detector's averaged
		// contact point still straddles the corner, so hugging it would
		// drag the body back toward the old surface.
		h := state.Position.Sub(wall.Point).Dot(wall.Normal)
		state.Position = state.Position.Add(wall.Normal.Mul(m.cfg.RideHeight - h))
		return
	}

	// Hug the surface: correct the height error above the contact point
	// along the normal.
	height := state.Position.Sub(state.GroundPoint).Dot(up)
	state.Position = state.Position.Add(up.Mul(m.cfg.RideHeight - height))
}

// planarMove maps the two-axis input onto the tangent plane of up: Y walks
// forward, X strafes.
func (m *Mover) planarMove(state *spiderbro.State, up mgl64.Vec3) mgl64.Vec3 {
	forward := mathx.SafeNormalize(mathx.ProjectOnPlane(state.Forward(), up), state.Forward())
	right := up.Cross(forward)
	return forward.Mul(state.Input.Move.Y()).Add(right.Mul(state.Input.Move.X()))
}

// tickAirborne integrates ballistic motion under world gravity until the
// detector reports a surface again.
func (m *Mover) tickAirborne(state *spiderbro.State) {
	m.airVel = m.airVel.Add(mgl64.Vec3{0, -m.cfg.Gravity, 0}.Mul(state.DT))
	state.Position = state.Position.Add(m.airVel.Mul(state.DT))

	// Re-attach only once we are falling relative to the surface and back
	// within ride height of it, so the jump's own launch frames do not
	// immediately re-ground us.
	height := state.Position.Sub(state.GroundPoint).Dot(state.GroundNormal)
	if state.Grounded && m.airVel.Dot(state.GroundNormal) <= 0 && height <= m.cfg.RideHeight {
		m.airborne = false
		m.airVel = mgl64.Vec3{}
	}
}

// Airborne reports whether the controller is in its ballistic phase.
func (m *Mover) Airborne() bool { return m.airborne }
