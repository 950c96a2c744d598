package legs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Maxashi/spiderbro/mathx"
)

// Leg is one foot and its stepping state. Legs are created once at boot and
// live for the session; Planted mutates only when a step completes.
type Leg struct {
	Name string

	// RestOffset is the foot's default position, body-local. Desired
	// footholds are anchored on it.
	RestOffset mgl64.Vec3

	// Foot is the current world position of the foot, updated every tick.
	// Render-side IK reads this.
	Foot mgl64.Vec3

	// Planted is the world position the foot last landed on. While the leg
	// is not moving, Foot holds this exactly; there is no drift.
	Planted mgl64.Vec3

	// Moving is true from the first sub-step of a step until the foot
	// lands. PLANTED and MOVING are the only two states a leg has, and
	// MOVING always terminates back to PLANTED.
	Moving bool

	step step
}

// step is the saved state of an in-flight step: a manual resumable state
// machine advanced one sub-step per tick, in place of an engine coroutine.
type step struct {
	subStep int
	total   int
	start   mgl64.Vec3
	target  mgl64.Vec3

	// up and height shape the lift arc, latched at step start so a body
	// re-orienting mid-step does not bend the arc.
	up     mgl64.Vec3
	height float64
}

// beginStep starts animating the foot from where it is toward target.
// subSteps is clamped to at least one so every step terminates.
func (l *Leg) beginStep(target, up mgl64.Vec3, height float64, subSteps int) {
	if subSteps < 1 {
		subSteps = 1
	}

	l.Moving = true
	l.step = step{
		total:  subSteps,
		start:  l.Foot,
		target: target,
		up:     up,
		height: height,
	}
}

// snapTo plants the foot at target in one tick, skipping the arc. Teleport
// recovery uses this.
func (l *Leg) snapTo(target mgl64.Vec3) {
	l.Foot = target
	l.Planted = target
	l.Moving = false
	l.step = step{}
}

// advance consumes one sub-step of the in-flight step. Intermediate
// positions interpolate linearly between start and target with a sin(t*pi)
// vertical lift; the final sub-step lands exactly on the target and flips
// the leg back to planted.
func (l *Leg) advance() {
	if !l.Moving {
		return
	}

	l.step.subStep++
	if l.step.subStep >= l.step.total {
		l.snapTo(l.step.target)
		return
	}

	t := float64(l.step.subStep) / float64(l.step.total)
	lift := l.step.up.Mul(l.step.height * math.Sin(t*math.Pi))
	l.Foot = mathx.Lerp(l.step.start, l.step.target, t).Add(lift)
}

// abort abandons an in-flight step, leaving the foot wherever it is and
// re-planting there. Component shutdown uses this so a half-finished step
// never writes again.
func (l *Leg) abort() {
	if l.Moving {
		l.snapTo(l.Foot)
	}
}
