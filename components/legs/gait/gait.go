// Package gait decides which legs are allowed to start a step on a given
// tick. Two policies exist in the wild and disagree; both live here behind
// one interface, and configuration picks.
package gait

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LegView is the read-only slice of per-leg state a sequencer needs.
type LegView struct {
	Moving bool

	// Planted is the leg's last planted world position.
	Planted mgl64.Vec3

	// Desired is the leg's desired rest position plus the velocity lead.
	Desired mgl64.Vec3
}

// Context is everything a sequencer may consult on one tick.
type Context struct {
	DT       float64
	Velocity mgl64.Vec3
	StepSize float64

	// Up is the body up axis, used for planar distance measurement.
	Up mgl64.Vec3

	Legs []LegView
}

// Sequencer returns the indices of legs which should begin a step this
// tick. Implementations must never return a leg whose Moving flag is set.
type Sequencer interface {
	Next(ctx Context) []int
}

// RoundRobin is the distance-modulo policy: a distance accumulator wraps
// around the step size, its phase picks a leg index, and a step fires on
// the tick the index changes. One leg at a time, in order, tied to distance
// traveled rather than wall-clock time.
type RoundRobin struct {
	// Epsilon is the speed below which the accumulator freezes, so the gait
	// does not jitter while the body idles.
	Epsilon float64

	distance  float64
	lastIndex int
	primed    bool
}

func (g *RoundRobin) Next(ctx Context) []int {
	n := len(ctx.Legs)
	if n == 0 || ctx.StepSize <= 0 {
		return nil
	}

	speed := ctx.Velocity.Len()
	if speed > g.Epsilon {
		g.distance += speed * ctx.DT
	}

	progress := math.Mod(g.distance, ctx.StepSize) / ctx.StepSize
	index := int(progress * float64(n))
	if index >= n {
		index = n - 1
	}

	// Edge-triggered: fire only when the phase crosses into a new leg's
	// slot. The first tick just latches the starting index.
	if !g.primed {
		g.primed = true
		g.lastIndex = index
		return nil
	}
	if index == g.lastIndex {
		return nil
	}
	g.lastIndex = index

	if ctx.Legs[index].Moving {
		return nil
	}
	return []int{index}
}

// Threshold is the distance-threshold policy with a concurrency cap: any
// leg further than the step size from its planted position may step, as
// long as no more than MaxMoving legs are in flight, so the body never
// loses static support.
type Threshold struct {
	MaxMoving int
}

func (g *Threshold) Next(ctx Context) []int {
	moving := 0
	for _, l := range ctx.Legs {
		if l.Moving {
			moving++
		}
	}

	var out []int
	for i, l := range ctx.Legs {
		if l.Moving || moving >= g.MaxMoving {
			continue
		}

		if planarDistance(l.Planted, l.Desired, ctx.Up) > ctx.StepSize {
			out = append(out, i)
			moving++
		}
	}
	return out
}

// planarDistance measures the distance between two points within the plane
// orthogonal to up, so a tall body does not count its height toward the
// step trigger.
func planarDistance(a, b, up mgl64.Vec3) float64 {
	d := b.Sub(a)
	return d.Sub(up.Mul(d.Dot(up))).Len()
}
