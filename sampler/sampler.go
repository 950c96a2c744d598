// Package sampler reduces a set of surface casts to a single representative
// contact point and normal. It is the one place which knows how hits are
// averaged; the ground detector and the leg engine both sit on top of it.
package sampler

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Maxashi/spiderbro/mathx"
	"github.com/Maxashi/spiderbro/pattern"
	"github.com/Maxashi/spiderbro/phys"
)

// CastParams bundles the parameters shared by every cast in one sample.
// A zero Radius degrades the sphere-casts to plain raycasts.
type CastParams struct {
	Radius      float64
	MaxDistance float64
	Mask        phys.Mask
}

// Result is a reduced surface sample.
//
// When HitCount is zero, Point is the unprojected probe origin and Normal is
// the zero vector. Callers must treat that sentinel as "no data" and retain
// their last known normal rather than consume the zero.
type Result struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	HitCount int
}

// Ok reports whether the sample found any surface at all.
func (r Result) Ok() bool {
	return r.HitCount > 0
}

// Sample casts once per pattern point, from the body pose, and averages the
// hits. The position is the plain mean over all hits. The normal is a
// distance-weighted mean: each hit contributes weight
// clamp(1 - distance/(2*halfRange), 0, 1) with halfRange = maxDistance/2, so
// nearby surfaces dominate the reconstructed orientation. The two averages
// carry separate denominators, since a hit at full range contributes
// position but zero normal weight.
func Sample(position mgl64.Vec3, rotation mgl64.Quat, points []pattern.Point, caster phys.Caster, p CastParams) Result {
	var posSum, normSum mgl64.Vec3
	var weightSum float64
	hits := 0

	halfRange := p.MaxDistance / 2

	for _, sp := range points {
		origin := position.Add(rotation.Rotate(sp.Offset))
		dir := rotation.Rotate(sp.Dir)

		hit, ok := cast(caster, origin, dir, p)
		if !ok {
			continue
		}

		hits++
		posSum = posSum.Add(hit.Point)

		w := mgl64.Clamp(1-hit.Distance/(2*halfRange), 0, 1)
		normSum = normSum.Add(hit.Normal.Mul(w))
		weightSum += w
	}

	if hits == 0 {
		return Result{Point: position}
	}

	res := Result{
		Point:    posSum.Mul(1 / float64(hits)),
		HitCount: hits,
	}
	if weightSum > 0 {
		res.Normal = normSum.Mul(1 / weightSum).Normalize()
	}
	return res
}

// SampleTwoRing doubles the cast count per pattern point by offsetting each
// origin both forward and backward along the travel direction, for denser
// coverage at the body's leading and trailing edges. With zero velocity it
// degrades to a plain (double-cast) Sample.
func SampleTwoRing(position mgl64.Vec3, rotation mgl64.Quat, points []pattern.Point, velocity mgl64.Vec3, inner, outer float64, caster phys.Caster, p CastParams) Result {
	travel := mathx.SafeNormalize(velocity, mgl64.Vec3{})
	local := rotation.Inverse().Rotate(travel)

	doubled := make([]pattern.Point, 0, 2*len(points))
	for _, sp := range points {
		doubled = append(doubled,
			pattern.Point{Offset: sp.Offset.Add(local.Mul(outer)), Dir: sp.Dir},
			pattern.Point{Offset: sp.Offset.Sub(local.Mul(inner)), Dir: sp.Dir},
		)
	}

	return Sample(position, rotation, doubled, caster, p)
}

// ResolvePoint projects a predicted foothold onto the actual walking
// surface with a single cast, not a multi-point pattern. The probe starts
// above the target along up and fires down-and-forward, biased by velocity;
// if that misses, a second probe fires down-and-backward with half again the
// range. If both miss, the unprojected target comes back with ok=false and
// the retained-normal fallback is the caller's problem.
func ResolvePoint(target, up, velocity mgl64.Vec3, caster phys.Caster, p CastParams) (mgl64.Vec3, mgl64.Vec3, bool) {
	origin := target.Add(up.Mul(p.MaxDistance / 2))
	down := up.Mul(-1)

	fwd := mathx.SafeNormalize(down.Add(velocity.Mul(0.2)), down)
	if hit, ok := cast(caster, origin, fwd, p); ok {
		return hit.Point, hit.Normal, true
	}

	back := mathx.SafeNormalize(down.Sub(velocity.Mul(0.2)), down)
	ext := p
	ext.MaxDistance = p.MaxDistance * 1.5
	if hit, ok := cast(caster, origin, back, ext); ok {
		return hit.Point, hit.Normal, true
	}

	return target, mgl64.Vec3{}, false
}

func cast(caster phys.Caster, origin, dir mgl64.Vec3, p CastParams) (phys.Hit, bool) {
	if p.Radius > 0 {
		return caster.SphereCast(origin, p.Radius, dir, p.MaxDistance, p.Mask)
	}
	return caster.Raycast(origin, dir, p.MaxDistance, p.Mask)
}
