// Fake collision worlds built from infinite planes, for tests and the demo
// binary. Plane math is analytic, so hits are exact.
package phys

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Maxashi/spiderbro/phys"
)

// Plane is a one-sided infinite plane. Casts only hit the side the normal
// points toward.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Mask   phys.Mask
}

// World is a phys.Caster over a set of planes. The zero value is an empty
// world in which every cast misses.
type World struct {
	Planes []Plane
}

// NewFlatGround returns a world containing only the y=0 ground plane.
func NewFlatGround() *World {
	w := &World{}
	w.AddPlane(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	return w
}

// NewRoom returns a world with a floor at y=0 and four inward-facing walls
// at ±half on the X and Z axes. Handy for wall-walking scenarios.
func NewRoom(half float64) *World {
	w := NewFlatGround()
	w.AddPlane(mgl64.Vec3{half, 0, 0}, mgl64.Vec3{-1, 0, 0})
	w.AddPlane(mgl64.Vec3{-half, 0, 0}, mgl64.Vec3{1, 0, 0})
	w.AddPlane(mgl64.Vec3{0, 0, half}, mgl64.Vec3{0, 0, -1})
	w.AddPlane(mgl64.Vec3{0, 0, -half}, mgl64.Vec3{0, 0, 1})
	return w
}

// AddPlane appends a plane hit by every mask.
func (w *World) AddPlane(point, normal mgl64.Vec3) {
	w.Planes = append(w.Planes, Plane{
		Point:  point,
		Normal: normal.Normalize(),
		Mask:   phys.MaskAll,
	})
}

// Raycast returns the nearest front-face plane intersection within maxDist.
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask phys.Mask) (phys.Hit, bool) {
	return w.cast(origin, 0, dir, maxDist, mask)
}

// SphereCast sweeps a sphere of the given radius along the ray. Contact
// happens when the sphere surface touches a plane, so the reported distance
// is shorter than the equivalent raycast by radius along the plane normal.
func (w *World) SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDist float64, mask phys.Mask) (phys.Hit, bool) {
	return w.cast(origin, radius, dir, maxDist, mask)
}

func (w *World) cast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDist float64, mask phys.Mask) (phys.Hit, bool) {
	var best phys.Hit
	bestDist := math.Inf(1)

	for _, p := range w.Planes {
		if p.Mask&mask == 0 {
			continue
		}

		denom := dir.Dot(p.Normal)
		if denom >= -1e-9 {
			// Parallel, or moving away from the front face.
			continue
		}

		// Signed height of the cast origin above the plane.
		h := origin.Sub(p.Point).Dot(p.Normal)
		if h < 0 {
			// Origin is behind the plane.
			continue
		}

		t := (h - radius) / -denom
		if t < 0 {
			// Sphere already touching; contact at the start of the sweep.
			t = 0
		}
		if t > maxDist || t >= bestDist {
			continue
		}

		center := origin.Add(dir.Mul(t))
		contact := center.Sub(p.Normal.Mul(center.Sub(p.Point).Dot(p.Normal)))

		best = phys.Hit{
			Point:    contact,
			Normal:   p.Normal,
			Distance: t,
		}
		bestDist = t
	}

	if math.IsInf(bestDist, 1) {
		return phys.Hit{}, false
	}
	return best, true
}

// Recorder wraps a caster and counts queries, for asserting on cast volume
// in tests.
type Recorder struct {
	Inner phys.Caster

	Raycasts    int
	SphereCasts int
}

func (r *Recorder) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask phys.Mask) (phys.Hit, bool) {
	r.Raycasts++
	return r.Inner.Raycast(origin, dir, maxDist, mask)
}

func (r *Recorder) SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, maxDist float64, mask phys.Mask) (phys.Hit, bool) {
	r.SphereCasts++
	return r.Inner.SphereCast(origin, radius, dir, maxDist, mask)
}
