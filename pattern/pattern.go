// Package pattern generates the sample-point sets the surface code casts
// through: grids, golden-angle spheres and hemispheres, and rings. Generation
// is pure and deterministic, so a pattern can be regenerated from its
// parameters whenever configuration changes.
package pattern

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Maxashi/spiderbro/config"
	"github.com/Maxashi/spiderbro/mathx"
)

// goldenAngle spreads consecutive points by the irrational angle pi*(3-sqrt 5),
// which never resonates with the ring count and so covers the sphere evenly.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Point is a single sample: a position offset from the body origin and a
// probe direction, both body-local. Dir is always a unit vector.
type Point struct {
	Offset mgl64.Vec3
	Dir    mgl64.Vec3
}

// Params fully describes a pattern. Identical params generate identical
// point sets.
type Params struct {
	Kind   config.PatternKind
	Count  int
	Radius float64

	// Axis is the probe direction the pattern is built around: down for
	// ground hugging, outward for full-sphere probing. Need not be unit.
	Axis mgl64.Vec3

	// Curvature bows a grid's axial coordinate quadratically with radial
	// distance from center. Ignored by other kinds.
	Curvature float64

	// MaxAngle caps a hemisphere, in radians from the axis. Ignored by
	// other kinds.
	MaxAngle float64
}

// Generate returns the ordered point set for the given parameters. The grid
// kind returns ceil(sqrt(count))² points; every other kind returns exactly
// count points. Unknown kinds panic: the kind is validated at config load,
// so reaching here with a bad one is a programmer error.
func Generate(p Params) []Point {
	axis := mathx.SafeNormalize(p.Axis, mgl64.Vec3{0, -1, 0})

	switch p.Kind {
	case config.PatternGrid:
		if p.Count < 2 {
			// A single probe straight down the axis, dodging the per-axis
			// (side-1) normalization below.
			return []Point{{Dir: axis}}
		}
		return grid(p, axis)
	case config.PatternSphere:
		return sphere(p, axis, math.Pi)
	case config.PatternHemisphere:
		maxAngle := p.MaxAngle
		if maxAngle <= 0 {
			maxAngle = math.Pi / 2
		}
		return sphere(p, axis, maxAngle)
	case config.PatternCircle:
		if p.Count < 2 {
			return []Point{{Dir: axis}}
		}
		return circle(p, axis)
	default:
		panic(fmt.Sprintf("unknown pattern kind: %q", p.Kind))
	}
}

// grid arranges side² points in a square lattice spanning 2*radius in the
// plane orthogonal to the axis, all probing along the axis. Curvature bows
// the lattice toward the probe direction at its rim.
func grid(p Params, axis mgl64.Vec3) []Point {
	side := int(math.Ceil(math.Sqrt(float64(p.Count))))
	t1, t2 := mathx.Basis(axis)

	points := make([]Point, 0, side*side)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			// Normalized lattice coordinates in [-1, 1].
			u := 2*float64(i)/float64(side-1) - 1
			v := 2*float64(j)/float64(side-1) - 1

			offset := t1.Mul(u * p.Radius).Add(t2.Mul(v * p.Radius))
			if p.Curvature != 0 {
				offset = offset.Add(axis.Mul(p.Curvature * (u*u + v*v) / 2))
			}

			points = append(points, Point{Offset: offset, Dir: axis})
		}
	}

	return points
}

// sphere distributes count points over a golden-angle spiral. The cap angle
// is pi for a full sphere, or less for a hemisphere gathered around the
// axis. Each point probes radially outward.
func sphere(p Params, axis mgl64.Vec3, maxAngle float64) []Point {
	yMin := math.Cos(maxAngle)
	rot := mgl64.QuatBetweenVectors(mgl64.Vec3{0, 1, 0}, axis)

	points := make([]Point, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		// y runs linearly from the pole down to the cap. A single-point
		// pattern sits on the pole.
		y := 1.0
		if p.Count > 1 {
			y = 1 - (1-yMin)*float64(i)/float64(p.Count-1)
		}
		ring := math.Sqrt(math.Max(0, 1-y*y))
		theta := goldenAngle * float64(i)

		dir := rot.Rotate(mgl64.Vec3{
			math.Cos(theta) * ring,
			y,
			math.Sin(theta) * ring,
		})

		points = append(points, Point{
			Offset: dir.Mul(p.Radius),
			Dir:    dir,
		})
	}

	return points
}

// circle spaces count points evenly around a ring orthogonal to the axis,
// all probing along the axis.
func circle(p Params, axis mgl64.Vec3) []Point {
	t1, t2 := mathx.Basis(axis)

	points := make([]Point, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		theta := 2 * math.Pi * float64(i) / float64(p.Count)
		offset := t1.Mul(math.Cos(theta) * p.Radius).Add(t2.Mul(math.Sin(theta) * p.Radius))
		points = append(points, Point{Offset: offset, Dir: axis})
	}

	return points
}
