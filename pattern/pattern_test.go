package pattern

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maxashi/spiderbro/config"
)

func TestSphereCounts(t *testing.T) {
	for _, count := range []int{1, 2, 16, 100} {
		points := Generate(Params{
			Kind:   config.PatternSphere,
			Count:  count,
			Radius: 0.5,
			Axis:   mgl64.Vec3{0, 1, 0},
		})

		require.Len(t, points, count)
		for _, p := range points {
			assert.InDelta(t, 0.5, p.Offset.Len(), 1e-9)
			assert.InDelta(t, 1, p.Dir.Len(), 1e-9)
		}
	}
}

func TestSphereCoversBothHemispheres(t *testing.T) {
	points := Generate(Params{
		Kind:   config.PatternSphere,
		Count:  100,
		Radius: 1,
		Axis:   mgl64.Vec3{0, 1, 0},
	})

	minY, maxY := 1.0, -1.0
	for _, p := range points {
		minY = math.Min(minY, p.Dir.Y())
		maxY = math.Max(maxY, p.Dir.Y())
	}

	// y runs linearly over [1, -1], so the poles are the exact endpoints.
	assert.InDelta(t, 1, maxY, 1e-9)
	assert.InDelta(t, -1, minY, 1e-9)
}

func TestHemisphereCap(t *testing.T) {
	maxAngle := 80 * math.Pi / 180
	axis := mgl64.Vec3{0, -1, 0}

	points := Generate(Params{
		Kind:     config.PatternHemisphere,
		Count:    50,
		Radius:   1,
		Axis:     axis,
		MaxAngle: maxAngle,
	})

	require.Len(t, points, 50)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Dir.Dot(axis), math.Cos(maxAngle)-1e-9)
	}
}

func TestGridCountAndSymmetry(t *testing.T) {
	type eg struct {
		count int
		side  int
	}

	examples := []eg{
		{2, 2},
		{9, 3},
		{10, 4},
		{16, 4},
		{17, 5},
	}

	axis := mgl64.Vec3{0, -1, 0}

	for _, x := range examples {
		points := Generate(Params{
			Kind:   config.PatternGrid,
			Count:  x.count,
			Radius: 1,
			Axis:   axis,
		})

		require.Len(t, points, x.side*x.side)

		var sum mgl64.Vec3
		for _, p := range points {
			sum = sum.Add(p.Offset)
			assert.Equal(t, axis, p.Dir)
		}

		// The lattice is symmetric about the pattern center.
		assert.InDelta(t, 0, sum.Len(), 1e-9)
	}
}

func TestGridCurvature(t *testing.T) {
	axis := mgl64.Vec3{0, -1, 0}
	points := Generate(Params{
		Kind:      config.PatternGrid,
		Count:     9,
		Radius:    1,
		Axis:      axis,
		Curvature: 0.4,
	})

	var center, corner float64
	for _, p := range points {
		bow := p.Offset.Dot(axis)
		rho := p.Offset.Sub(axis.Mul(bow)).Len()
		if rho < 1e-9 {
			center = bow
		}
		if rho > 1.4 { // corners sit at sqrt(2)*radius
			corner = bow
		}
	}

	// The bow grows quadratically from zero at the center to the full
	// curvature at the corners.
	assert.InDelta(t, 0, center, 1e-9)
	assert.InDelta(t, 0.4, corner, 1e-9)
}

func TestTinyCountsCollapse(t *testing.T) {
	for _, kind := range []config.PatternKind{config.PatternGrid, config.PatternCircle} {
		points := Generate(Params{
			Kind:   kind,
			Count:  1,
			Radius: 1,
			Axis:   mgl64.Vec3{0, -1, 0},
		})

		require.Len(t, points, 1)
		assert.Equal(t, mgl64.Vec3{}, points[0].Offset)
		assert.Equal(t, mgl64.Vec3{0, -1, 0}, points[0].Dir)
	}
}

func TestCircle(t *testing.T) {
	axis := mgl64.Vec3{0, -1, 0}
	points := Generate(Params{
		Kind:   config.PatternCircle,
		Count:  8,
		Radius: 2,
		Axis:   axis,
	})

	require.Len(t, points, 8)
	for i, p := range points {
		assert.InDelta(t, 2, p.Offset.Len(), 1e-9)
		assert.InDelta(t, 0, p.Offset.Dot(axis), 1e-9)

		// Even angular spacing between neighbors.
		next := points[(i+1)%8]
		gap := p.Offset.Normalize().Dot(next.Offset.Normalize())
		assert.InDelta(t, math.Cos(2*math.Pi/8), gap, 1e-9)
	}
}

func TestDeterministic(t *testing.T) {
	p := Params{
		Kind:   config.PatternSphere,
		Count:  32,
		Radius: 0.75,
		Axis:   mgl64.Vec3{0, -1, 0},
	}

	assert.Equal(t, Generate(p), Generate(p))
}
