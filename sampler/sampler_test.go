package sampler

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maxashi/spiderbro/config"
	fakephys "github.com/Maxashi/spiderbro/fake/phys"
	"github.com/Maxashi/spiderbro/pattern"
	"github.com/Maxashi/spiderbro/phys"
)

var defaultCast = CastParams{
	MaxDistance: 2,
	Mask:        phys.MaskAll,
}

func gridDown(count int) []pattern.Point {
	return pattern.Generate(pattern.Params{
		Kind:   config.PatternGrid,
		Count:  count,
		Radius: 0.5,
		Axis:   mgl64.Vec3{0, -1, 0},
	})
}

func TestSampleZeroHitsSentinel(t *testing.T) {
	world := &fakephys.World{} // empty: every cast misses

	pos := mgl64.Vec3{1, 2, 3}
	res := Sample(pos, mgl64.QuatIdent(), gridDown(9), world, defaultCast)

	assert.False(t, res.Ok())
	assert.Equal(t, 0, res.HitCount)
	assert.Equal(t, pos, res.Point, "zero-hit sample must return the probe point unchanged")
	assert.Equal(t, mgl64.Vec3{}, res.Normal, "zero-hit sample must return the zero-normal sentinel")
}

func TestSampleFlatPlane(t *testing.T) {
	world := fakephys.NewFlatGround()
	points := gridDown(9)

	res := Sample(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), points, world, defaultCast)

	require.True(t, res.Ok())
	assert.Equal(t, len(points), res.HitCount)
	assert.InDelta(t, 0, res.Point.Y(), 1e-9, "averaged point lies on the plane")
	assert.InDelta(t, 1, res.Normal.Dot(mgl64.Vec3{0, 1, 0}), 1e-9)
}

func TestSampleWeightsNearbyNormals(t *testing.T) {
	// One probe hits the floor 1 unit away, the other a wall 2 units away.
	// The closer hit must dominate the averaged normal.
	world := fakephys.NewFlatGround()
	world.AddPlane(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{-1, 0, 0})

	points := []pattern.Point{
		{Dir: mgl64.Vec3{0, -1, 0}},
		{Dir: mgl64.Vec3{1, 0, 0}},
	}

	res := Sample(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), points, world, CastParams{
		MaxDistance: 4,
		Mask:        phys.MaskAll,
	})

	require.Equal(t, 2, res.HitCount)
	assert.Greater(t, res.Normal.Y(), 0.0)
	assert.Less(t, res.Normal.X(), 0.0)
	assert.Greater(t, res.Normal.Y(), -res.Normal.X(), "nearer floor hit outweighs the farther wall hit")
}

func TestSampleTwoRingDoublesCasts(t *testing.T) {
	rec := &fakephys.Recorder{Inner: fakephys.NewFlatGround()}
	points := gridDown(9)

	res := SampleTwoRing(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), points, mgl64.Vec3{0, 0, 1}, 0.1, 0.2, rec, defaultCast)

	assert.Equal(t, 2*len(points), rec.Raycasts)
	assert.Equal(t, 2*len(points), res.HitCount)
}

func TestResolvePointProjects(t *testing.T) {
	world := fakephys.NewFlatGround()

	target := mgl64.Vec3{0.5, 0.3, -0.2}
	point, normal, ok := ResolvePoint(target, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, world, defaultCast)

	require.True(t, ok)
	assert.InDelta(t, 0, point.Y(), 1e-9)
	assert.InDelta(t, 0.5, point.X(), 1e-9)
	assert.InDelta(t, -0.2, point.Z(), 1e-9)
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, normal)
}

func TestResolvePointMissFallsBackToTarget(t *testing.T) {
	world := &fakephys.World{}

	target := mgl64.Vec3{1, 2, 3}
	point, normal, ok := ResolvePoint(target, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}, world, defaultCast)

	assert.False(t, ok)
	assert.Equal(t, target, point, "unprojected target comes back on a double miss")
	assert.Equal(t, mgl64.Vec3{}, normal)
}

func TestSphereCastRadiusUsed(t *testing.T) {
	rec := &fakephys.Recorder{Inner: fakephys.NewFlatGround()}

	p := defaultCast
	p.Radius = 0.25
	Sample(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), gridDown(4), rec, p)

	assert.Zero(t, rec.Raycasts)
	assert.Equal(t, 4, rec.SphereCasts)
}
