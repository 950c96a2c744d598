package gait

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundRobinCtx(n int, vel mgl64.Vec3) Context {
	return Context{
		DT:       1.0 / 60,
		Velocity: vel,
		StepSize: 0.4,
		Up:       mgl64.Vec3{0, 1, 0},
		Legs:     make([]LegView, n),
	}
}

func TestRoundRobinPeriod(t *testing.T) {
	g := &RoundRobin{Epsilon: 0.01}
	ctx := roundRobinCtx(4, mgl64.Vec3{0, 0, 1})

	// Constant speed 1 at 60Hz with stepSize 0.4 and 4 legs: the phase
	// crosses a leg slot every stepSize/(speed*dt*n) = 6 ticks.
	var fires []int
	var ticks []int
	for i := 0; i < 100; i++ {
		for _, idx := range g.Next(ctx) {
			fires = append(fires, idx)
			ticks = append(ticks, i)
		}
	}

	require.NotEmpty(t, fires)

	// One leg at a time, cycling 1,2,3,0,1,...
	for i, idx := range fires {
		assert.Equal(t, (i+1)%4, idx)
	}

	for i := 1; i < len(ticks); i++ {
		// Float accumulation can land a crossing one tick either side.
		assert.InDelta(t, 6, ticks[i]-ticks[i-1], 1, "steady speed fires at a constant interval")
	}
}

func TestRoundRobinFreezesBelowEpsilon(t *testing.T) {
	g := &RoundRobin{Epsilon: 0.01}
	ctx := roundRobinCtx(4, mgl64.Vec3{0, 0, 0.001})

	for i := 0; i < 200; i++ {
		assert.Empty(t, g.Next(ctx), "near-zero speed must not advance the gait")
	}
}

func TestRoundRobinSkipsMovingLeg(t *testing.T) {
	g := &RoundRobin{Epsilon: 0.01}
	ctx := roundRobinCtx(4, mgl64.Vec3{0, 0, 1})

	for i := range ctx.Legs {
		ctx.Legs[i].Moving = true
	}

	for i := 0; i < 100; i++ {
		assert.Empty(t, g.Next(ctx))
	}
}

func TestThresholdCap(t *testing.T) {
	g := &Threshold{MaxMoving: 2}

	ctx := Context{
		StepSize: 0.5,
		Up:       mgl64.Vec3{0, 1, 0},
		Legs: []LegView{
			{Planted: mgl64.Vec3{}, Desired: mgl64.Vec3{1, 0, 0}},
			{Planted: mgl64.Vec3{}, Desired: mgl64.Vec3{0, 0, 1}},
			{Planted: mgl64.Vec3{}, Desired: mgl64.Vec3{1, 0, 1}},
			{Planted: mgl64.Vec3{}, Desired: mgl64.Vec3{0.1, 0, 0}}, // within threshold
		},
	}

	fired := g.Next(ctx)
	assert.Equal(t, []int{0, 1}, fired, "cap limits concurrent steps")
}

func TestThresholdCountsInFlightLegs(t *testing.T) {
	g := &Threshold{MaxMoving: 2}

	ctx := Context{
		StepSize: 0.5,
		Up:       mgl64.Vec3{0, 1, 0},
		Legs: []LegView{
			{Moving: true},
			{Planted: mgl64.Vec3{}, Desired: mgl64.Vec3{1, 0, 0}},
			{Planted: mgl64.Vec3{}, Desired: mgl64.Vec3{0, 0, 1}},
		},
	}

	fired := g.Next(ctx)
	assert.Equal(t, []int{1}, fired, "a leg already in flight counts toward the cap")
}

func TestThresholdIgnoresHeight(t *testing.T) {
	g := &Threshold{MaxMoving: 4}

	// The desired point is far away, but only along up: planar distance is
	// zero, so no step fires.
	ctx := Context{
		StepSize: 0.5,
		Up:       mgl64.Vec3{0, 1, 0},
		Legs: []LegView{
			{Planted: mgl64.Vec3{}, Desired: mgl64.Vec3{0, 10, 0}},
		},
	}

	assert.Empty(t, g.Next(ctx))
}
