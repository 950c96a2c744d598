package legs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepSpansSubSteps(t *testing.T) {
	l := &Leg{Name: "leg-0"}
	l.snapTo(mgl64.Vec3{0, 0, 0})

	target := mgl64.Vec3{1, 0, 0}
	up := mgl64.Vec3{0, 1, 0}

	const k = 4
	l.beginStep(target, up, 0.2, k)
	require.True(t, l.Moving)

	var mids []mgl64.Vec3
	for i := 0; i < k-1; i++ {
		l.advance()
		require.True(t, l.Moving, "moving throughout the arc")
		assert.NotEqual(t, target, l.Foot)
		mids = append(mids, l.Foot)
	}

	// Intermediate positions progress along the travel axis and lift off
	// the ground.
	for i, m := range mids {
		assert.InDelta(t, float64(i+1)/k, m.X(), 1e-9)
		assert.Greater(t, m.Y(), 0.0, "arc lifts the foot")
	}

	// The final sub-step lands exactly on the target.
	l.advance()
	assert.False(t, l.Moving)
	assert.Equal(t, target, l.Foot)
	assert.Equal(t, target, l.Planted)
}

func TestStepArcPeaksMidway(t *testing.T) {
	l := &Leg{}
	l.snapTo(mgl64.Vec3{})

	l.beginStep(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, 0.5, 2)
	l.advance()

	// sin(pi/2) puts the single intermediate position at full step height.
	assert.InDelta(t, 0.5, l.Foot.Y(), 1e-9)

	l.advance()
	assert.InDelta(t, 0, l.Foot.Y(), 1e-9)
	assert.False(t, l.Moving)
}

func TestZeroSubStepsStillTerminates(t *testing.T) {
	l := &Leg{}
	l.snapTo(mgl64.Vec3{})

	target := mgl64.Vec3{0, 0, 1}
	l.beginStep(target, mgl64.Vec3{0, 1, 0}, 0.2, 0)
	l.advance()

	assert.False(t, l.Moving)
	assert.Equal(t, target, l.Foot)
}

func TestSnapTo(t *testing.T) {
	l := &Leg{}
	l.beginStep(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{0, 1, 0}, 0.2, 4)

	p := mgl64.Vec3{1, 2, 3}
	l.snapTo(p)

	assert.False(t, l.Moving)
	assert.Equal(t, p, l.Foot)
	assert.Equal(t, p, l.Planted)
}

func TestAbortMidStep(t *testing.T) {
	l := &Leg{}
	l.snapTo(mgl64.Vec3{})

	l.beginStep(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, 0.2, 4)
	l.advance()
	mid := l.Foot

	l.abort()

	assert.False(t, l.Moving)
	assert.Equal(t, mid, l.Foot, "an aborted step replants in place")
	assert.Equal(t, mid, l.Planted)

	// Advancing a dead step must not move the foot again.
	l.advance()
	assert.Equal(t, mid, l.Foot)
}
