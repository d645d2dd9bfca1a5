package wheel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPrizes = []int{5000, 10000, 15000, 20000, 25000, 30000}

func TestNewRejectsEmptyWheel(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestIndexOfUnknownPrize(t *testing.T) {
	w, err := New(testPrizes)
	require.NoError(t, err)

	_, err = w.IndexOf(7777)
	assert.ErrorIs(t, err, ErrUnknownPrize)

	_, err = w.TargetRotation(7777, 0)
	assert.ErrorIs(t, err, ErrUnknownPrize)
}

// Every prize must land with its segment center under the pointer, for any
// starting rotation.
func TestTargetRotationLandsOnSegmentCenter(t *testing.T) {
	w, err := New(testPrizes)
	require.NoError(t, err)

	starts := []float64{0, 0.3, math.Pi, 5.9, 12.7, -2.4}
	for _, prize := range testPrizes {
		for _, start := range starts {
			target, err := w.TargetRotation(prize, start)
			require.NoError(t, err)

			offset, err := w.PointerOffset(prize, target)
			require.NoError(t, err)
			assert.InDelta(t, 0, offset, 1e-9,
				"prize %d from start %.2f landed %.6f rad off center", prize, start, offset)
		}
	}
}

// The wheel only spins forward, and always by at least the configured number
// of full turns.
func TestTargetRotationSpinsForward(t *testing.T) {
	w, err := New(testPrizes)
	require.NoError(t, err)

	for _, prize := range testPrizes {
		target, err := w.TargetRotation(prize, 1.5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, target-1.5, float64(ExtraTurns)*2*math.Pi)
		assert.Less(t, target-1.5, float64(ExtraTurns+1)*2*math.Pi)
	}
}

func TestLayoutGeometry(t *testing.T) {
	w, err := New(testPrizes)
	require.NoError(t, err)

	segments := w.Layout(0)
	require.Len(t, segments, len(testPrizes))

	width := 2 * math.Pi / float64(len(testPrizes))
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, testPrizes[i], seg.Prize)
		assert.InDelta(t, float64(i)*width, seg.Start, 1e-9)
		assert.InDelta(t, normalizeAngle(float64(i)*width+width/2), seg.Center, 1e-9)
		assert.NotEmpty(t, seg.Color)
		assert.NotEmpty(t, seg.Label)
	}

	// Labels use the shared prize formatting.
	assert.Equal(t, "5 000 ₽", segments[0].Label)
}

// Layout is a pure function of rotation: same input, same output, no
// internal state advanced.
func TestLayoutIsPure(t *testing.T) {
	w, err := New(testPrizes)
	require.NoError(t, err)

	first := w.Layout(1.234)
	second := w.Layout(1.234)
	assert.Equal(t, first, second)
}

func TestLayoutRotationShiftsSegments(t *testing.T) {
	w, err := New(testPrizes)
	require.NoError(t, err)

	base := w.Layout(0)
	rotated := w.Layout(0.5)
	for i := range base {
		assert.InDelta(t, normalizeAngle(base[i].Start+0.5), rotated[i].Start, 1e-9)
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, normalizeAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, normalizeAngle(-math.Pi), 1e-12)
	assert.InDelta(t, 1.0, normalizeAngle(1.0+8*math.Pi), 1e-9)
}
