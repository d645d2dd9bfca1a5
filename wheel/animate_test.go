package wheel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler drives frames by hand so tests control the clock.
type manualScheduler struct {
	pending []func(now time.Time)
}

func (m *manualScheduler) RequestFrame(fn func(now time.Time)) {
	m.pending = append(m.pending, fn)
}

func (m *manualScheduler) fire(now time.Time) bool {
	if len(m.pending) == 0 {
		return false
	}
	fn := m.pending[0]
	m.pending = m.pending[1:]
	fn(now)
	return true
}

func newTestAnimation(t *testing.T, prize int, sched FrameScheduler, onFrame func(float64), onDone func()) *Animation {
	t.Helper()
	w, err := New(testPrizes)
	require.NoError(t, err)
	anim, err := w.AnimateToPrize(prize, 0, sched, onFrame, onDone)
	require.NoError(t, err)
	return anim
}

func TestAnimationReachesExactTarget(t *testing.T) {
	sched := &manualScheduler{}

	var frames []float64
	doneCalls := 0
	anim := newTestAnimation(t, 15000, sched,
		func(r float64) { frames = append(frames, r) },
		func() { doneCalls++ })

	start := time.Unix(1700000000, 0)
	require.NoError(t, anim.Start(start))

	// Drive frames at ~60fps until the animation finishes.
	now := start
	for !anim.Done() {
		now = now.Add(16 * time.Millisecond)
		require.True(t, sched.fire(now), "animation stalled without completing")
	}

	require.NotEmpty(t, frames)
	w, _ := New(testPrizes)
	target, err := w.TargetRotation(15000, 0)
	require.NoError(t, err)
	assert.Equal(t, target, frames[len(frames)-1], "final frame must be the exact target rotation")
	assert.Equal(t, 1, doneCalls)

	// No further frames are scheduled after completion.
	assert.Empty(t, sched.pending)
}

func TestAnimationRotationNeverDecreases(t *testing.T) {
	sched := &manualScheduler{}

	var frames []float64
	anim := newTestAnimation(t, 30000, sched,
		func(r float64) { frames = append(frames, r) }, nil)

	start := time.Unix(1700000000, 0)
	require.NoError(t, anim.Start(start))

	now := start
	for !anim.Done() {
		now = now.Add(33 * time.Millisecond)
		sched.fire(now)
	}

	for i := 1; i < len(frames); i++ {
		assert.GreaterOrEqual(t, frames[i], frames[i-1],
			"rotation went backward between frames %d and %d", i-1, i)
	}
}

func TestAnimationEasesOut(t *testing.T) {
	sched := &manualScheduler{}

	var frames []float64
	anim := newTestAnimation(t, 5000, sched,
		func(r float64) { frames = append(frames, r) }, nil)

	start := time.Unix(1700000000, 0)
	require.NoError(t, anim.Start(start))

	now := start
	for !anim.Done() {
		now = now.Add(16 * time.Millisecond)
		sched.fire(now)
	}

	// Deceleration: the first half of the spin covers more rotation than the
	// second half.
	mid := frames[len(frames)/2]
	firstHalf := mid - frames[0]
	secondHalf := frames[len(frames)-1] - mid
	assert.Greater(t, firstHalf, secondHalf)
}

// A suspend/resume gap makes progress jump forward to wherever the clock
// says it should be; an over-long gap completes the spin on the next frame.
func TestAnimationSuspendResumeJumpsForward(t *testing.T) {
	sched := &manualScheduler{}

	var frames []float64
	doneCalls := 0
	anim := newTestAnimation(t, 20000, sched,
		func(r float64) { frames = append(frames, r) },
		func() { doneCalls++ })

	start := time.Unix(1700000000, 0)
	require.NoError(t, anim.Start(start))
	sched.fire(start.Add(50 * time.Millisecond))

	// Host suspends for far longer than the spin duration.
	require.True(t, sched.fire(start.Add(SpinDuration+time.Minute)))

	assert.True(t, anim.Done())
	assert.Equal(t, 1, doneCalls)
	w, _ := New(testPrizes)
	target, err := w.TargetRotation(20000, 0)
	require.NoError(t, err)
	assert.Equal(t, target, frames[len(frames)-1])
}

func TestAnimationNotRestartable(t *testing.T) {
	sched := &manualScheduler{}
	anim := newTestAnimation(t, 10000, sched, nil, nil)

	start := time.Unix(1700000000, 0)
	require.NoError(t, anim.Start(start))
	assert.Error(t, anim.Start(start.Add(time.Second)))
}

func TestAnimationCancelIsNoOp(t *testing.T) {
	sched := &manualScheduler{}

	doneCalls := 0
	anim := newTestAnimation(t, 25000, sched, nil, func() { doneCalls++ })

	start := time.Unix(1700000000, 0)
	require.NoError(t, anim.Start(start))
	anim.Cancel()

	now := start
	for !anim.Done() {
		now = now.Add(16 * time.Millisecond)
		require.True(t, sched.fire(now))
	}
	assert.Equal(t, 1, doneCalls, "Cancel must not suppress completion")
}

func TestDoneCallbackFiresWithFinalFrame(t *testing.T) {
	sched := &manualScheduler{}

	var lastSeenAtDone float64
	var frames []float64
	anim := newTestAnimation(t, 10000, sched,
		func(r float64) { frames = append(frames, r) },
		func() { lastSeenAtDone = frames[len(frames)-1] })

	start := time.Unix(1700000000, 0)
	require.NoError(t, anim.Start(start))
	sched.fire(start.Add(SpinDuration))

	assert.True(t, anim.Done())
	w, _ := New(testPrizes)
	target, _ := w.TargetRotation(10000, 0)
	assert.Equal(t, target, lastSeenAtDone, "onDone must observe the final frame already rendered")
}
