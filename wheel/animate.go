package wheel

import (
	"errors"
	"time"
)

// SpinDuration is how long a spin takes from trigger to rest.
const SpinDuration = 4 * time.Second

// FrameScheduler hands control back to the host between animation frames.
// Implementations must invoke the callback at most once per request, from a
// single goroutine; the animator never blocks inside a frame.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time))
}

// TickerScheduler is the production scheduler: frames at a fixed interval on
// a background timer. Callbacks fire one at a time (time.AfterFunc schedules
// the next frame only after the previous callback returns to the animator).
type TickerScheduler struct {
	Interval time.Duration
}

func (s TickerScheduler) RequestFrame(fn func(now time.Time)) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	time.AfterFunc(interval, func() {
		fn(time.Now())
	})
}

// Animation is a single spin in flight. It is finite, not restartable and,
// like the widget it animates, confined to the host's scheduling goroutine.
type Animation struct {
	start    float64
	target   float64
	duration time.Duration
	sched    FrameScheduler

	onFrame func(rotation float64)
	onDone  func()

	started   bool
	done      bool
	startedAt time.Time
}

// AnimateToPrize prepares a spin from the current rotation to the rotation
// that lands prize under the pointer. onFrame receives every intermediate
// rotation, including the exact final one; onDone fires exactly once,
// synchronously with the final frame. Fails with ErrUnknownPrize when the
// prize is not on the wheel.
func (w *Wheel) AnimateToPrize(prize int, current float64, sched FrameScheduler, onFrame func(rotation float64), onDone func()) (*Animation, error) {
	target, err := w.TargetRotation(prize, current)
	if err != nil {
		return nil, err
	}
	return &Animation{
		start:    current,
		target:   target,
		duration: SpinDuration,
		sched:    sched,
		onFrame:  onFrame,
		onDone:   onDone,
	}, nil
}

// Start begins the animation at the given wall-clock instant. A second call
// is an error: spins are one-shot.
func (a *Animation) Start(now time.Time) error {
	if a.started {
		return errors.New("animation already started")
	}
	a.started = true
	a.startedAt = now
	a.step(now)
	return nil
}

// Cancel is deliberately a no-op. The original widget exposes no way to stop
// a spin mid-flight, and silently introducing one would let a client drop the
// completion callback after the server has already persisted the award. The
// method exists so the absence of cancellation is a stated decision callers
// can see, not an accident.
func (a *Animation) Cancel() {}

// Done reports whether the animation has delivered its final frame.
func (a *Animation) Done() bool {
	return a.done
}

// step renders one frame. Progress is computed from wall-clock elapsed time,
// not frame count: if the host suspends and resumes, progress jumps forward
// to where the clock says it should be, never backward.
func (a *Animation) step(now time.Time) {
	if a.done {
		return
	}

	elapsed := now.Sub(a.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	if elapsed >= a.duration {
		a.done = true
		if a.onFrame != nil {
			a.onFrame(a.target)
		}
		if a.onDone != nil {
			a.onDone()
		}
		return
	}

	t := float64(elapsed) / float64(a.duration)
	rotation := a.start + (a.target-a.start)*easeOutCubic(t)
	if a.onFrame != nil {
		a.onFrame(rotation)
	}
	a.sched.RequestFrame(a.step)
}

// easeOutCubic decelerates: fast at the start of the spin, slow at the end.
func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
