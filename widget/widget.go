// Package widget is the mini-app client: it owns the widget state machine,
// talks to the award service, drives the wheel animation and reports the
// result to the hosting application. Everything here runs on the host's
// single scheduling goroutine; nothing blocks between frames.
package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jeke8989/telegram-bot-rns/wheel"
)

// State is the explicit widget lifecycle. The spin trigger is only live in
// StateIdle; everything else keeps it disabled so duplicate taps cannot fire
// concurrent award calls from one widget instance.
type State int

const (
	StateIdle State = iota
	StateAwaitingServer
	StateAnimating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingServer:
		return "awaiting_server"
	case StateAnimating:
		return "animating"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Host is the surface the widget reports through: the Telegram WebApp bridge
// in production (sendData + close), fakes in tests.
type Host interface {
	SendData(payload []byte) error
	Close()
}

// Widget is one user's wheel view.
type Widget struct {
	api        *Client
	host       Host
	sched      wheel.FrameScheduler
	telegramID int64

	wheel    *wheel.Wheel
	state    State
	rotation float64
	prize    int
	hasPrize bool
	anim     *wheel.Animation
}

func New(api *Client, host Host, sched wheel.FrameScheduler, telegramID int64) *Widget {
	return &Widget{
		api:        api,
		host:       host,
		sched:      sched,
		telegramID: telegramID,
		state:      StateIdle,
	}
}

// Init fetches the wheel configuration and the user's eligibility. A user
// with a recorded spin starts in StateDone showing the stored prize; the
// wheel is never spinnable for them.
func (w *Widget) Init(ctx context.Context) error {
	cfg, err := w.api.WheelConfig(ctx)
	if err != nil {
		return err
	}
	wh, err := wheel.New(cfg.Prizes)
	if err != nil {
		return fmt.Errorf("server wheel config: %w", err)
	}
	w.wheel = wh

	elig, err := w.api.CanSpin(ctx, w.telegramID)
	if err != nil {
		return err
	}
	if !elig.CanSpin {
		if elig.Prize != nil {
			w.prize = *elig.Prize
			w.hasPrize = true
		}
		w.state = StateDone
	}
	return nil
}

// State returns the current lifecycle state.
func (w *Widget) State() State { return w.state }

// Rotation returns the current wheel rotation.
func (w *Widget) Rotation() float64 { return w.rotation }

// Prize returns the awarded prize once known.
func (w *Widget) Prize() (int, bool) { return w.prize, w.hasPrize }

// Render lays out the wheel for the current rotation. Pure apart from
// reading the rotation; safe to call every frame.
func (w *Widget) Render() []wheel.Segment {
	if w.wheel == nil {
		return nil
	}
	return w.wheel.Layout(w.rotation)
}

// Spin is the user's one-time action. It rejects anything but StateIdle,
// asks the server for the award, then animates to the assigned prize. On a
// transport failure the widget returns to StateIdle so the user may retry
// manually; the failure is never treated as a result.
func (w *Widget) Spin(ctx context.Context) error {
	if w.wheel == nil {
		return errors.New("widget not initialized")
	}
	if w.state != StateIdle {
		return fmt.Errorf("spin not available in state %s", w.state)
	}

	w.state = StateAwaitingServer
	prize, err := w.api.Spin(ctx, w.telegramID)
	if err != nil {
		var already *AlreadySpunError
		if errors.As(err, &already) {
			// Expected case: show the stored prize, no animation, no report.
			w.prize = already.Prize
			w.hasPrize = true
			w.state = StateDone
			return nil
		}
		w.state = StateIdle
		return err
	}

	anim, err := w.wheel.AnimateToPrize(prize, w.rotation, w.sched,
		func(rotation float64) { w.rotation = rotation },
		func() { w.finish() })
	if err != nil {
		// ErrUnknownPrize: configuration drift between client and server.
		// The award is persisted server-side but this widget cannot honestly
		// render it, so the attempt dies here rather than landing on a wrong
		// segment.
		w.prize = prize
		w.hasPrize = true
		w.state = StateDone
		return err
	}

	w.prize = prize
	w.hasPrize = true
	w.state = StateAnimating
	w.anim = anim
	return anim.Start(time.Now())
}

// finish runs synchronously with the final animation frame: report the prize
// to the host exactly once, then close the view.
func (w *Widget) finish() {
	w.state = StateDone
	payload, err := json.Marshal(map[string]int{"prize": w.prize})
	if err == nil {
		_ = w.host.SendData(payload)
	}
	w.host.Close()
}
