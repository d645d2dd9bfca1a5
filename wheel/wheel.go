// Package wheel implements the prize wheel: segment geometry, the rotation
// that lands a given prize under the pointer, and the time-driven spin
// animation. The wheel itself is pure math; drawing is left to whatever
// canvas consumes Layout.
package wheel

import (
	"errors"
	"fmt"
	"math"

	"github.com/jeke8989/telegram-bot-rns/utils"
)

// ErrUnknownPrize means the server returned a prize that is not on the
// configured wheel. That is client/server configuration drift and fatal to
// the spin attempt: landing on an arbitrary fallback segment would show the
// user a value they did not win.
var ErrUnknownPrize = errors.New("prize is not on the wheel")

// Angles are in radians, measured clockwise with 0 at the pointer
// (12 o'clock). A segment at local angle θ on a wheel rotated by R is drawn
// at θ+R.
const pointerAngle = 0.0

// ExtraTurns is how many full rotations are added on top of the resolving
// rotation so the spin reads as a real spin. Presentation only; any value
// lands on the same segment.
const ExtraTurns = 5

// palette is indexed by segment position modulo its length.
var palette = []string{
	"#e74c3c", "#f39c12", "#f1c40f",
	"#2ecc71", "#3498db", "#9b59b6",
}

// Segment is one wedge of the wheel in screen space for a given rotation.
type Segment struct {
	Index  int     `json:"index"`
	Prize  int     `json:"prize"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Start  float64 `json:"start"`
	Center float64 `json:"center"`
	End    float64 `json:"end"`
}

// Wheel is an immutable wheel built from an ordered prize list.
type Wheel struct {
	prizes []int
}

// New builds a wheel. The prize order is the segment order.
func New(prizes []int) (*Wheel, error) {
	if len(prizes) == 0 {
		return nil, errors.New("wheel needs at least one prize")
	}
	w := &Wheel{prizes: make([]int, len(prizes))}
	copy(w.prizes, prizes)
	return w, nil
}

// Prizes returns the ordered prize list.
func (w *Wheel) Prizes() []int {
	out := make([]int, len(w.prizes))
	copy(out, w.prizes)
	return out
}

// SegmentCount returns the number of segments.
func (w *Wheel) SegmentCount() int {
	return len(w.prizes)
}

// SegmentAngle returns the angular width of one segment.
func (w *Wheel) SegmentAngle() float64 {
	return 2 * math.Pi / float64(len(w.prizes))
}

// SegmentCenter returns the wheel-local angle of segment i's center.
func (w *Wheel) SegmentCenter(i int) float64 {
	width := w.SegmentAngle()
	return float64(i)*width + width/2
}

// IndexOf locates a prize on the wheel.
func (w *Wheel) IndexOf(prize int) (int, error) {
	for i, p := range w.prizes {
		if p == prize {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownPrize, prize)
}

// TargetRotation computes the total rotation that, starting from current,
// puts the prize's segment center exactly under the pointer after ExtraTurns
// additional full turns. The result is always strictly ahead of current so
// the wheel only ever spins forward.
func (w *Wheel) TargetRotation(prize int, current float64) (float64, error) {
	idx, err := w.IndexOf(prize)
	if err != nil {
		return 0, err
	}
	// Solve pointerAngle == center + rotation (mod 2π) for rotation.
	resolve := normalizeAngle(pointerAngle - w.SegmentCenter(idx) - current)
	return current + resolve + ExtraTurns*2*math.Pi, nil
}

// PointerOffset reports how far the given rotation's landing angle is from
// prize's segment center, normalized into [-π, π). Zero means a perfect
// landing.
func (w *Wheel) PointerOffset(prize int, rotation float64) (float64, error) {
	idx, err := w.IndexOf(prize)
	if err != nil {
		return 0, err
	}
	diff := normalizeAngle(w.SegmentCenter(idx) + rotation - pointerAngle)
	if diff >= math.Pi {
		diff -= 2 * math.Pi
	}
	return diff, nil
}

// Layout returns every segment in screen space for the given rotation.
// Pure: no state is touched, the same rotation always yields the same
// geometry.
func (w *Wheel) Layout(rotation float64) []Segment {
	width := w.SegmentAngle()
	segments := make([]Segment, len(w.prizes))
	for i, prize := range w.prizes {
		start := normalizeAngle(float64(i)*width + rotation)
		segments[i] = Segment{
			Index:  i,
			Prize:  prize,
			Label:  utils.FormatPrize(prize),
			Color:  palette[i%len(palette)],
			Start:  start,
			Center: normalizeAngle(start + width/2),
			End:    normalizeAngle(start + width),
		}
	}
	return segments
}

// normalizeAngle maps any angle into [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
