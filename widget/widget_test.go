package widget

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeke8989/telegram-bot-rns/wheel"
)

var testPrizes = []int{5000, 10000, 15000, 20000, 25000, 30000}

type fakeHost struct {
	sent   [][]byte
	closed int
}

func (h *fakeHost) SendData(payload []byte) error {
	h.sent = append(h.sent, append([]byte(nil), payload...))
	return nil
}

func (h *fakeHost) Close() { h.closed++ }

type manualScheduler struct {
	pending []func(now time.Time)
}

func (m *manualScheduler) RequestFrame(fn func(now time.Time)) {
	m.pending = append(m.pending, fn)
}

func (m *manualScheduler) runAll(from time.Time) {
	now := from
	for len(m.pending) > 0 {
		fn := m.pending[0]
		m.pending = m.pending[1:]
		now = now.Add(16 * time.Millisecond)
		fn(now)
	}
}

// testServer is a minimal award service: configurable eligibility, a fixed
// prize on spin, and a request counter for duplicate-call assertions.
type testServer struct {
	prizes     []int
	spun       bool
	storedPrze int
	spinCalls  int
}

func (s *testServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/wheel", func(w http.ResponseWriter, r *http.Request) {
		wh, _ := wheel.New(s.prizes)
		_ = json.NewEncoder(w).Encode(WheelConfig{Prizes: s.prizes, Segments: wh.Layout(0)})
	})
	mux.HandleFunc("/api/can-spin", func(w http.ResponseWriter, r *http.Request) {
		resp := Eligibility{CanSpin: !s.spun}
		if s.spun {
			p := s.storedPrze
			resp.Prize = &p
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/spin", func(w http.ResponseWriter, r *http.Request) {
		s.spinCalls++
		if s.spun {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": "Already spun", "prize": s.storedPrze})
			return
		}
		s.spun = true
		s.storedPrze = s.prizes[2]
		_ = json.NewEncoder(w).Encode(map[string]int{"prize": s.storedPrze})
	})
	return mux
}

func newTestWidget(t *testing.T, srv *testServer) (*Widget, *fakeHost, *manualScheduler, func()) {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	host := &fakeHost{}
	sched := &manualScheduler{}
	w := New(NewClient(ts.URL, 2*time.Second), host, sched, 42)
	return w, host, sched, ts.Close
}

func TestWidgetInitFetchesServerWheel(t *testing.T) {
	srv := &testServer{prizes: testPrizes}
	w, _, _, done := newTestWidget(t, srv)
	defer done()

	require.NoError(t, w.Init(context.Background()))
	assert.Equal(t, StateIdle, w.State())

	segments := w.Render()
	require.Len(t, segments, len(testPrizes))
	assert.Equal(t, testPrizes[0], segments[0].Prize)
}

func TestWidgetFullSpinFlow(t *testing.T) {
	srv := &testServer{prizes: testPrizes}
	w, host, sched, done := newTestWidget(t, srv)
	defer done()

	require.NoError(t, w.Init(context.Background()))
	require.NoError(t, w.Spin(context.Background()))
	assert.Equal(t, StateAnimating, w.State())

	sched.runAll(time.Now())

	assert.Equal(t, StateDone, w.State())
	prize, ok := w.Prize()
	require.True(t, ok)
	assert.Equal(t, srv.storedPrze, prize)

	// The wheel came to rest on the awarded prize's segment center.
	wh, _ := wheel.New(testPrizes)
	offset, err := wh.PointerOffset(prize, w.Rotation())
	require.NoError(t, err)
	assert.InDelta(t, 0, offset, 1e-9)

	// The host got exactly one report, then the view closed.
	require.Len(t, host.sent, 1)
	var report map[string]int
	require.NoError(t, json.Unmarshal(host.sent[0], &report))
	assert.Equal(t, prize, report["prize"])
	assert.Equal(t, 1, host.closed)
}

// While a request or animation is in flight the spin trigger is dead: a
// second tap must not reach the server.
func TestWidgetRejectsDuplicateTaps(t *testing.T) {
	srv := &testServer{prizes: testPrizes}
	w, _, sched, done := newTestWidget(t, srv)
	defer done()

	require.NoError(t, w.Init(context.Background()))
	require.NoError(t, w.Spin(context.Background()))
	require.Equal(t, StateAnimating, w.State())

	err := w.Spin(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, srv.spinCalls)

	sched.runAll(time.Now())
	err = w.Spin(context.Background())
	assert.Error(t, err, "a finished widget must not spin again")
	assert.Equal(t, 1, srv.spinCalls)
}

func TestWidgetAlreadySpunAtInit(t *testing.T) {
	srv := &testServer{prizes: testPrizes, spun: true, storedPrze: 25000}
	w, host, _, done := newTestWidget(t, srv)
	defer done()

	require.NoError(t, w.Init(context.Background()))
	assert.Equal(t, StateDone, w.State())
	prize, ok := w.Prize()
	require.True(t, ok)
	assert.Equal(t, 25000, prize)

	// Already-spun is rendered, not reported: the host reply already
	// happened on the original spin.
	assert.Empty(t, host.sent)
}

func TestWidgetAlreadySpunOnAward(t *testing.T) {
	srv := &testServer{prizes: testPrizes}
	w, host, _, done := newTestWidget(t, srv)
	defer done()

	require.NoError(t, w.Init(context.Background()))

	// Another client instance for the same user won the race after our
	// eligibility check.
	srv.spun = true
	srv.storedPrze = 30000

	require.NoError(t, w.Spin(context.Background()))
	assert.Equal(t, StateDone, w.State())
	prize, _ := w.Prize()
	assert.Equal(t, 30000, prize, "must show the stored prize, not a fresh roll")
	assert.Empty(t, host.sent)
}

// A dead server is a transient transport failure: the widget returns to
// StateIdle so the user may retry manually, and nothing is reported.
func TestWidgetTransportErrorReturnsToIdle(t *testing.T) {
	srv := &testServer{prizes: testPrizes}
	w, host, _, done := newTestWidget(t, srv)

	require.NoError(t, w.Init(context.Background()))
	done() // server goes away before the spin

	err := w.Spin(context.Background())
	require.Error(t, err)
	var already *AlreadySpunError
	assert.False(t, errors.As(err, &already), "transport failure must not read as already-spun")
	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, host.sent)
	assert.Zero(t, host.closed)
}

// The server handing out a prize missing from the fetched wheel is
// configuration drift: fatal to the attempt, no fallback segment.
func TestWidgetUnknownPrizeIsFatal(t *testing.T) {
	srv := &testServer{prizes: testPrizes}

	// Widget initialized against a stale, shorter wheel.
	stale := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/wheel" {
			_ = json.NewEncoder(w).Encode(WheelConfig{Prizes: []int{5000, 10000}})
			return
		}
		srv.handler().ServeHTTP(w, r)
	}))
	defer stale.Close()

	host := &fakeHost{}
	sched := &manualScheduler{}
	w := New(NewClient(stale.URL, 2*time.Second), host, sched, 42)

	require.NoError(t, w.Init(context.Background()))
	err := w.Spin(context.Background())
	require.ErrorIs(t, err, wheel.ErrUnknownPrize)
	assert.Empty(t, sched.pending, "no animation may start toward an unknown prize")
	assert.Empty(t, host.sent)
}
