// Package roulette is the mini-app's public API: eligibility, the one-time
// award, and the wheel configuration the widget renders from.
package roulette

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jeke8989/telegram-bot-rns/models"
	"github.com/jeke8989/telegram-bot-rns/utils"
	"github.com/jeke8989/telegram-bot-rns/wheel"
)

// Store is the spin persistence the controller needs. Insert must be atomic
// on telegram_id: of any number of concurrent calls for one user, exactly one
// reports created=true.
type Store interface {
	Get(ctx context.Context, telegramID int64) (*models.RouletteSpin, error)
	Insert(ctx context.Context, spin *models.RouletteSpin) (bool, error)
}

// Notifier delivers the win notification. Implementations must be safe to
// call from request goroutines; delivery failures never fail an award.
type Notifier interface {
	NotifyWin(telegramID int64, prize int)
}

type Controller struct {
	store    Store
	wheel    *wheel.Wheel
	notifier Notifier

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewController(store Store, wh *wheel.Wheel, notifier Notifier) *Controller {
	return &Controller{
		store:    store,
		wheel:    wh,
		notifier: notifier,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pickPrize draws uniformly from the prize table. Selection happens at award
// time only; eligibility checks never reserve anything.
func (c *Controller) pickPrize() int {
	prizes := c.wheel.Prizes()
	c.mu.Lock()
	defer c.mu.Unlock()
	return prizes[c.rnd.Intn(len(prizes))]
}

type canSpinResponse struct {
	CanSpin bool `json:"can_spin"`
	Prize   *int `json:"prize"`
}

type spinResponse struct {
	Prize int `json:"prize"`
}

type errorResponse struct {
	Error string `json:"error"`
	Prize *int   `json:"prize,omitempty"`
}

// Health handles GET /api/health.
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteRaw(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Wheel handles GET /api/wheel: the prize table plus resting-position
// geometry, so the widget renders from the server's configuration and the
// two can never drift apart.
func (c *Controller) Wheel(w http.ResponseWriter, r *http.Request) {
	utils.WriteRaw(w, http.StatusOK, map[string]interface{}{
		"prizes":   c.wheel.Prizes(),
		"segments": c.wheel.Layout(0),
	})
}

// CanSpin handles GET /api/can-spin?telegram_id=<id>. Read-only.
func (c *Controller) CanSpin(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := parseTelegramID(r.URL.Query().Get("telegram_id"))
	if !ok {
		utils.WriteRaw(w, http.StatusBadRequest, errorResponse{Error: "telegram_id required"})
		return
	}

	spin, err := c.store.Get(r.Context(), telegramID)
	if err != nil {
		log.Printf("[roulette] can-spin lookup failed for %d: %v", telegramID, err)
		utils.WriteRaw(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := canSpinResponse{CanSpin: spin == nil}
	if spin != nil {
		resp.Prize = &spin.PrizeAmount
	}
	utils.WriteRaw(w, http.StatusOK, resp)
}

// Spin handles POST /api/spin: the atomic check-and-assign. The conditional
// insert is the only mutation; when it loses to an existing record the
// response carries the stored prize, never a fresh roll.
func (c *Controller) Spin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID int64 `json:"telegram_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TelegramID <= 0 {
		utils.WriteRaw(w, http.StatusBadRequest, errorResponse{Error: "telegram_id required"})
		return
	}

	spin := &models.RouletteSpin{
		TelegramID:  req.TelegramID,
		PrizeAmount: c.pickPrize(),
		SpunAt:      time.Now(),
	}

	created, err := c.store.Insert(r.Context(), spin)
	if err != nil {
		log.Printf("[roulette] award insert failed for %d: %v", req.TelegramID, err)
		utils.WriteRaw(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	if !created {
		existing, err := c.store.Get(r.Context(), req.TelegramID)
		if err != nil || existing == nil {
			log.Printf("[roulette] conflict readback failed for %d: %v", req.TelegramID, err)
			utils.WriteRaw(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}
		utils.WriteRaw(w, http.StatusBadRequest, errorResponse{
			Error: "Already spun",
			Prize: &existing.PrizeAmount,
		})
		return
	}

	log.Printf("[roulette] user %d won %s", req.TelegramID, utils.FormatPrize(spin.PrizeAmount))
	if c.notifier != nil {
		go c.notifier.NotifyWin(req.TelegramID, spin.PrizeAmount)
	}

	utils.WriteRaw(w, http.StatusOK, spinResponse{Prize: spin.PrizeAmount})
}

func parseTelegramID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
