package admins

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeke8989/telegram-bot-rns/controllers/telegram"
	"github.com/jeke8989/telegram-bot-rns/models"
	"github.com/jeke8989/telegram-bot-rns/utils"
)

// BroadcastController sends a message to every registered, non-blocked bot
// user.
type BroadcastController struct {
	db  *gorm.DB
	bot *telegram.Bot
}

func NewBroadcastController(db *gorm.DB, bot *telegram.Bot) *BroadcastController {
	return &BroadcastController{db: db, bot: bot}
}

type broadcastRequest struct {
	Text string `json:"text"`
}

// Broadcast handles POST /admin/broadcast. Delivery is synchronous and
// best-effort; users who have blocked the bot are marked and skipped on the
// next run.
func (c *BroadcastController) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "text is required",
		})
		return
	}

	var users []models.User
	if err := c.db.Where("is_blocked = ? AND is_bot = ?", false, false).Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load users",
		})
		return
	}

	batchID := uuid.NewString()
	log.Printf("[broadcast] batch %s starting, %d recipients", batchID, len(users))

	sent, failed, blocked := 0, 0, 0
	for _, u := range users {
		err := c.bot.SendMessage(u.TelegramID, req.Text)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, telegram.ErrBlocked):
			blocked++
			if dbErr := c.db.Model(&models.User{}).
				Where("telegram_id = ?", u.TelegramID).
				Update("is_blocked", true).Error; dbErr != nil {
				log.Printf("[broadcast] batch %s: failed to mark %d blocked: %v", batchID, u.TelegramID, dbErr)
			}
		default:
			failed++
			log.Printf("[broadcast] batch %s: send to %d failed: %v", batchID, u.TelegramID, err)
		}
	}

	log.Printf("[broadcast] batch %s done: sent=%d failed=%d blocked=%d", batchID, sent, failed, blocked)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Broadcast finished",
		Data: map[string]interface{}{
			"batch_id": batchID,
			"sent":     sent,
			"failed":   failed,
			"blocked":  blocked,
		},
	})
}
