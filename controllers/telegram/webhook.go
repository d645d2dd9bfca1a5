package telegram

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jeke8989/telegram-bot-rns/models"
	"github.com/jeke8989/telegram-bot-rns/utils"
)

// Update is the slice of a Telegram webhook update this service cares about:
// who sent it. The conversational flow itself lives in the bot, not here.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		From *struct {
			ID           int64  `json:"id"`
			IsBot        bool   `json:"is_bot"`
			FirstName    string `json:"first_name"`
			LastName     string `json:"last_name"`
			Username     string `json:"username"`
			LanguageCode string `json:"language_code"`
		} `json:"from"`
	} `json:"message"`
}

// WebhookController records every user who talks to the bot so broadcasts
// reach them later.
type WebhookController struct {
	db *gorm.DB
}

func NewWebhookController(db *gorm.DB) *WebhookController {
	return &WebhookController{db: db}
}

// Webhook handles POST /api/telegram/webhook. It always answers 200: Telegram
// retries non-200 responses and a malformed update is not worth a retry loop.
func (c *WebhookController) Webhook(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.WriteRaw(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	if update.Message != nil && update.Message.From != nil && !update.Message.From.IsBot {
		from := update.Message.From
		user := models.User{
			TelegramID:      from.ID,
			FirstName:       from.FirstName,
			LastName:        from.LastName,
			Username:        from.Username,
			LanguageCode:    from.LanguageCode,
			LastInteraction: time.Now(),
		}
		err := c.db.WithContext(r.Context()).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "telegram_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"first_name", "last_name", "username", "language_code", "last_interaction",
				}),
			}).
			Create(&user).Error
		if err != nil {
			log.Printf("[telegram] failed to save user %d: %v", from.ID, err)
		}
	}

	utils.WriteRaw(w, http.StatusOK, map[string]bool{"ok": true})
}
