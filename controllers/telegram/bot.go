// Package telegram is the outbound Bot API client plus the inbound webhook
// that keeps the user registry current.
package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeke8989/telegram-bot-rns/config"
	"github.com/jeke8989/telegram-bot-rns/utils"
)

// ErrBlocked means the recipient has blocked the bot; broadcasts skip them
// from then on.
var ErrBlocked = errors.New("bot blocked by user")

// sendMessageRequest is the Bot API sendMessage payload.
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Bot talks to the Telegram Bot API.
type Bot struct {
	cfg  *config.Config
	http *http.Client
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendMessage sends one message via the Bot API.
func (b *Bot) SendMessage(chatID int64, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", b.cfg.TelegramToken)
	resp, err := b.http.Post(url, "application/json", strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		// The user blocked the bot.
		return ErrBlocked
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return nil
}

// NotifyWin congratulates a winner with the discount amount and the company
// contacts. Best effort: a delivery failure is logged and the award stands.
func (b *Bot) NotifyWin(telegramID int64, prize int) {
	lines := []string{
		"🎉 *Поздравляем!*",
		"",
		fmt.Sprintf("Вы выиграли скидку *%s* на услуги нашей компании!", utils.FormatPrize(prize)),
		"",
		"💰 Эта сумма будет вычтена из стоимости разработки вашего проекта.",
		"",
		"📞 Свяжитесь с нами, чтобы использовать скидку:",
		"• Сайт: " + b.cfg.CompanyWebsite,
		"• Email: " + b.cfg.CompanyEmail,
	}
	if b.cfg.CompanyPhone != "" {
		lines = append(lines, "• Телефон: "+b.cfg.CompanyPhone)
	}
	lines = append(lines, "", "Спасибо за участие! 🚀")

	if err := b.SendMessage(telegramID, strings.Join(lines, "\n")); err != nil {
		log.Printf("[telegram] win notification to %d failed: %v", telegramID, err)
		return
	}
	log.Printf("[telegram] win notification sent to %d", telegramID)
}
