package models

import "time"

// User is every Telegram account that has talked to the bot. The table is the
// broadcast audience; it is upserted on each webhook update so names and
// usernames stay current.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TelegramID      int64     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	FirstName       string    `gorm:"size:255" json:"first_name"`
	LastName        string    `gorm:"size:255" json:"last_name"`
	Username        string    `gorm:"size:255" json:"username"`
	LanguageCode    string    `gorm:"size:10" json:"language_code"`
	IsBot           bool      `gorm:"default:false" json:"is_bot"`
	IsBlocked       bool      `gorm:"default:false" json:"is_blocked"`
	LastInteraction time.Time `json:"last_interaction"`
	CreatedAt       time.Time `json:"created_at"`
}
