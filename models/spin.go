package models

import "time"

// RouletteSpin is the one-per-user prize record. The unique index on
// telegram_id is what enforces the at-most-once award: concurrent awards race
// on the insert and exactly one row ever exists. Rows are never updated;
// deletion only happens through the admin reset endpoint.
type RouletteSpin struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TelegramID  int64     `gorm:"uniqueIndex:idx_roulette_telegram_id;not null" json:"telegram_id"`
	PrizeAmount int       `gorm:"not null" json:"prize_amount"`
	SpunAt      time.Time `gorm:"not null" json:"spun_at"`
}

func (RouletteSpin) TableName() string {
	return "roulette_spins"
}
