package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jeke8989/telegram-bot-rns/models"
)

const spinCacheTTL = 24 * time.Hour

// SpinStore reads and writes roulette_spins. An optional Redis client acts as
// a read cache: spin records are immutable once created, so a cached copy can
// never go stale (the admin reset invalidates it explicitly).
type SpinStore struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewSpinStore(db *gorm.DB, rdb *redis.Client) *SpinStore {
	return &SpinStore{db: db, rdb: rdb}
}

func spinCacheKey(telegramID int64) string {
	return fmt.Sprintf("roulette:spin:%d", telegramID)
}

// Get returns the spin record for telegramID, or (nil, nil) when the user has
// not spun yet.
func (s *SpinStore) Get(ctx context.Context, telegramID int64) (*models.RouletteSpin, error) {
	if cached := s.cacheGet(ctx, telegramID); cached != nil {
		return cached, nil
	}

	var spin models.RouletteSpin
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&spin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, &spin)
	return &spin, nil
}

// Insert attempts the one permitted mutation: a conditional insert keyed by
// telegram_id. It returns true when this call created the record. On a
// conflict with an existing row it returns false and leaves spin untouched;
// the caller reads back the stored record to learn the previously awarded
// prize.
func (s *SpinStore) Insert(ctx context.Context, spin *models.RouletteSpin) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoNothing: true,
		}).
		Create(spin)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.cacheSet(ctx, spin)
	return true, nil
}

// Delete removes a spin record. Administrative reset only, never on the hot
// path.
func (s *SpinStore) Delete(ctx context.Context, telegramID int64) (bool, error) {
	res := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Delete(&models.RouletteSpin{})
	if res.Error != nil {
		return false, res.Error
	}
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, spinCacheKey(telegramID)).Err(); err != nil {
			log.Printf("[database] redis del failed: %v", err)
		}
	}
	return res.RowsAffected > 0, nil
}

// cacheGet returns a cached record or nil. Redis being down is never an
// error here; lookups fall through to Postgres.
func (s *SpinStore) cacheGet(ctx context.Context, telegramID int64) *models.RouletteSpin {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, spinCacheKey(telegramID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[database] redis get failed: %v", err)
		}
		return nil
	}
	var spin models.RouletteSpin
	if err := json.Unmarshal(raw, &spin); err != nil {
		return nil
	}
	return &spin
}

func (s *SpinStore) cacheSet(ctx context.Context, spin *models.RouletteSpin) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(spin)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, spinCacheKey(spin.TelegramID), raw, spinCacheTTL).Err(); err != nil {
		log.Printf("[database] redis set failed: %v", err)
	}
}
