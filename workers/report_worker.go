// Package workers holds background jobs that run beside the HTTP server.
package workers

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/jeke8989/telegram-bot-rns/controllers/telegram"
	"github.com/jeke8989/telegram-bot-rns/models"
	"github.com/jeke8989/telegram-bot-rns/utils"
)

// StartDailyReport schedules a morning summary of roulette activity posted to
// the support group. A zero group id disables the job. The returned scheduler
// should be shut down with the server.
func StartDailyReport(db *gorm.DB, bot *telegram.Bot, groupID int64) (gocron.Scheduler, error) {
	if groupID == 0 {
		log.Println("[worker] SUPPORT_GROUP_ID not set, daily report disabled")
		return nil, nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(9, 0, 0))),
		gocron.NewTask(func() {
			since := time.Now().Add(-24 * time.Hour)

			var spins int64
			if err := db.Model(&models.RouletteSpin{}).Where("spun_at >= ?", since).Count(&spins).Error; err != nil {
				log.Printf("[worker] daily report query failed: %v", err)
				return
			}
			var paid struct {
				Total int64
			}
			if err := db.Model(&models.RouletteSpin{}).
				Select("COALESCE(SUM(prize_amount), 0) AS total").
				Where("spun_at >= ?", since).
				Scan(&paid).Error; err != nil {
				log.Printf("[worker] daily report query failed: %v", err)
				return
			}

			text := fmt.Sprintf("📊 *Рулетка за сутки*\n\nВращений: %d\nВыдано скидок: %s",
				spins, utils.FormatPrize(int(paid.Total)))
			if err := bot.SendMessage(groupID, text); err != nil {
				log.Printf("[worker] daily report send failed: %v", err)
				return
			}
			log.Printf("[worker] daily report sent: spins=%d paid=%d", spins, paid.Total)
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Println("[worker] daily report scheduled for 09:00")
	return sched, nil
}
