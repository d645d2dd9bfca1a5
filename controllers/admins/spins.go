package admins

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jeke8989/telegram-bot-rns/database"
	"github.com/jeke8989/telegram-bot-rns/models"
	"github.com/jeke8989/telegram-bot-rns/utils"
)

// SpinsController is the operator view of roulette spins. Resets go through
// the SpinStore so the cache is invalidated together with the row.
type SpinsController struct {
	db    *gorm.DB
	store *database.SpinStore
}

func NewSpinsController(db *gorm.DB, store *database.SpinStore) *SpinsController {
	return &SpinsController{db: db, store: store}
}

type prizeStat struct {
	PrizeAmount int     `json:"prize_amount"`
	Wins        int64   `json:"wins"`
	Share       float64 `json:"share"`
}

// List handles GET /admin/spins with page/limit pagination.
func (c *SpinsController) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := c.db.Model(&models.RouletteSpin{}).Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load spins",
		})
		return
	}

	var spins []models.RouletteSpin
	if err := c.db.Order("spun_at DESC").Limit(limit).Offset(offset).Find(&spins).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load spins",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"spins": spins,
			"pagination": map[string]interface{}{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		},
	})
}

// Stats handles GET /admin/spins/stats: totals and the per-prize win share.
func (c *SpinsController) Stats(w http.ResponseWriter, r *http.Request) {
	var total int64
	if err := c.db.Model(&models.RouletteSpin{}).Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load stats",
		})
		return
	}

	type row struct {
		PrizeAmount int
		Wins        int64
	}
	var rows []row
	err := c.db.Model(&models.RouletteSpin{}).
		Select("prize_amount, COUNT(*) AS wins").
		Group("prize_amount").
		Order("prize_amount ASC").
		Scan(&rows).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load stats",
		})
		return
	}

	var totalPaid int64
	stats := make([]prizeStat, 0, len(rows))
	for _, r := range rows {
		share := float64(0)
		if total > 0 {
			share = utils.RoundFloat(float64(r.Wins)/float64(total)*100, 2)
		}
		stats = append(stats, prizeStat{PrizeAmount: r.PrizeAmount, Wins: r.Wins, Share: share})
		totalPaid += int64(r.PrizeAmount) * r.Wins
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"total_spins": total,
			"total_paid":  totalPaid,
			"prizes":      stats,
		},
	})
}

// Reset handles DELETE /admin/spins/{telegram_id}: the out-of-band reset used
// in testing. Never called from the award path.
func (c *SpinsController) Reset(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(mux.Vars(r)["telegram_id"], 10, 64)
	if err != nil || telegramID <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid telegram_id",
		})
		return
	}

	deleted, err := c.store.Delete(r.Context(), telegramID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to reset spin",
		})
		return
	}
	if !deleted {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "No spin recorded for this user",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Spin reset",
	})
}
