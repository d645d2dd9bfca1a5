package admins

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/jeke8989/telegram-bot-rns/database"
	"github.com/jeke8989/telegram-bot-rns/models"
	"github.com/jeke8989/telegram-bot-rns/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /admin/login and issues a JWT for the admin API.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid JSON body",
		})
		return
	}

	var admin models.Admin
	err := database.DB.Where("username = ? AND is_active = ?", req.Username, true).First(&admin).Error
	if err != nil {
		status := http.StatusUnauthorized
		msg := "Invalid username or password"
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusInternalServerError
			msg = "Internal server error"
		}
		utils.WriteJSON(w, status, utils.APIResponse{Success: false, Message: msg})
		return
	}

	if !admin.ValidatePassword(req.Password) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Username)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to create token",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Logged in",
		Data: map[string]interface{}{
			"token": token,
			"admin": admin,
		},
	})
}
