package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope used by the admin API.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteRaw writes v as-is. The mini-app endpoints have a fixed wire contract
// (the widget and the bot both parse these shapes) and do not use the admin
// envelope.
func WriteRaw(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
