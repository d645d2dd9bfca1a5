package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/jeke8989/telegram-bot-rns/controllers/admins"
	"github.com/jeke8989/telegram-bot-rns/controllers/roulette"
	"github.com/jeke8989/telegram-bot-rns/controllers/telegram"
	"github.com/jeke8989/telegram-bot-rns/middleware"
)

// Controllers bundles everything the router wires up.
type Controllers struct {
	Roulette  *roulette.Controller
	Webhook   *telegram.WebhookController
	Spins     *admins.SpinsController
	Broadcast *admins.BroadcastController
}

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func InitRouter(c Controllers) *mux.Router {
	r := mux.NewRouter()

	// CORS: the widget runs inside the Telegram webview, so its origin is the
	// webapp's own host plus Telegram's. Extra origins via env.
	origins := []string{"https://web.telegram.org", "http://localhost:8080", "http://127.0.0.1:8080"}
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, p := range strings.Split(extra, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/api").Subrouter()
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// The award endpoint gets a tight per-IP budget; duplicate taps are
	// already blocked client-side, this catches retried calls and bots.
	spinLimiter := middleware.NewIPRateLimiter(30, time.Minute)
	webhookLimiter := middleware.NewIPRateLimiter(1000, time.Minute)

	api.Handle("/health", http.HandlerFunc(c.Roulette.Health)).Methods(http.MethodGet)
	api.Handle("/wheel", http.HandlerFunc(c.Roulette.Wheel)).Methods(http.MethodGet)
	api.Handle("/can-spin", http.HandlerFunc(c.Roulette.CanSpin)).Methods(http.MethodGet)
	api.Handle("/spin", spinLimiter.Middleware(http.HandlerFunc(c.Roulette.Spin))).Methods(http.MethodPost)
	api.Handle("/telegram/webhook", webhookLimiter.Middleware(http.HandlerFunc(c.Webhook.Webhook))).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Handle("/login", http.HandlerFunc(admins.Login)).Methods(http.MethodPost)

	protected := admin.NewRoute().Subrouter()
	protected.Use(middleware.AdminAuthMiddleware)
	protected.Handle("/spins", http.HandlerFunc(c.Spins.List)).Methods(http.MethodGet)
	protected.Handle("/spins/stats", http.HandlerFunc(c.Spins.Stats)).Methods(http.MethodGet)
	protected.Handle("/spins/{telegram_id}", http.HandlerFunc(c.Spins.Reset)).Methods(http.MethodDelete)
	protected.Handle("/broadcast", http.HandlerFunc(c.Broadcast.Broadcast)).Methods(http.MethodPost)

	// Mini-app shell (index.html, style.css, script.js)
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./static"
	}
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir))).Methods(http.MethodGet)

	return r
}
