package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/jeke8989/telegram-bot-rns/config"
	"github.com/jeke8989/telegram-bot-rns/controllers/admins"
	"github.com/jeke8989/telegram-bot-rns/controllers/roulette"
	"github.com/jeke8989/telegram-bot-rns/controllers/telegram"
	"github.com/jeke8989/telegram-bot-rns/database"
	"github.com/jeke8989/telegram-bot-rns/middleware"
	"github.com/jeke8989/telegram-bot-rns/models"
	"github.com/jeke8989/telegram-bot-rns/routes"
	"github.com/jeke8989/telegram-bot-rns/wheel"
	"github.com/jeke8989/telegram-bot-rns/workers"
)

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RouletteSpin{},
		&models.Admin{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	bootstrapAdmin(db)

	rdb := database.ConnectRedis()
	store := database.NewSpinStore(db, rdb)

	wh, err := wheel.New(cfg.Prizes)
	if err != nil {
		log.Fatalf("invalid prize table: %v", err)
	}
	log.Printf("prize table: %v (%d segments)", cfg.Prizes, wh.SegmentCount())

	bot := telegram.NewBot(cfg)

	router := routes.InitRouter(routes.Controllers{
		Roulette:  roulette.NewController(store, wh, bot),
		Webhook:   telegram.NewWebhookController(db),
		Spins:     admins.NewSpinsController(db, store),
		Broadcast: admins.NewBroadcastController(db, bot),
	})

	// Logging -> Security headers -> Request ID -> Max Body -> Timeout -> Recovery
	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(
						middleware.RecoveryMiddleware(router),
					),
				),
			),
		),
	)

	reportSched, err := workers.StartDailyReport(db, bot, cfg.SupportGroupID)
	if err != nil {
		log.Fatalf("failed to start report worker: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if reportSched != nil {
		if err := reportSched.Shutdown(); err != nil {
			log.Printf("report worker shutdown: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// bootstrapAdmin creates the initial admin account from ADMIN_USERNAME /
// ADMIN_PASSWORD when the table is empty, so a fresh deployment is usable
// without manual SQL.
func bootstrapAdmin(db *gorm.DB) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		log.Printf("admin bootstrap: count failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	admin := models.Admin{
		Username: username,
		Password: password,
		Name:     "Administrator",
		IsActive: true,
	}
	if err := admin.HashPassword(); err != nil {
		log.Printf("admin bootstrap: hash failed: %v", err)
		return
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("admin bootstrap: create failed: %v", err)
		return
	}
	log.Printf("admin bootstrap: created admin %q", username)
}
