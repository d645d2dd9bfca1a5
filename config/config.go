package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultPrizes is the wheel used when PRIZE_AMOUNTS is not set. The list is
// ordered: the client lays out wheel segments in this order.
var DefaultPrizes = []int{5000, 10000, 15000, 20000, 25000, 30000}

// Config holds process-wide settings loaded from the environment.
type Config struct {
	// Telegram
	TelegramToken  string
	SupportGroupID int64

	// Mini app
	WebAppURL string
	Prizes    []int

	// Company contacts included in the win notification
	CompanyName    string
	CompanyEmail   string
	CompanyPhone   string
	CompanyWebsite string

	Env string
}

// Load reads configuration from the environment and validates required values.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		SupportGroupID: getenvInt64("SUPPORT_GROUP_ID", 0),
		WebAppURL:      getenv("WEBAPP_URL", "http://localhost:8080"),
		CompanyName:    getenv("COMPANY_NAME", "РусНейроСофт"),
		CompanyEmail:   getenv("COMPANY_EMAIL", "info@rusneurosoft.ru"),
		CompanyPhone:   getenv("COMPANY_PHONE", ""),
		CompanyWebsite: getenv("COMPANY_WEBSITE", "https://rusneurosoft.ru"),
		Env:            strings.ToLower(getenv("ENV", "development")),
	}

	prizes, err := parsePrizes(os.Getenv("PRIZE_AMOUNTS"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRIZE_AMOUNTS: %w", err)
	}
	cfg.Prizes = prizes

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	return cfg, nil
}

// parsePrizes parses a comma-separated list of amounts. Empty input falls
// back to DefaultPrizes.
func parsePrizes(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		out := make([]int, len(DefaultPrizes))
		copy(out, DefaultPrizes)
		return out, nil
	}
	parts := strings.Split(s, ",")
	prizes := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("prize amount %q must be a positive integer", p)
		}
		prizes = append(prizes, v)
	}
	if len(prizes) == 0 {
		return nil, fmt.Errorf("prize list is empty")
	}
	return prizes, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}
