package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeke8989/telegram-bot-rns/wheel"
)

// AlreadySpunError is the expected rejection for a user who has a recorded
// spin. It carries the prize that was stored at award time, never a re-rolled
// one, so the widget can show the real result instead of an error screen.
type AlreadySpunError struct {
	Prize int
}

func (e *AlreadySpunError) Error() string {
	return fmt.Sprintf("already spun, prize %d", e.Prize)
}

// Eligibility mirrors the /api/can-spin response.
type Eligibility struct {
	CanSpin bool `json:"can_spin"`
	Prize   *int `json:"prize"`
}

// WheelConfig mirrors the /api/wheel response. The server is the single
// source of the prize table; the widget renders whatever it is given.
type WheelConfig struct {
	Prizes   []int           `json:"prizes"`
	Segments []wheel.Segment `json:"segments"`
}

// Client talks to the award service. The timeout is caller-defined and there
// is no automatic retry: a timed-out award call is a transient failure the
// user may retry manually, never an "already spun".
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WheelConfig fetches the server's wheel configuration.
func (c *Client) WheelConfig(ctx context.Context) (*WheelConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/wheel", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch wheel config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch wheel config: status %d", resp.StatusCode)
	}
	var cfg WheelConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode wheel config: %w", err)
	}
	return &cfg, nil
}

// CanSpin asks whether telegramID may spin. Read-only: no record is ever
// created here.
func (c *Client) CanSpin(ctx context.Context, telegramID int64) (*Eligibility, error) {
	url := fmt.Sprintf("%s/api/can-spin?telegram_id=%d", c.baseURL, telegramID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eligibility check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eligibility check: status %d", resp.StatusCode)
	}
	var elig Eligibility
	if err := json.NewDecoder(resp.Body).Decode(&elig); err != nil {
		return nil, fmt.Errorf("decode eligibility: %w", err)
	}
	return &elig, nil
}

// Spin requests the award. Returns the prize on success, *AlreadySpunError
// when the server already holds a record, and a plain error for anything
// else.
func (c *Client) Spin(ctx context.Context, telegramID int64) (int, error) {
	body, err := json.Marshal(map[string]int64{"telegram_id": telegramID})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/spin", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("spin request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Prize *int   `json:"prize"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode spin response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK && payload.Prize != nil:
		return *payload.Prize, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		payload.Error == "Already spun" && payload.Prize != nil:
		return 0, &AlreadySpunError{Prize: *payload.Prize}
	default:
		// Any other shape is a server or transport problem, not a result.
		return 0, fmt.Errorf("spin request failed: status %d %s", resp.StatusCode, payload.Error)
	}
}
