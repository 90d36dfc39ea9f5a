// Package webhook delivers booking mutation events to an external HTTP
// endpoint, e.g. a clinic notification service. Delivery is best-effort:
// the routing core never waits on or fails because of a notification.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	schedulex "github.com/pattarachai/medisched/schedule"
)

type Config struct {
	URL     string        `split_words:"true"`
	Token   string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// BookingEvent is the wire payload for one committed ledger mutation.
type BookingEvent struct {
	Action    string `json:"action"`
	Doctor    string `json:"doctor"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PatientID int    `json:"patient_id"`
}

type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient returns nil (a disabled notifier) when no URL is configured.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, nil
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// NotifyBooking posts one booking event. A nil client silently accepts.
func (c *Client) NotifyBooking(ctx context.Context, action string, slot schedulex.Slot) error {
	if c == nil {
		return nil
	}

	body, err := json.Marshal(BookingEvent{
		Action:    action,
		Doctor:    slot.Doctor,
		Date:      slot.Date,
		Time:      slot.Time,
		PatientID: slot.PatientID,
	})
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver booking event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.New("webhook returned status " + resp.Status)
	}
	return nil
}
