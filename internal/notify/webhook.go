// Package notify delivers game summaries to external endpoints.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hacknao/echotower/internal/util"
)

// WebhookPayload represents the data sent to webhook endpoints.
type WebhookPayload struct {
	Event        string `json:"event"`
	SessionID    string `json:"session_id,omitempty"`
	FinalScore   int    `json:"final_score,omitempty"`
	FloorReached int    `json:"floor_reached,omitempty"`
	RoundsPlayed int    `json:"rounds_played,omitempty"`
	PerfectCount int    `json:"perfect_count,omitempty"`
	SuccessCount int    `json:"success_count,omitempty"`
	FailCount    int    `json:"fail_count,omitempty"`
	DurationMs   int64  `json:"duration_ms,omitempty"`
	Message      string `json:"message,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// SendTestWebhook sends a test webhook notification.
func SendTestWebhook(webhookURL, gameTitle string) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	return sendWebhook(webhookURL, &WebhookPayload{
		Event:     "test",
		Message:   "This is a test notification from " + gameTitle + ", sent " + util.HumanTime(),
		Timestamp: timestampUTC(),
	})
}

// sendWebhook delivers a notification to the configured webhook endpoint.
func sendWebhook(webhookURL string, payload *WebhookPayload) error {
	if !util.IsConfigured(webhookURL) {
		return nil // Silently skip if not configured
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	client := &http.Client{Timeout: 10000 * time.Millisecond}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// timestampUTC returns the current UTC time in RFC3339 format.
func timestampUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
