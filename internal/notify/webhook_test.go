package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTestWebhook(t *testing.T) {
	var received WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer srv.Close()

	require.NoError(t, SendTestWebhook(srv.URL, "ECHO TOWER"))

	assert.Equal(t, "test", received.Event)
	assert.Contains(t, received.Message, "ECHO TOWER")
	assert.Contains(t, received.Message, ", sent ")

	_, err := time.Parse(time.RFC3339, received.Timestamp)
	assert.NoError(t, err)
}

func TestSendTestWebhookRequiresURL(t *testing.T) {
	assert.Error(t, SendTestWebhook("", "ECHO TOWER"))
}

func TestSendWebhookNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := sendWebhook(srv.URL, &WebhookPayload{Event: "test", Timestamp: timestampUTC()})
	assert.ErrorContains(t, err, "502")
}

func TestSendWebhookUnreachable(t *testing.T) {
	err := sendWebhook("http://127.0.0.1:1/hook", &WebhookPayload{Event: "test", Timestamp: timestampUTC()})
	assert.Error(t, err)
}

func TestSendWebhookSkipsWhenUnconfigured(t *testing.T) {
	assert.NoError(t, sendWebhook("", &WebhookPayload{Event: "game_over"}))
}

func TestGameOverPayloadShape(t *testing.T) {
	payloads := make(chan WebhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p WebhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		payloads <- p
	}))
	defer srv.Close()

	sent := &WebhookPayload{
		Event:        "game_over",
		SessionID:    "s-1",
		FinalScore:   120,
		FloorReached: 7,
		RoundsPlayed: 18,
		PerfectCount: 4,
		SuccessCount: 9,
		FailCount:    5,
		DurationMs:   183000,
		Message:      "Climb ended on floor 7 with 120 points after 3m 3s",
		Timestamp:    timestampUTC(),
	}
	require.NoError(t, sendWebhook(srv.URL, sent))

	got := <-payloads
	assert.Equal(t, *sent, got)
}
