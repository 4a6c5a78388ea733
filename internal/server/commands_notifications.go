package server

import (
	"log/slog"

	"github.com/hacknao/echotower/internal/events"
	"github.com/hacknao/echotower/internal/notify"
)

// --- Webhook handlers ---

// handleWebhookUpdate processes a notifications/webhook/update command.
func (h *CommandHandler) handleWebhookUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *WebhookUpdateRequest) error {
		return h.cfg.SetWebhookURL(req.URL)
	})
}

// handleWebhookGet processes a notifications/webhook/get command.
func (h *CommandHandler) handleWebhookGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendData(send, map[string]any{
		"type": "webhook_config",
		"url":  snap.WebhookURL,
	})
}

// handleWebhookTest sends a test notification to the configured webhook.
func (h *CommandHandler) handleWebhookTest(send chan<- any) {
	snap := h.cfg.Snapshot()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in webhook test handler", "panic", r)
			}
		}()

		result := map[string]any{
			"type":      "test_result",
			"test_type": "webhook",
			"success":   true,
		}
		if err := notify.SendTestWebhook(snap.WebhookURL, snap.GameTitle); err != nil {
			slog.Error("webhook test failed", "error", err)
			result["success"] = false
			result["error"] = err.Error()
		} else {
			slog.Info("webhook test succeeded")
		}

		select {
		case send <- result:
		default:
			slog.Warn("failed to send test response: channel full or closed")
		}
	}()
}

// --- Event log handlers ---

// handleLogUpdate processes a notifications/log/update command.
func (h *CommandHandler) handleLogUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *LogUpdateRequest) error {
		return h.cfg.SetLogPath(req.Path)
	})
}

// handleLogGet processes a notifications/log/get command.
func (h *CommandHandler) handleLogGet(send chan<- any) {
	SendData(send, map[string]any{
		"type": "log_config",
		"path": h.cfg.LogPath(),
	})
}

// handleViewEventLog reads and returns the last event log entries.
func (h *CommandHandler) handleViewEventLog(send chan<- any) {
	path := h.cfg.LogPath()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in event log handler", "panic", r)
			}
		}()

		entries, err := events.ReadLast(path, MaxLogEntries)
		result := map[string]any{
			"type":    "event_log",
			"entries": entries,
		}
		if err != nil {
			result["error"] = err.Error()
		}

		select {
		case send <- result:
		default:
			slog.Warn("failed to send event log: channel full or closed")
		}
	}()
}
