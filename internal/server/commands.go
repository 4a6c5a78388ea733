package server

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/hacknao/echotower/internal/config"
	"github.com/hacknao/echotower/internal/game"
	"github.com/hacknao/echotower/internal/recording"
)

// MaxLogEntries is the maximum number of event log entries to return.
const MaxLogEntries = 100

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CommandHandler processes WebSocket commands.
type CommandHandler struct {
	cfg        *config.Config
	session    *game.Session
	controller *recording.Controller
	archiver   *recording.Archiver
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(cfg *config.Config, session *game.Session, ctrl *recording.Controller, archiver *recording.Archiver) *CommandHandler {
	return &CommandHandler{
		cfg:        cfg,
		session:    session,
		controller: ctrl,
		archiver:   archiver,
	}
}

// Handle processes a WebSocket command and performs the requested action.
// Commands use slash-style format: namespace/action (e.g., "round/start", "vad/update")
func (h *CommandHandler) Handle(cmd WSCommand, send chan<- any, triggerStatusUpdate func()) {
	parts := strings.SplitN(cmd.Type, "/", 3)
	namespace := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	subaction := ""
	if len(parts) > 2 {
		subaction = parts[2]
	}

	switch namespace {
	case "game":
		h.handleGame(action, cmd, send)
	case "round":
		h.handleRound(action, cmd, send)
	case "audio":
		h.handleAudio(action, cmd, send)
	case "vad":
		h.handleVAD(action, cmd, send)
	case "scorer":
		h.handleScorer(action, cmd, send)
	case "archive":
		h.handleArchive(action, cmd, send)
	case "notifications":
		h.handleNotifications(action, subaction, cmd, send)
	case "words":
		h.handleWords(action, send)
	case "config":
		h.handleConfig(action, send)
	case "status":
		h.handleStatus(action, send)
	default:
		slog.Warn("unknown WebSocket command", "type", cmd.Type)
	}

	triggerStatusUpdate()
}

// --- Namespace handlers ---

// handleGame routes game/* commands
func (h *CommandHandler) handleGame(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "start":
		h.handleGameStart(cmd, send)
	case "reset":
		h.handleGameReset(cmd, send)
	case "scorecard":
		h.handleScorecard(send)
	default:
		slog.Warn("unknown game action", "action", action)
	}
}

// handleRound routes round/* commands
func (h *CommandHandler) handleRound(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "start":
		h.handleRoundStart(cmd, send)
	case "stop":
		h.handleRoundStop(cmd, send)
	case "submit-score":
		h.handleSubmitScore(cmd, send)
	case "update":
		h.handleRoundUpdate(cmd, send)
	case "get":
		h.handleRoundGet(send)
	default:
		slog.Warn("unknown round action", "action", action)
	}
}

// handleAudio routes audio/* commands
func (h *CommandHandler) handleAudio(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleAudioUpdate(cmd, send)
	case "get":
		h.handleAudioGet(send)
	case "devices":
		h.handleAudioDevices(send)
	default:
		slog.Warn("unknown audio action", "action", action)
	}
}

// handleVAD routes vad/* commands
func (h *CommandHandler) handleVAD(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleVADUpdate(cmd, send)
	case "get":
		h.handleVADGet(send)
	default:
		slog.Warn("unknown vad action", "action", action)
	}
}

// handleScorer routes scorer/* commands
func (h *CommandHandler) handleScorer(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleScorerUpdate(cmd, send)
	case "get":
		h.handleScorerGet(send)
	default:
		slog.Warn("unknown scorer action", "action", action)
	}
}

// handleArchive routes archive/* commands
func (h *CommandHandler) handleArchive(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		h.handleArchiveUpdate(cmd, send)
	case "get":
		h.handleArchiveGet(send)
	case "test-s3":
		h.handleTestS3(cmd, send)
	default:
		slog.Warn("unknown archive action", "action", action)
	}
}

// handleNotifications routes notifications/*/* commands
func (h *CommandHandler) handleNotifications(action, subaction string, cmd WSCommand, send chan<- any) {
	switch action {
	case "webhook":
		switch subaction {
		case "update":
			h.handleWebhookUpdate(cmd, send)
		case "test":
			h.handleWebhookTest(send)
		case "get":
			h.handleWebhookGet(send)
		default:
			slog.Warn("unknown webhook action", "subaction", subaction)
		}
	case "log":
		switch subaction {
		case "update":
			h.handleLogUpdate(cmd, send)
		case "view":
			h.handleViewEventLog(send)
		case "get":
			h.handleLogGet(send)
		default:
			slog.Warn("unknown log action", "subaction", subaction)
		}
	default:
		slog.Warn("unknown notifications action", "action", action)
	}
}

// handleWords routes words/* commands
func (h *CommandHandler) handleWords(action string, send chan<- any) {
	switch action {
	case "list":
		h.handleWordsList(send)
	default:
		slog.Warn("unknown words action", "action", action)
	}
}

// handleConfig routes config/* commands
func (h *CommandHandler) handleConfig(action string, send chan<- any) {
	switch action {
	case "get":
		h.handleConfigGet(send)
	default:
		slog.Warn("unknown config action", "action", action)
	}
}

// handleStatus routes status/* commands
func (h *CommandHandler) handleStatus(action string, send chan<- any) {
	switch action {
	case "get":
		// Status is sent automatically, but explicit get triggers immediate update
		slog.Debug("status/get received, status update will be triggered")
	default:
		slog.Warn("unknown status action", "action", action)
	}
}
