package server

import (
	"log/slog"

	"github.com/hacknao/echotower/internal/audio"
	"github.com/hacknao/echotower/internal/recording"
	"github.com/hacknao/echotower/internal/scorer"
	"github.com/hacknao/echotower/internal/words"
)

// --- Audio handlers ---

// handleAudioUpdate processes an audio/update command.
func (h *CommandHandler) handleAudioUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *AudioUpdateRequest) error {
		if req.Input == "" {
			return nil // No change requested
		}

		slog.Info("audio/update: changing audio input", "input", req.Input)
		if err := h.cfg.SetAudioInput(req.Input); err != nil {
			return err
		}

		// Takes effect when the capture stream next opens
		h.controller.SetDevice(req.Input)
		return nil
	})
}

// handleAudioGet processes an audio/get command.
func (h *CommandHandler) handleAudioGet(send chan<- any) {
	SendData(send, map[string]any{
		"type":  "audio_config",
		"input": h.cfg.AudioInput(),
	})
}

// handleAudioDevices processes an audio/devices command.
func (h *CommandHandler) handleAudioDevices(send chan<- any) {
	SendData(send, map[string]any{
		"type":    "audio_devices",
		"devices": audio.Devices(),
	})
}

// --- Voice detection handlers ---

// handleVADUpdate processes a vad/update command.
func (h *CommandHandler) handleVADUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *VADUpdateRequest) error {
		cfg := h.cfg.VADConfig()
		if req.NoiseFloorDB != nil {
			cfg.NoiseFloorDB = *req.NoiseFloorDB
		}
		if req.MarginDB != nil {
			cfg.MarginDB = *req.MarginDB
		}
		if req.MinSpeechMs != nil {
			cfg.MinSpeechMs = *req.MinSpeechMs
		}
		if req.MaxSilenceMs != nil {
			cfg.MaxSilenceMs = *req.MaxSilenceMs
		}
		if req.MaxRecordingMs != nil {
			cfg.MaxRecordingMs = *req.MaxRecordingMs
		}

		if err := h.cfg.SetVADConfig(cfg); err != nil {
			return err
		}

		// Apply to the live detector
		h.controller.Detector().SetConfig(cfg)
		return nil
	})
}

// handleVADGet processes a vad/get command.
func (h *CommandHandler) handleVADGet(send chan<- any) {
	SendData(send, map[string]any{
		"type": "vad_config",
		"vad":  h.cfg.VADConfig(),
	})
}

// --- Scorer handlers ---

// handleScorerUpdate processes a scorer/update command.
func (h *CommandHandler) handleScorerUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *ScorerUpdateRequest) error {
		cfg := h.cfg.ScorerConfig()
		cfg.URL = req.URL
		cfg.ClientID = req.ClientID
		cfg.ClientSecret = req.ClientSecret
		cfg.TokenURL = req.TokenURL
		if req.TimeoutMs != nil {
			cfg.TimeoutMs = *req.TimeoutMs
		}

		if err := h.cfg.SetScorerConfig(cfg); err != nil {
			return err
		}

		if cfg.IsConfigured() {
			client, err := scorer.NewHTTPScorer(cfg)
			if err != nil {
				return err
			}
			h.session.SetScorer(client)
		}
		return nil
	})
}

// handleScorerGet processes a scorer/get command. The client secret is
// never echoed back.
func (h *CommandHandler) handleScorerGet(send chan<- any) {
	cfg := h.cfg.ScorerConfig()
	SendData(send, map[string]any{
		"type":       "scorer_config",
		"url":        cfg.URL,
		"timeout_ms": cfg.TimeoutMs,
		"client_id":  cfg.ClientID,
		"token_url":  cfg.TokenURL,
	})
}

// --- Archive handlers ---

// handleArchiveUpdate processes an archive/update command.
func (h *CommandHandler) handleArchiveUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *ArchiveUpdateRequest) error {
		cfg := recording.S3Config{
			Endpoint:        req.Endpoint,
			Bucket:          req.Bucket,
			AccessKeyID:     req.AccessKeyID,
			SecretAccessKey: req.SecretAccessKey,
		}
		if err := h.cfg.SetArchiveConfig(cfg); err != nil {
			return err
		}
		h.archiver.UpdateConfig(cfg)
		return nil
	})
}

// handleArchiveGet processes an archive/get command. Credentials are never
// echoed back.
func (h *CommandHandler) handleArchiveGet(send chan<- any) {
	cfg := h.cfg.ArchiveConfig()
	uploaded, lastErr := h.archiver.Status()
	SendData(send, map[string]any{
		"type":       "archive_config",
		"endpoint":   cfg.Endpoint,
		"bucket":     cfg.Bucket,
		"configured": cfg.IsConfigured(),
		"uploaded":   uploaded,
		"last_error": lastErr,
	})
}

// handleTestS3 processes an archive/test-s3 command.
func (h *CommandHandler) handleTestS3(cmd WSCommand, send chan<- any) {
	var req S3TestRequest
	if !DecodeAndValidate(cmd, send, &req) {
		return
	}

	HandleActionAsync(cmd, send, func() (any, error) {
		cfg := &recording.S3Config{
			Endpoint:        req.Endpoint,
			Bucket:          req.Bucket,
			AccessKeyID:     req.AccessKey,
			SecretAccessKey: req.SecretKey,
		}
		if err := recording.TestS3Connection(cfg); err != nil {
			return nil, err
		}
		return map[string]string{"status": "ok"}, nil
	})
}

// --- Words ---

// handleWordsList processes a words/list command.
func (h *CommandHandler) handleWordsList(send chan<- any) {
	SendData(send, map[string]any{
		"type":  "words",
		"words": words.All(),
	})
}

// handleConfigGet processes a config/get command.
func (h *CommandHandler) handleConfigGet(send chan<- any) {
	snap := h.cfg.Snapshot()
	SendData(send, map[string]any{
		"type": "config",
		"config": map[string]any{
			"game_title":    snap.GameTitle,
			"audio_input":   snap.AudioInput,
			"vad":           snap.VAD,
			"round_time_ms": snap.RoundTimeMs,
			"auto_start":    snap.AutoStart,
			"scorer_url":    snap.Scorer.URL,
			"webhook_url":   snap.WebhookURL,
			"log_path":      snap.LogPath,
		},
	})
}
