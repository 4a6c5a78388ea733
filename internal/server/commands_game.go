package server

import (
	"strings"
	"time"

	"github.com/hacknao/echotower/internal/scorer"
)

// --- Game handlers ---

// handleGameStart processes a game/start command.
func (h *CommandHandler) handleGameStart(cmd WSCommand, send chan<- any) {
	if err := h.session.StartGame(); err != nil {
		SendError(send, cmd.Type, err)
		return
	}
	SendSuccess(send, cmd.Type, h.session.Snapshot())
}

// handleGameReset processes a game/reset command.
func (h *CommandHandler) handleGameReset(cmd WSCommand, send chan<- any) {
	h.session.Reset()
	SendSuccess(send, cmd.Type, h.session.Snapshot())
}

// handleScorecard processes a game/scorecard command.
func (h *CommandHandler) handleScorecard(send chan<- any) {
	SendData(send, map[string]any{
		"type":      "scorecard",
		"scorecard": h.session.Scorecard(),
	})
}

// --- Round handlers ---

// handleRoundStart processes a round/start command.
func (h *CommandHandler) handleRoundStart(cmd WSCommand, send chan<- any) {
	if err := h.session.StartRound(); err != nil {
		SendError(send, cmd.Type, err)
		return
	}
	SendSuccess(send, cmd.Type, h.session.Snapshot())
}

// handleRoundStop processes a round/stop command. Scoring the captured
// audio runs asynchronously so the reader goroutine is never blocked on the
// remote scorer.
func (h *CommandHandler) handleRoundStop(cmd WSCommand, send chan<- any) {
	HandleActionAsync(cmd, send, func() (any, error) {
		h.session.StopRound()
		return nil, nil
	})
}

// handleRoundUpdate processes a round/update command.
func (h *CommandHandler) handleRoundUpdate(cmd WSCommand, send chan<- any) {
	HandleCommand(h, cmd, send, func(req *RoundUpdateRequest) error {
		cfg := h.cfg.RoundConfig()
		if req.RoundTimeMs != nil {
			cfg.RoundTimeMs = *req.RoundTimeMs
		}
		if req.AutoStart != nil {
			cfg.AutoStart = *req.AutoStart
		}

		if err := h.cfg.SetRoundConfig(cfg); err != nil {
			return err
		}

		// Applies from the next round
		h.session.SetPacing(time.Duration(cfg.RoundTimeMs)*time.Millisecond, cfg.AutoStart)
		return nil
	})
}

// handleRoundGet processes a round/get command.
func (h *CommandHandler) handleRoundGet(send chan<- any) {
	cfg := h.cfg.RoundConfig()
	SendData(send, map[string]any{
		"type":          "round_config",
		"round_time_ms": cfg.RoundTimeMs,
		"auto_start":    cfg.AutoStart,
	})
}

// handleSubmitScore processes a round/submit-score command carrying an
// externally produced pronunciation result.
func (h *CommandHandler) handleSubmitScore(cmd WSCommand, send chan<- any) {
	var req SubmitScoreRequest
	if !DecodeAndValidate(cmd, send, &req) {
		return
	}

	sc := scorer.Score{
		TotalScore:  req.TotalScore,
		MatchedWord: req.TextRefs,
	}
	for _, w := range req.Result {
		ws := scorer.WordScore{Word: w.Word}
		for _, l := range w.Letters {
			ws.Letters = append(ws.Letters, scorer.LetterScore{
				Letter: strings.ToLower(l.Letter),
				Score:  l.Score,
			})
		}
		sc.Result = append(sc.Result, ws)
	}

	h.session.SubmitScore(sc)
	SendSuccess(send, cmd.Type, nil)
}
