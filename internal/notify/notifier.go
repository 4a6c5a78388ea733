package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hacknao/echotower/internal/config"
	"github.com/hacknao/echotower/internal/events"
	"github.com/hacknao/echotower/internal/game"
	"github.com/hacknao/echotower/internal/util"
)

// GameNotifier forwards session events to the configured channels: the
// JSON-lines event log for every event, and the webhook for game-over
// summaries. Delivery is fire-and-forget; a slow endpoint never blocks the
// round loop.
//
// The log path is resolved from the config snapshot per event, so enabling,
// disabling or moving the event log takes effect immediately.
type GameNotifier struct {
	cfg *config.Config

	mu      sync.Mutex
	log     *events.Logger
	logPath string
}

// NewGameNotifier returns a GameNotifier configured with the given config.
func NewGameNotifier(cfg *config.Config) *GameNotifier {
	return &GameNotifier{cfg: cfg}
}

// HandleEvent processes a session event and triggers notifications.
func (n *GameNotifier) HandleEvent(ev game.Event) {
	n.logEvent(ev)

	if ev.Type != game.EventGameOver {
		return
	}
	card, ok := ev.Payload.(game.Scorecard)
	if !ok {
		return
	}

	cfg := n.cfg.Snapshot()
	if cfg.HasWebhook() {
		go n.sendGameOverWebhook(cfg.WebhookURL, card)
	}
}

// Close releases the event log file, if one is open.
func (n *GameNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.log == nil {
		return nil
	}
	err := n.log.Close()
	n.log = nil
	n.logPath = ""
	return err
}

// logger returns the event logger for the currently configured path,
// reopening it when the path changed. Returns nil when logging is disabled
// or the file cannot be opened.
func (n *GameNotifier) logger() *events.Logger {
	path := n.cfg.Snapshot().LogPath

	n.mu.Lock()
	defer n.mu.Unlock()

	if path == n.logPath && (path == "" || n.log != nil) {
		return n.log
	}

	if n.log != nil {
		if err := n.log.Close(); err != nil {
			slog.Warn("error closing event log", "path", n.logPath, "error", err)
		}
		n.log = nil
	}
	n.logPath = path
	if path == "" {
		return nil
	}

	log, err := events.NewLogger(path)
	if err != nil {
		slog.Error("failed to open event log", "path", path, "error", err)
		return nil
	}
	n.log = log
	slog.Info("event log opened", "path", path)
	return n.log
}

// logEvent appends the event to the JSON-lines log.
func (n *GameNotifier) logEvent(ev game.Event) {
	entry := &events.GameEvent{}
	switch ev.Type {
	case game.EventGameStarted:
		snap, ok := ev.Payload.(game.Snapshot)
		if !ok {
			return
		}
		entry.Event = events.EventGameStarted
		entry.SessionID = snap.SessionID
		entry.Floor = snap.Floor
	case game.EventRoundStarted:
		snap, ok := ev.Payload.(game.Snapshot)
		if !ok {
			return
		}
		entry.Event = events.EventRoundStarted
		entry.SessionID = snap.SessionID
		entry.Floor = snap.Floor
		if snap.Word != nil {
			entry.Word = snap.Word.Word
		}
	case game.EventRoundResolved:
		res, ok := ev.Payload.(*game.RoundResult)
		if !ok {
			return
		}
		entry.Event = events.EventRoundResolved
		entry.Word = res.Word.Word
		entry.Outcome = string(res.Effect.Outcome)
		entry.Accuracy = res.Effect.Accuracy
	case game.EventRoundDiscarded:
		entry.Event = events.EventDiscarded
		if m, ok := ev.Payload.(map[string]string); ok {
			entry.Word = m["expected"]
			entry.Message = "discarded stale result for " + m["received"]
		}
	case game.EventGameOver:
		card, ok := ev.Payload.(game.Scorecard)
		if !ok {
			return
		}
		entry.Event = events.EventGameOver
		entry.SessionID = card.SessionID
		entry.Floor = card.FloorReached
		entry.Score = card.FinalScore
	default:
		return
	}

	log := n.logger()
	if log == nil {
		return
	}
	if err := log.Log(entry); err != nil {
		util.LogNotifyResult(func() error { return err }, "Event log")
	}
}

// sendGameOverWebhook posts the finished session summary.
func (n *GameNotifier) sendGameOverWebhook(url string, card game.Scorecard) {
	util.LogNotifyResult(
		func() error {
			return sendWebhook(url, &WebhookPayload{
				Event:        "game_over",
				SessionID:    card.SessionID,
				FinalScore:   card.FinalScore,
				FloorReached: card.FloorReached,
				RoundsPlayed: card.RoundsPlayed,
				PerfectCount: card.PerfectCount,
				SuccessCount: card.SuccessCount,
				FailCount:    card.FailCount,
				DurationMs:   card.DurationMs,
				Message: fmt.Sprintf("Climb ended on floor %d with %d points after %s",
					card.FloorReached, card.FinalScore, util.FormatDuration(card.DurationMs)),
				Timestamp: timestampUTC(),
			})
		},
		"Game-over webhook",
	)
}
