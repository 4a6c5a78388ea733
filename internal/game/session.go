package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hacknao/echotower/internal/audio"
	"github.com/hacknao/echotower/internal/recording"
	"github.com/hacknao/echotower/internal/scorer"
	"github.com/hacknao/echotower/internal/types"
	"github.com/hacknao/echotower/internal/words"
)

// Round pacing. The outcome stays on screen for two seconds before the next
// round is prepared; the score panel lingers one second longer.
const (
	DefaultRoundTime = 10 * time.Second

	outcomeDelay = 2000 * time.Millisecond
	panelDelay   = 3000 * time.Millisecond

	// safetyResolveDelay resolves a round with a zero score when a scorer
	// response was discarded as stale and no legitimate result follows.
	safetyResolveDelay = 5000 * time.Millisecond
)

// EventType identifies a session event pushed to observers.
type EventType string

const (
	EventGameStarted    EventType = "game_started"
	EventRoundStarted   EventType = "round_started"
	EventRoundResolved  EventType = "round_resolved"
	EventRoundDiscarded EventType = "round_discarded"
	EventPanelCleared   EventType = "panel_cleared"
	EventGameOver       EventType = "game_over"
	EventGameReset      EventType = "game_reset"
)

// Event is one session occurrence with its payload.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// ObserverFunc receives session events. Called outside the session lock.
type ObserverFunc func(Event)

// RoundResult is the payload of EventRoundResolved.
type RoundResult struct {
	Word   words.Word   `json:"word"`
	Score  scorer.Score `json:"score"`
	Effect RoundEffect  `json:"effect"`
}

// SessionConfig tunes the round loop.
type SessionConfig struct {
	// RoundTime is the hard limit per round. Zero means DefaultRoundTime.
	RoundTime time.Duration
	// AutoStart begins listening as soon as the next round is prepared,
	// instead of waiting for an explicit start command.
	AutoStart bool
	// ScorerTimeout bounds the single scoring attempt per utterance.
	ScorerTimeout time.Duration
}

// Session runs one player's climb. It owns the game state and the active
// round, drives the recording controller, and funnels every resolution path
// (auto-stop, timeout, manual stop) through a single guarded handler so a
// round can never resolve twice.
type Session struct {
	mu sync.Mutex

	cfg        SessionConfig
	state      State
	roundState types.RoundState
	word       *words.Word
	roundStart time.Time
	processing bool
	lastResult *RoundResult

	roundTimer  *time.Timer
	safetyTimer *time.Timer
	nextTimer   *time.Timer
	panelTimer  *time.Timer

	controller *recording.Controller
	scorer     scorer.Scorer
	engine     *Engine
	picker     *words.Picker
	archiver   *recording.Archiver
	observer   ObserverFunc
}

// NewSession wires the round loop together. archiver may be nil.
func NewSession(cfg SessionConfig, ctrl *recording.Controller, sc scorer.Scorer, picker *words.Picker, engine *Engine, archiver *recording.Archiver) *Session {
	if cfg.RoundTime <= 0 {
		cfg.RoundTime = DefaultRoundTime
	}
	if cfg.ScorerTimeout <= 0 {
		cfg.ScorerTimeout = scorer.DefaultTimeout
	}
	s := &Session{
		cfg:        cfg,
		controller: ctrl,
		scorer:     sc,
		engine:     engine,
		picker:     picker,
		archiver:   archiver,
		roundState: types.RoundWaiting,
	}
	s.state.Phase = PhaseMenu
	ctrl.SetCompletionHandler(s.onUtterance)
	return s
}

// SetObserver registers the event sink. Must be called before StartGame.
func (s *Session) SetObserver(fn ObserverFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastResult returns the most recently resolved round, or nil.
func (s *Session) LastResult() *RoundResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Scorecard returns the summary of the current or finished game.
func (s *Session) Scorecard() Scorecard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.scorecard()
}

// StartGame resets all state and begins a fresh climb on floor one.
func (s *Session) StartGame() error {
	s.mu.Lock()
	s.clearTimersLocked()
	s.picker.Reset()

	s.state = State{
		SessionID: uuid.NewString(),
		Phase:     PhaseInGame,
		Floor:     1,
		PlayerHP:  MaxPlayerHP,
		EnemyHP:   EnemyMaxHP(1),
		StartedAt: time.Now(),
	}
	w := s.picker.Pick(1)
	s.word = &w
	s.roundState = types.RoundWaiting
	s.processing = false
	s.lastResult = nil
	auto := s.cfg.AutoStart
	snap := s.snapshotLocked()
	s.mu.Unlock()

	slog.Info("game started", "session_id", snap.SessionID, "word", w.Word)
	s.emit(Event{Type: EventGameStarted, Payload: snap})

	if auto {
		return s.StartRound()
	}
	return nil
}

// StartRound opens the microphone and arms the round timer. The round must
// be waiting; starting twice is an error the caller can ignore.
func (s *Session) StartRound() error {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame || s.word == nil {
		s.mu.Unlock()
		return types.ErrNotInGame
	}
	if s.roundState != types.RoundWaiting {
		s.mu.Unlock()
		return types.ErrRoundActive
	}
	s.roundState = types.RoundListening
	s.roundStart = time.Now()
	word := s.word.Word
	s.mu.Unlock()

	if err := s.controller.StartListening(); err != nil {
		s.mu.Lock()
		s.roundState = types.RoundWaiting
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.roundTimer = time.AfterFunc(s.cfg.RoundTime, s.onTimeUp)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	slog.Info("round started", "word", word, "floor", snap.Floor)
	s.emit(Event{Type: EventRoundStarted, Payload: snap})
	return nil
}

// SetScorer swaps the scorer client. Used when the scorer endpoint changes
// at runtime; the next round uses the new client.
func (s *Session) SetScorer(sc scorer.Scorer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scorer = sc
}

// SetPacing updates the round time limit and auto-start behavior. Takes
// effect from the next round; an armed round timer keeps its deadline.
func (s *Session) SetPacing(roundTime time.Duration, autoStart bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if roundTime > 0 {
		s.cfg.RoundTime = roundTime
	}
	s.cfg.AutoStart = autoStart
}

// StopRound ends listening early and scores whatever was captured so far.
// A no-op outside the listening window.
func (s *Session) StopRound() {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame || s.roundState != types.RoundListening || s.processing {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	pcm := s.controller.StopListening()
	s.onUtterance(recording.Result{PCM: pcm, Reason: recording.StopManual})
}

// SubmitScore feeds an externally produced score into the round. Used when
// the UI performs scoring itself instead of the built-in scorer client.
func (s *Session) SubmitScore(sc scorer.Score) {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame || s.word == nil || s.roundState == types.RoundWaiting {
		s.mu.Unlock()
		slog.Warn("score ignored, round not open")
		return
	}
	if s.processing || s.roundState == types.RoundFinished {
		s.mu.Unlock()
		slog.Warn("score ignored", "error", types.ErrDuplicateResult)
		return
	}
	if !sc.Matches(s.word.Word) {
		s.discardMismatchLocked(sc.MatchedWord)
		return
	}
	s.processing = true
	s.stopRoundTimerLocked()
	s.roundState = types.RoundProcessing
	if s.controller.Listening() {
		s.mu.Unlock()
		s.controller.StopListening()
	} else {
		s.mu.Unlock()
	}
	s.resolve(sc)
}

// onUtterance handles the recording that the VAD finished. It enters
// Processing synchronously, cancelling the round timer before the scorer
// call is dispatched, so no second resolution path can begin.
func (s *Session) onUtterance(res recording.Result) {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame || s.roundState != types.RoundListening || s.processing || s.word == nil {
		s.mu.Unlock()
		return
	}
	s.processing = true
	s.stopRoundTimerLocked()
	s.roundState = types.RoundProcessing
	word := *s.word
	sessionID := s.state.SessionID
	grader := s.scorer
	s.mu.Unlock()

	if len(res.PCM) == 0 {
		slog.Info("utterance empty, scoring zero", "word", word.Word)
		s.resolve(scorer.ZeroScore(word.Word))
		return
	}

	wav := audio.EncodeWAV(res.PCM)
	if s.archiver != nil {
		s.archiver.Archive(sessionID, word.Word, wav)
	}

	if grader == nil {
		slog.Warn("no scorer configured, scoring zero", "word", word.Word)
		s.resolve(scorer.ZeroScore(word.Word))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ScorerTimeout)
	defer cancel()

	sc, err := grader.Score(ctx, word.Word, wav)
	if err != nil {
		slog.Warn("scoring failed, degrading to zero score", "word", word.Word, "error", err)
		s.resolve(scorer.ZeroScore(word.Word))
		return
	}

	if !sc.Matches(word.Word) {
		s.mu.Lock()
		if s.word == nil {
			s.mu.Unlock()
			return
		}
		s.discardMismatchLocked(sc.MatchedWord)
		return
	}
	s.resolve(sc)
}

// onTimeUp fires when the round timer elapses without a resolved utterance.
// Whatever audio is buffered is discarded and the round scores zero.
func (s *Session) onTimeUp() {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame || s.roundState != types.RoundListening || s.processing || s.word == nil {
		s.mu.Unlock()
		return
	}
	s.processing = true
	s.roundState = types.RoundProcessing
	word := s.word.Word
	s.mu.Unlock()

	slog.Info("round timed out", "word", word)
	s.controller.StopListening()
	s.resolve(scorer.ZeroScore(word))
}

// discardMismatchLocked drops a stale scorer response and arms the safety
// timer so the round still resolves if nothing else arrives. Called with the
// lock held; releases it.
func (s *Session) discardMismatchLocked(received string) {
	expected := s.word.Word
	s.processing = false
	if s.safetyTimer == nil {
		s.safetyTimer = time.AfterFunc(safetyResolveDelay, s.onSafetyResolve)
	}
	s.mu.Unlock()

	slog.Warn("discarding mismatched score", "expected", expected, "received", received, "error", types.ErrWordMismatch)
	s.emit(Event{Type: EventRoundDiscarded, Payload: map[string]string{
		"expected": expected,
		"received": received,
	}})
}

// onSafetyResolve closes out a round left open by a discarded result.
func (s *Session) onSafetyResolve() {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame || s.processing || s.word == nil ||
		(s.roundState != types.RoundListening && s.roundState != types.RoundProcessing) {
		s.mu.Unlock()
		return
	}
	s.processing = true
	s.stopRoundTimerLocked()
	s.roundState = types.RoundProcessing
	word := s.word.Word
	s.mu.Unlock()

	slog.Warn("safety timer resolving round", "word", word)
	s.controller.StopListening()
	s.resolve(scorer.ZeroScore(word))
}

// resolve applies the score to the game state and schedules the next step.
// Exactly one call per round reaches this point.
func (s *Session) resolve(sc scorer.Score) {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame || s.word == nil {
		s.mu.Unlock()
		return
	}
	word := *s.word
	effect := s.engine.Apply(&s.state, sc)
	s.roundState = types.RoundFinished
	result := &RoundResult{Word: word, Score: sc, Effect: effect}
	s.lastResult = result

	if s.safetyTimer != nil {
		s.safetyTimer.Stop()
		s.safetyTimer = nil
	}

	if effect.PlayerDefeated {
		s.nextTimer = time.AfterFunc(outcomeDelay, s.gameOver)
	} else {
		s.nextTimer = time.AfterFunc(outcomeDelay, s.nextRound)
	}
	s.panelTimer = time.AfterFunc(panelDelay, s.clearPanel)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	slog.Info("round resolved",
		"word", word.Word,
		"outcome", effect.Outcome,
		"accuracy", effect.Accuracy,
		"floor", snap.Floor,
		"score", snap.Score,
		"player_hp", snap.PlayerHP,
		"enemy_hp", snap.EnemyHP)
	s.emit(Event{Type: EventRoundResolved, Payload: result})
}

// nextRound prepares the following word. The processing guard resets here
// and nowhere else, so late duplicate results for the previous round stay
// blocked until a fresh round is actually in place.
func (s *Session) nextRound() {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame {
		s.mu.Unlock()
		return
	}
	w := s.picker.Pick(s.state.Floor)
	s.word = &w
	s.roundState = types.RoundWaiting
	s.processing = false
	auto := s.cfg.AutoStart
	s.mu.Unlock()

	slog.Debug("next round ready", "word", w.Word)
	if auto {
		if err := s.StartRound(); err != nil {
			slog.Error("auto-start failed", "error", err)
		}
	}
}

// clearPanel hides the score panel after its display window.
func (s *Session) clearPanel() {
	s.mu.Lock()
	s.lastResult = nil
	s.mu.Unlock()
	s.emit(Event{Type: EventPanelCleared})
}

// gameOver finishes the session and releases the microphone.
func (s *Session) gameOver() {
	s.mu.Lock()
	if s.state.Phase != PhaseInGame {
		s.mu.Unlock()
		return
	}
	s.clearTimersLocked()
	s.state.Phase = PhaseGameOver
	s.state.EndedAt = time.Now()
	card := s.state.scorecard()
	s.mu.Unlock()

	s.controller.Teardown()
	slog.Info("game over",
		"session_id", card.SessionID,
		"score", card.FinalScore,
		"floor", card.FloorReached,
		"rounds", card.RoundsPlayed)
	s.emit(Event{Type: EventGameOver, Payload: card})
}

// Reset aborts any game in progress and returns to the menu. All timers are
// cancelled and the microphone is released.
func (s *Session) Reset() {
	s.mu.Lock()
	s.clearTimersLocked()
	s.state = State{Phase: PhaseMenu, Floor: 1, PlayerHP: MaxPlayerHP, EnemyHP: EnemyMaxHP(1)}
	s.roundState = types.RoundWaiting
	s.word = nil
	s.processing = false
	s.lastResult = nil
	s.mu.Unlock()

	s.controller.Teardown()
	s.picker.Reset()
	slog.Info("game reset")
	s.emit(Event{Type: EventGameReset})
}

// Close shuts the session down for program exit.
func (s *Session) Close() {
	s.mu.Lock()
	s.clearTimersLocked()
	s.mu.Unlock()
	s.controller.Teardown()
	if s.archiver != nil {
		s.archiver.Stop()
	}
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	fn := s.observer
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, RoundState: s.roundState, Word: s.word}
	if s.roundState == types.RoundListening {
		left := s.cfg.RoundTime - time.Since(s.roundStart)
		if left < 0 {
			left = 0
		}
		snap.TimeLeftMs = left.Milliseconds()
	}
	return snap
}

func (s *Session) stopRoundTimerLocked() {
	if s.roundTimer != nil {
		s.roundTimer.Stop()
		s.roundTimer = nil
	}
}

func (s *Session) clearTimersLocked() {
	s.stopRoundTimerLocked()
	for _, t := range []*time.Timer{s.safetyTimer, s.nextTimer, s.panelTimer} {
		if t != nil {
			t.Stop()
		}
	}
	s.safetyTimer = nil
	s.nextTimer = nil
	s.panelTimer = nil
}
