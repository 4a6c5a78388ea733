// Package game implements the tower climb: round lifecycle, pronunciation
// result handling, and score/hit-point progression.
package game

import (
	"time"

	"github.com/hacknao/echotower/internal/types"
	"github.com/hacknao/echotower/internal/words"
)

// Phase is the coarse game lifecycle.
type Phase string

const (
	PhaseMenu     Phase = "menu"
	PhaseInGame   Phase = "ingame"
	PhaseGameOver Phase = "gameover"
)

// State is the mutable game state for one session. Access is guarded by the
// owning Session's mutex.
type State struct {
	SessionID string `json:"session_id"`
	Phase     Phase  `json:"phase"`
	Floor     int    `json:"floor"`
	Score     int    `json:"score"`
	PlayerHP  int    `json:"player_hp"`
	EnemyHP   int    `json:"enemy_hp"`

	RoundsPlayed int `json:"rounds_played"`
	PerfectCount int `json:"perfect_count"`
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`

	StartedAt time.Time `json:"started_at,omitempty"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
}

// Snapshot is a point-in-time view of the session for the UI.
type Snapshot struct {
	State
	RoundState types.RoundState `json:"round_state"`
	Word       *words.Word      `json:"word,omitempty"`
	TimeLeftMs int64            `json:"time_left_ms"`
}

// Scorecard summarizes a finished session.
type Scorecard struct {
	SessionID    string    `json:"session_id"`
	FinalScore   int       `json:"final_score"`
	FloorReached int       `json:"floor_reached"`
	RoundsPlayed int       `json:"rounds_played"`
	PerfectCount int       `json:"perfect_count"`
	SuccessCount int       `json:"success_count"`
	FailCount    int       `json:"fail_count"`
	DurationMs   int64     `json:"duration_ms"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
}

// scorecard builds the summary for a finished state.
func (st *State) scorecard() Scorecard {
	return Scorecard{
		SessionID:    st.SessionID,
		FinalScore:   st.Score,
		FloorReached: st.Floor,
		RoundsPlayed: st.RoundsPlayed,
		PerfectCount: st.PerfectCount,
		SuccessCount: st.SuccessCount,
		FailCount:    st.FailCount,
		DurationMs:   st.EndedAt.Sub(st.StartedAt).Milliseconds(),
		StartedAt:    st.StartedAt,
		EndedAt:      st.EndedAt,
	}
}
