package game

import (
	"math"
	"math/rand"

	"github.com/hacknao/echotower/internal/scorer"
	"github.com/hacknao/echotower/internal/types"
)

// Combat tuning.
const (
	MaxPlayerHP = 6
	MaxEnemyHP  = 6

	// PerfectThreshold and SuccessThreshold split accuracy (0-100) into the
	// three round outcomes.
	PerfectThreshold = 85.0
	SuccessThreshold = 60.0

	perfectDamage = 2
	successDamage = 1

	// Base round score is rolled uniformly from this range. A perfect
	// pronunciation triples it.
	baseScoreMin = 5
	baseScoreMax = 8

	healInterval  = 5
	fullHPBonus   = 10
	perfectFactor = 3
)

// EnemyMaxHP returns the enemy hit points for a floor. Enemies gain one
// point every five floors, capped at MaxEnemyHP.
func EnemyMaxHP(floor int) int {
	hp := 3 + floor/5
	if hp > MaxEnemyHP {
		hp = MaxEnemyHP
	}
	return hp
}

// OutcomeFor classifies an accuracy percentage.
func OutcomeFor(accuracy float64) types.Outcome {
	switch {
	case accuracy >= PerfectThreshold:
		return types.OutcomePerfect
	case accuracy >= SuccessThreshold:
		return types.OutcomeSuccess
	default:
		return types.OutcomeFail
	}
}

// RoundEffect describes everything a resolved round did to the game state.
type RoundEffect struct {
	Outcome        types.Outcome `json:"outcome"`
	Accuracy       float64       `json:"accuracy"`
	Damage         int           `json:"damage"`
	ScoreGained    int           `json:"score_gained"`
	VictoryBonus   int           `json:"victory_bonus,omitempty"`
	EnemyDefeated  bool          `json:"enemy_defeated"`
	PlayerDefeated bool          `json:"player_defeated"`
	FloorAdvanced  bool          `json:"floor_advanced"`
	Healed         bool          `json:"healed,omitempty"`
	HealBonus      int           `json:"heal_bonus,omitempty"`
}

// Engine applies pronunciation results to the game state. It is purely
// computational; all timing lives in the Session.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine drawing base scores from the given source.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Apply mutates st according to the score and returns what happened.
// A perfect hit deals 2 damage for triple score, a success deals 1 for the
// base score, and a fail costs the player one hit point. Defeating the
// enemy pays a victory bonus and advances the floor; every fifth floor
// heals one point, or pays ten score when already full.
func (e *Engine) Apply(st *State, sc scorer.Score) RoundEffect {
	accuracy := sc.Accuracy()
	outcome := OutcomeFor(accuracy)
	base := e.rng.Intn(baseScoreMax-baseScoreMin+1) + baseScoreMin

	eff := RoundEffect{Outcome: outcome, Accuracy: accuracy}

	switch outcome {
	case types.OutcomePerfect:
		eff.Damage = perfectDamage
		eff.ScoreGained = base * perfectFactor
		st.PerfectCount++
	case types.OutcomeSuccess:
		eff.Damage = successDamage
		eff.ScoreGained = base
		st.SuccessCount++
	default:
		st.FailCount++
	}

	st.RoundsPlayed++

	if eff.Damage > 0 {
		st.EnemyHP -= eff.Damage
		if st.EnemyHP < 0 {
			st.EnemyHP = 0
		}
		st.Score += eff.ScoreGained

		if st.EnemyHP == 0 {
			eff.EnemyDefeated = true
			eff.VictoryBonus = EnemyMaxHP(st.Floor)*10 + int(math.Ceil(float64(st.Floor)*0.1))
			st.Score += eff.VictoryBonus
			e.advanceFloor(st, &eff)
		}
		return eff
	}

	st.PlayerHP--
	if st.PlayerHP <= 0 {
		st.PlayerHP = 0
		eff.PlayerDefeated = true
	}
	return eff
}

// advanceFloor moves to the next floor and spawns a fresh enemy.
func (e *Engine) advanceFloor(st *State, eff *RoundEffect) {
	st.Floor++
	eff.FloorAdvanced = true

	if st.Floor%healInterval == 0 {
		if st.PlayerHP < MaxPlayerHP {
			st.PlayerHP++
			eff.Healed = true
		} else {
			st.Score += fullHPBonus
			eff.HealBonus = fullHPBonus
		}
	}

	st.EnemyHP = EnemyMaxHP(st.Floor)
}
