package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacknao/echotower/internal/scorer"
	"github.com/hacknao/echotower/internal/types"
)

func scoreWithAccuracy(pct float64) scorer.Score {
	return scorer.Score{TotalScore: pct / 100}
}

func newTestState(floor, playerHP, enemyHP int) *State {
	return &State{
		Phase:    PhaseInGame,
		Floor:    floor,
		PlayerHP: playerHP,
		EnemyHP:  enemyHP,
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     types.Outcome
	}{
		{100, types.OutcomePerfect},
		{85, types.OutcomePerfect},
		{84.9, types.OutcomeSuccess},
		{60, types.OutcomeSuccess},
		{59.9, types.OutcomeFail},
		{0, types.OutcomeFail},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OutcomeFor(tt.accuracy), "accuracy %.1f", tt.accuracy)
	}
}

func TestEnemyMaxHP(t *testing.T) {
	assert.Equal(t, 3, EnemyMaxHP(1))
	assert.Equal(t, 3, EnemyMaxHP(4))
	assert.Equal(t, 4, EnemyMaxHP(5))
	assert.Equal(t, 5, EnemyMaxHP(10))
	assert.Equal(t, 6, EnemyMaxHP(15))
	assert.Equal(t, 6, EnemyMaxHP(100), "enemy HP is capped")
}

func TestApplyPerfect(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(1, MaxPlayerHP, 3)

	eff := e.Apply(st, scoreWithAccuracy(92))

	assert.Equal(t, types.OutcomePerfect, eff.Outcome)
	assert.Equal(t, 2, eff.Damage)
	assert.Equal(t, 1, st.EnemyHP)
	assert.GreaterOrEqual(t, eff.ScoreGained, 15, "triple of minimum base")
	assert.LessOrEqual(t, eff.ScoreGained, 24, "triple of maximum base")
	assert.Equal(t, eff.ScoreGained, st.Score)
	assert.Equal(t, 1, st.PerfectCount)
	assert.Equal(t, 1, st.RoundsPlayed)
	assert.False(t, eff.EnemyDefeated)
}

func TestApplySuccess(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(1, MaxPlayerHP, 3)

	eff := e.Apply(st, scoreWithAccuracy(70))

	assert.Equal(t, types.OutcomeSuccess, eff.Outcome)
	assert.Equal(t, 1, eff.Damage)
	assert.Equal(t, 2, st.EnemyHP)
	assert.GreaterOrEqual(t, eff.ScoreGained, 5)
	assert.LessOrEqual(t, eff.ScoreGained, 8)
	assert.Equal(t, 1, st.SuccessCount)
}

func TestApplyFailHurtsPlayer(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(1, 3, 3)

	eff := e.Apply(st, scoreWithAccuracy(20))

	assert.Equal(t, types.OutcomeFail, eff.Outcome)
	assert.Zero(t, eff.Damage)
	assert.Zero(t, eff.ScoreGained)
	assert.Equal(t, 2, st.PlayerHP)
	assert.Equal(t, 3, st.EnemyHP, "enemy takes no damage on a fail")
	assert.Equal(t, 1, st.FailCount)
	assert.False(t, eff.PlayerDefeated)
}

func TestApplyPlayerDefeat(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(1, 1, 3)

	eff := e.Apply(st, scoreWithAccuracy(0))

	assert.True(t, eff.PlayerDefeated)
	assert.Zero(t, st.PlayerHP)
}

func TestApplyVictoryAdvancesFloor(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(1, MaxPlayerHP, 2)

	eff := e.Apply(st, scoreWithAccuracy(90))

	require.True(t, eff.EnemyDefeated)
	assert.True(t, eff.FloorAdvanced)
	assert.Equal(t, 2, st.Floor)
	// Floor 1 enemy is worth 3*10 plus ceil(1*0.1).
	assert.Equal(t, 31, eff.VictoryBonus)
	assert.Equal(t, eff.ScoreGained+eff.VictoryBonus, st.Score)
	assert.Equal(t, EnemyMaxHP(2), st.EnemyHP, "fresh enemy spawns at full HP")
}

func TestApplyOverkillClampsAtZero(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(1, MaxPlayerHP, 1)

	eff := e.Apply(st, scoreWithAccuracy(95))

	assert.True(t, eff.EnemyDefeated, "2 damage against 1 HP still defeats")
	assert.Equal(t, EnemyMaxHP(2), st.EnemyHP)
}

func TestFifthFloorHealsInjuredPlayer(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(4, 3, 1)

	eff := e.Apply(st, scoreWithAccuracy(90))

	require.True(t, eff.FloorAdvanced)
	assert.Equal(t, 5, st.Floor)
	assert.True(t, eff.Healed)
	assert.Equal(t, 4, st.PlayerHP)
	assert.Zero(t, eff.HealBonus)
}

func TestFifthFloorPaysBonusAtFullHP(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(4, MaxPlayerHP, 1)

	before := st.Score
	eff := e.Apply(st, scoreWithAccuracy(90))

	require.True(t, eff.FloorAdvanced)
	assert.False(t, eff.Healed)
	assert.Equal(t, 10, eff.HealBonus)
	assert.Equal(t, MaxPlayerHP, st.PlayerHP)
	assert.Equal(t, before+eff.ScoreGained+eff.VictoryBonus+10, st.Score)
}

func TestVictoryBonusScalesWithFloor(t *testing.T) {
	e := NewEngine(rand.New(rand.NewSource(1)))
	st := newTestState(20, MaxPlayerHP, 1)

	eff := e.Apply(st, scoreWithAccuracy(90))

	require.True(t, eff.EnemyDefeated)
	// Floor 20 enemy is capped at 6 HP: 6*10 plus ceil(20*0.1).
	assert.Equal(t, 62, eff.VictoryBonus)
}
