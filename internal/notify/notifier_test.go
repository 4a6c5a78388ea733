package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacknao/echotower/internal/config"
	"github.com/hacknao/echotower/internal/events"
	"github.com/hacknao/echotower/internal/game"
	"github.com/hacknao/echotower/internal/words"
)

func newTestNotifier(t *testing.T) (*GameNotifier, *config.Config) {
	t.Helper()
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())

	n := NewGameNotifier(cfg)
	t.Cleanup(func() { _ = n.Close() })
	return n, cfg
}

func gameStarted(sessionID string, floor int) game.Event {
	return game.Event{
		Type:    game.EventGameStarted,
		Payload: game.Snapshot{State: game.State{SessionID: sessionID, Floor: floor}},
	}
}

func TestLogEventSkippedWhenUnconfigured(t *testing.T) {
	n, _ := newTestNotifier(t)
	n.HandleEvent(gameStarted("s-1", 1))
	assert.Nil(t, n.logger())
}

func TestLogPathEnabledAtRuntime(t *testing.T) {
	n, cfg := newTestNotifier(t)

	// No log at startup; events before the path is set are dropped.
	n.HandleEvent(gameStarted("before", 1))

	logPath := filepath.Join(t.TempDir(), "events.log")
	require.NoError(t, cfg.SetLogPath(logPath))

	n.HandleEvent(gameStarted("after", 2))

	entries, err := events.ReadLast(logPath, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "after", entries[0].SessionID)
	assert.Equal(t, 2, entries[0].Floor)
}

func TestLogPathChangeSwitchesFile(t *testing.T) {
	n, cfg := newTestNotifier(t)

	first := filepath.Join(t.TempDir(), "first.log")
	require.NoError(t, cfg.SetLogPath(first))
	n.HandleEvent(gameStarted("one", 1))

	second := filepath.Join(t.TempDir(), "second.log")
	require.NoError(t, cfg.SetLogPath(second))
	n.HandleEvent(gameStarted("two", 1))

	firstEntries, err := events.ReadLast(first, 10)
	require.NoError(t, err)
	require.Len(t, firstEntries, 1)
	assert.Equal(t, "one", firstEntries[0].SessionID)

	secondEntries, err := events.ReadLast(second, 10)
	require.NoError(t, err)
	require.Len(t, secondEntries, 1)
	assert.Equal(t, "two", secondEntries[0].SessionID)
}

func TestLogPathClearedStopsWriting(t *testing.T) {
	n, cfg := newTestNotifier(t)

	logPath := filepath.Join(t.TempDir(), "events.log")
	require.NoError(t, cfg.SetLogPath(logPath))
	n.HandleEvent(gameStarted("kept", 1))

	require.NoError(t, cfg.SetLogPath(""))
	n.HandleEvent(gameStarted("dropped", 1))

	entries, err := events.ReadLast(logPath, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].SessionID)
}

func TestLogEventRecordsRoundResolution(t *testing.T) {
	n, cfg := newTestNotifier(t)

	logPath := filepath.Join(t.TempDir(), "events.log")
	require.NoError(t, cfg.SetLogPath(logPath))

	n.HandleEvent(game.Event{
		Type: game.EventRoundResolved,
		Payload: &game.RoundResult{
			Word:   words.Word{Word: "CASTLE", Difficulty: 2, Syllables: 2, Type: words.Noun},
			Effect: game.RoundEffect{Outcome: "perfect", Accuracy: 92},
		},
	})

	entries, err := events.ReadLast(logPath, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, events.EventRoundResolved, entries[0].Event)
	assert.Equal(t, "CASTLE", entries[0].Word)
	assert.Equal(t, "perfect", entries[0].Outcome)
}

func TestCloseReleasesLogFile(t *testing.T) {
	n, cfg := newTestNotifier(t)

	logPath := filepath.Join(t.TempDir(), "events.log")
	require.NoError(t, cfg.SetLogPath(logPath))
	n.HandleEvent(gameStarted("s-1", 1))

	require.NoError(t, n.Close())

	_, err := os.Stat(logPath)
	require.NoError(t, err)

	// Logging resumes with a fresh handle after Close.
	n.HandleEvent(gameStarted("s-2", 1))
	entries, err := events.ReadLast(logPath, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
