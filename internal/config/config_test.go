package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacknao/echotower/internal/vad"
)

func testConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := testConfigPath(t)
	cfg := New(path)
	require.NoError(t, cfg.Load())

	_, err := os.Stat(path)
	require.NoError(t, err)

	snap := cfg.Snapshot()
	assert.Equal(t, DefaultWebPort, snap.WebPort)
	assert.Equal(t, DefaultWebUsername, snap.WebUser)
	assert.Equal(t, DefaultGameTitle, snap.GameTitle)
	assert.Equal(t, int64(DefaultRoundTimeMs), snap.RoundTimeMs)
	assert.True(t, snap.AutoStart)
	assert.Equal(t, vad.DefaultConfig(), snap.VAD)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := testConfigPath(t)
	data := []byte(`{"audio": {"input": "hw:1,0"}}`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg := New(path)
	require.NoError(t, cfg.Load())

	snap := cfg.Snapshot()
	assert.Equal(t, "hw:1,0", snap.AudioInput)
	assert.Equal(t, DefaultWebPort, snap.WebPort)
	assert.Equal(t, int64(DefaultScorerTimeout), snap.Scorer.TimeoutMs)
	assert.Equal(t, vad.DefaultConfig().MarginDB, snap.VAD.MarginDB)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"title too long", `{"web": {"game_title": "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}}`},
		{"title with control char", `{"web": {"game_title": "badtitle"}}`},
		{"round time too short", `{"round": {"round_time_ms": 500}}`},
		{"negative vad margin", `{"vad": {"margin_db": -3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testConfigPath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.json), 0o600))
			assert.Error(t, New(path).Load())
		})
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := testConfigPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	assert.Error(t, New(path).Load())
}

func TestSettersPersist(t *testing.T) {
	path := testConfigPath(t)
	cfg := New(path)
	require.NoError(t, cfg.Load())

	vadCfg := vad.DefaultConfig()
	vadCfg.MarginDB = 15
	require.NoError(t, cfg.SetAudioInput("hw:2,0"))
	require.NoError(t, cfg.SetVADConfig(vadCfg))
	require.NoError(t, cfg.SetRoundConfig(RoundConfig{RoundTimeMs: 8000, AutoStart: false}))
	require.NoError(t, cfg.SetWebhookURL("https://hooks.example.com/game"))

	reloaded := New(path)
	require.NoError(t, reloaded.Load())

	snap := reloaded.Snapshot()
	assert.Equal(t, "hw:2,0", snap.AudioInput)
	assert.Equal(t, float64(15), snap.VAD.MarginDB)
	assert.Equal(t, int64(8000), snap.RoundTimeMs)
	assert.False(t, snap.AutoStart)
	assert.Equal(t, "https://hooks.example.com/game", snap.WebhookURL)
	assert.True(t, snap.HasWebhook())
}

func TestSetLogPathValidates(t *testing.T) {
	cfg := New(testConfigPath(t))
	require.NoError(t, cfg.Load())

	assert.Error(t, cfg.SetLogPath("../escape/events.log"))
	assert.Error(t, cfg.SetLogPath("logs/../../events.log"))

	logPath := filepath.Join(t.TempDir(), "events.log")
	require.NoError(t, cfg.SetLogPath(logPath))
	assert.Equal(t, logPath, cfg.LogPath())

	// Empty path disables logging and skips validation.
	require.NoError(t, cfg.SetLogPath(""))
	assert.Empty(t, cfg.LogPath())
}

func TestSavedFileOmitsInternalFields(t *testing.T) {
	path := testConfigPath(t)
	cfg := New(path)
	require.NoError(t, cfg.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "system")
	assert.Contains(t, raw, "vad")
	assert.NotContains(t, raw, "filePath")
}
