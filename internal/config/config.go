// Package config provides application configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/hacknao/echotower/internal/recording"
	"github.com/hacknao/echotower/internal/scorer"
	"github.com/hacknao/echotower/internal/util"
	"github.com/hacknao/echotower/internal/vad"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultWebPort       = 8080
	DefaultWebUsername   = "admin"
	DefaultWebPassword   = "echotower"
	DefaultGameTitle     = "ECHO TOWER"
	DefaultRoundTimeMs   = 10000
	DefaultScorerTimeout = 15000
)

// Game title: printable characters only, no control chars.
var gameTitlePattern = regexp.MustCompile(`^[^\x00-\x1F\x7F]+$`)

// SystemConfig holds system-level settings that require restart.
type SystemConfig struct {
	FFmpegPath string `json:"ffmpeg_path"` // Path to FFmpeg binary (empty = use PATH)
	Port       int    `json:"port"`        // HTTP server port
	Username   string `json:"username"`    // Login username
	Password   string `json:"password"`    // Login password
}

// WebConfig holds UI branding settings.
type WebConfig struct {
	GameTitle string `json:"game_title"` // Title shown on the splash and menu screens
}

// AudioConfig holds audio input device settings.
type AudioConfig struct {
	Input string `json:"input"` // Audio input device identifier
}

// RoundConfig holds round pacing settings.
type RoundConfig struct {
	RoundTimeMs int64 `json:"round_time_ms"` // Hard limit per round
	AutoStart   bool  `json:"auto_start"`    // Start listening as soon as a word is shown
}

// WebhookConfig holds webhook notification settings.
type WebhookConfig struct {
	URL string `json:"url"` // Webhook URL for game-over summaries
}

// LogConfig holds event log settings.
type LogConfig struct {
	Path string `json:"path"` // JSON-lines event log path
}

// NotificationsConfig holds all notification channel settings.
type NotificationsConfig struct {
	Webhook WebhookConfig `json:"webhook"` // Webhook settings
	Log     LogConfig     `json:"log"`     // Event log settings
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	System        SystemConfig        `json:"system"`
	Web           WebConfig           `json:"web"`
	Audio         AudioConfig         `json:"audio"`
	VAD           vad.Config          `json:"vad"`
	Round         RoundConfig         `json:"round"`
	Scorer        scorer.Config       `json:"scorer"`
	Archive       recording.S3Config  `json:"archive"`
	Notifications NotificationsConfig `json:"notifications"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		System: SystemConfig{
			Port:     DefaultWebPort,
			Username: DefaultWebUsername,
			Password: DefaultWebPassword,
		},
		Web: WebConfig{
			GameTitle: DefaultGameTitle,
		},
		VAD: vad.DefaultConfig(),
		Round: RoundConfig{
			RoundTimeMs: DefaultRoundTimeMs,
			AutoStart:   true,
		},
		filePath: filePath,
	}
}

// Load reads config from file, creating a default if none exists.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()

	return c.validate()
}

// validate checks all configuration fields for correctness.
func (c *Config) validate() error {
	title := c.Web.GameTitle
	if title == "" || len(title) > 30 || !gameTitlePattern.MatchString(title) {
		return fmt.Errorf("invalid game_title %q: must be 1-30 printable characters", title)
	}
	if c.Round.RoundTimeMs < 1000 {
		return fmt.Errorf("invalid round_time_ms %d: must be at least 1000", c.Round.RoundTimeMs)
	}
	if c.VAD.MarginDB <= 0 {
		return fmt.Errorf("invalid vad margin_db %v: must be positive", c.VAD.MarginDB)
	}
	return nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.System.Port == 0 {
		c.System.Port = DefaultWebPort
	}
	if c.System.Username == "" {
		c.System.Username = DefaultWebUsername
	}
	if c.System.Password == "" {
		c.System.Password = DefaultWebPassword
	}
	if c.Web.GameTitle == "" {
		c.Web.GameTitle = DefaultGameTitle
	}
	if c.Round.RoundTimeMs == 0 {
		c.Round.RoundTimeMs = DefaultRoundTimeMs
	}
	def := vad.DefaultConfig()
	c.VAD.NoiseFloorDB = cmpOr(c.VAD.NoiseFloorDB, def.NoiseFloorDB)
	c.VAD.MarginDB = cmpOr(c.VAD.MarginDB, def.MarginDB)
	c.VAD.MinSpeechMs = cmpOr(c.VAD.MinSpeechMs, def.MinSpeechMs)
	c.VAD.MaxSilenceMs = cmpOr(c.VAD.MaxSilenceMs, def.MaxSilenceMs)
	c.VAD.MaxRecordingMs = cmpOr(c.VAD.MaxRecordingMs, def.MaxRecordingMs)
	if c.Scorer.TimeoutMs == 0 {
		c.Scorer.TimeoutMs = DefaultScorerTimeout
	}
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// --- Getters for individual settings ---

// AudioInput returns the configured audio input device.
func (c *Config) AudioInput() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Audio.Input
}

// GetFFmpegPath returns the configured FFmpeg binary path.
func (c *Config) GetFFmpegPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.System.FFmpegPath
}

// LogPath returns the configured event log path.
func (c *Config) LogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications.Log.Path
}

// VADConfig returns a copy of the voice detection settings.
func (c *Config) VADConfig() vad.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.VAD
}

// RoundConfig returns a copy of the round pacing settings.
func (c *Config) RoundConfig() RoundConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Round
}

// ScorerConfig returns a copy of the scorer connection settings.
func (c *Config) ScorerConfig() scorer.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Scorer
}

// ArchiveConfig returns a copy of the S3 archive settings.
func (c *Config) ArchiveConfig() recording.S3Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Archive
}

// --- Setters for individual settings ---

// SetAudioInput updates the audio input device and saves the configuration.
func (c *Config) SetAudioInput(input string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Audio.Input = input
	return c.saveLocked()
}

// SetVADConfig updates the voice detection settings and saves the configuration.
func (c *Config) SetVADConfig(cfg vad.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.VAD = cfg
	return c.saveLocked()
}

// SetRoundConfig updates round pacing and saves the configuration.
func (c *Config) SetRoundConfig(cfg RoundConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Round = cfg
	return c.saveLocked()
}

// SetScorerConfig updates the scorer connection settings and saves the configuration.
func (c *Config) SetScorerConfig(cfg scorer.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Scorer = cfg
	return c.saveLocked()
}

// SetArchiveConfig updates the S3 archive settings and saves the configuration.
func (c *Config) SetArchiveConfig(cfg recording.S3Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Archive = cfg
	return c.saveLocked()
}

// SetWebhookURL updates the webhook URL and saves the configuration.
func (c *Config) SetWebhookURL(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Webhook.URL = url
	return c.saveLocked()
}

// SetLogPath updates the event log path and saves the configuration.
// An empty path disables event logging.
func (c *Config) SetLogPath(path string) error {
	if path != "" {
		if err := util.ValidatePath("log path", path); err != nil {
			return err
		}
		if err := util.CheckPathWritable(filepath.Dir(path)); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Log.Path = path
	return c.saveLocked()
}

// --- Snapshot for atomic reads ---

// Snapshot is a point-in-time copy of configuration values.
type Snapshot struct {
	// System
	WebPort     int
	WebUser     string
	WebPassword string

	// Web/Branding
	GameTitle string

	// Audio
	AudioInput string

	// Voice detection
	VAD vad.Config

	// Round pacing
	RoundTimeMs int64
	AutoStart   bool

	// Scorer
	Scorer scorer.Config

	// Archive
	Archive recording.S3Config

	// Notifications
	WebhookURL string
	LogPath    string
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		WebPort:     c.System.Port,
		WebUser:     c.System.Username,
		WebPassword: c.System.Password,
		GameTitle:   c.Web.GameTitle,
		AudioInput:  c.Audio.Input,
		VAD:         c.VAD,
		RoundTimeMs: cmpOr(c.Round.RoundTimeMs, int64(DefaultRoundTimeMs)),
		AutoStart:   c.Round.AutoStart,
		Scorer:      c.Scorer,
		Archive:     c.Archive,
		WebhookURL:  c.Notifications.Webhook.URL,
		LogPath:     c.Notifications.Log.Path,
	}
}

// HasWebhook reports whether a webhook URL is configured.
func (s *Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasLogPath reports whether an event log path is configured.
func (s *Snapshot) HasLogPath() bool {
	return s.LogPath != ""
}

// cmpOr returns the first of its arguments that is not the zero value.
// It matches the semantics of cmp.Or, which requires Go 1.22.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
