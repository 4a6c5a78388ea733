package server

// Request types for WebSocket commands with validation tags.
// These types define the expected input for each command and use
// go-playground/validator struct tags for automatic validation.

// --- Round control ---

// RoundUpdateRequest is the request body for round/update.
type RoundUpdateRequest struct {
	RoundTimeMs *int64 `json:"round_time_ms" validate:"omitempty,gte=1000,lte=120000"`
	AutoStart   *bool  `json:"auto_start"`
}

// SubmitScoreRequest is the request body for round/submit-score. It carries
// an externally produced pronunciation result in the scorer wire shape.
type SubmitScoreRequest struct {
	TotalScore float64            `json:"total_score" validate:"gte=0,lte=1"`
	TextRefs   string             `json:"text_refs" validate:"omitempty,max=64"`
	Result     []SubmitWordResult `json:"result" validate:"omitempty,dive"`
}

// SubmitWordResult is the per-word breakdown inside SubmitScoreRequest.
type SubmitWordResult struct {
	Word    string              `json:"word" validate:"required,max=64"`
	Letters []SubmitLetterScore `json:"letters" validate:"omitempty,dive"`
}

// SubmitLetterScore is one letter score inside SubmitWordResult.
type SubmitLetterScore struct {
	Letter string  `json:"letter" validate:"required,max=8"`
	Score  float64 `json:"score" validate:"gte=0,lte=1"`
}

// --- Audio settings ---

// AudioUpdateRequest is the request body for audio/update.
type AudioUpdateRequest struct {
	Input string `json:"input" validate:"omitempty,max=256"`
}

// --- Voice detection settings ---

// VADUpdateRequest is the request body for vad/update.
type VADUpdateRequest struct {
	NoiseFloorDB   *float64 `json:"noise_floor_db" validate:"omitempty,gte=-90,lte=0"`
	MarginDB       *float64 `json:"margin_db" validate:"omitempty,gte=1,lte=40"`
	MinSpeechMs    *int64   `json:"min_speech_ms" validate:"omitempty,gte=50,lte=5000"`
	MaxSilenceMs   *int64   `json:"max_silence_ms" validate:"omitempty,gte=200,lte=10000"`
	MaxRecordingMs *int64   `json:"max_recording_ms" validate:"omitempty,gte=1000,lte=60000"`
}

// --- Scorer settings ---

// ScorerUpdateRequest is the request body for scorer/update.
type ScorerUpdateRequest struct {
	URL          string `json:"url" validate:"omitempty,url,max=2048"`
	TimeoutMs    *int64 `json:"timeout_ms" validate:"omitempty,gte=1000,lte=60000"`
	ClientID     string `json:"client_id" validate:"omitempty,max=128"`
	ClientSecret string `json:"client_secret" validate:"omitempty,max=500"`
	TokenURL     string `json:"token_url" validate:"omitempty,url,max=2048"`
}

// --- Archive settings ---

// ArchiveUpdateRequest is the request body for archive/update.
type ArchiveUpdateRequest struct {
	Endpoint        string `json:"endpoint" validate:"omitempty,max=2048"`
	Bucket          string `json:"bucket" validate:"omitempty,max=63"`
	AccessKeyID     string `json:"access_key_id" validate:"omitempty,max=128"`
	SecretAccessKey string `json:"secret_access_key" validate:"omitempty,max=256"`
}

// S3TestRequest is the request body for archive/test-s3.
type S3TestRequest struct {
	Endpoint  string `json:"endpoint" validate:"omitempty,max=2048"`
	Bucket    string `json:"bucket" validate:"required,max=63"`
	AccessKey string `json:"access_key_id" validate:"required,max=128"`
	SecretKey string `json:"secret_access_key" validate:"required,max=256"`
}

// --- Notification settings ---

// WebhookUpdateRequest is the request body for notifications/webhook/update.
type WebhookUpdateRequest struct {
	URL string `json:"url" validate:"omitempty,url,max=2048"`
}

// LogUpdateRequest is the request body for notifications/log/update.
type LogUpdateRequest struct {
	Path string `json:"path" validate:"omitempty,max=4096"`
}
