// Package types provides shared type definitions used across the game core.
package types

import "errors"

// Sentinel errors for the recording and scoring pipeline. All of these are
// handled inside the round layer; only ErrDeviceUnavailable is surfaced to
// the player.
var (
	// ErrDeviceUnavailable indicates the microphone could not be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrNoAudioCaptured indicates buffer finalization yielded no usable audio.
	ErrNoAudioCaptured = errors.New("no audio captured")
	// ErrScorerUnavailable indicates the pronunciation scorer failed or returned garbage.
	ErrScorerUnavailable = errors.New("pronunciation scorer unavailable")
	// ErrScorerTimeout indicates the scorer did not respond within the bounded wait.
	ErrScorerTimeout = errors.New("pronunciation scorer timed out")
	// ErrWordMismatch indicates a scorer result referenced a different target word.
	ErrWordMismatch = errors.New("scorer result does not match target word")
	// ErrDuplicateResult indicates a second resolution arrived after the round finished.
	ErrDuplicateResult = errors.New("round already resolved")
	// ErrRoundActive indicates a round start was requested while one is in progress.
	ErrRoundActive = errors.New("round already in progress")
	// ErrNotInGame indicates a round operation was requested outside an active game.
	ErrNotInGame = errors.New("no game in progress")
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`   // JSON path to the field (e.g., "vad.margin_db")
	Message string `json:"message"` // Human-readable error message
	Value   any    `json:"value"`   // The invalid value that was provided
}

// ValidationError collects multiple field validation errors.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationError creates a new empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{
		Errors: make([]FieldError, 0),
	}
}

// Add adds a field error to the collection.
func (v *ValidationError) Add(field, message string, value any) {
	v.Errors = append(v.Errors, FieldError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}
