package types

import "time"

// CaptureState represents the current state of the microphone capture session.
type CaptureState string

const (
	// CaptureClosed indicates no capture process is running.
	CaptureClosed CaptureState = "closed"
	// CaptureOpening indicates the capture process is starting up.
	CaptureOpening CaptureState = "opening"
	// CaptureOpen indicates the microphone stream is live.
	CaptureOpen CaptureState = "open"
	// CaptureClosing indicates the capture process is shutting down.
	CaptureClosing CaptureState = "closing"
)

// RoundState represents the lifecycle state of the active round.
type RoundState string

const (
	// RoundWaiting indicates the round is waiting for the player to start.
	RoundWaiting RoundState = "waiting"
	// RoundListening indicates the VAD is listening for an utterance.
	RoundListening RoundState = "listening"
	// RoundProcessing indicates captured audio is being scored.
	RoundProcessing RoundState = "processing"
	// RoundFinished indicates the round resolved and the outcome is on display.
	RoundFinished RoundState = "finished"
)

// Outcome classifies a resolved round by pronunciation accuracy.
type Outcome string

const (
	// OutcomePerfect is accuracy >= 85%: two damage, triple score.
	OutcomePerfect Outcome = "perfect"
	// OutcomeSuccess is accuracy in [60%, 85%): one damage, base score.
	OutcomeSuccess Outcome = "success"
	// OutcomeFail is accuracy < 60%: the enemy strikes back.
	OutcomeFail Outcome = "fail"
)

const (
	// CaptureShutdownTimeout is how long to wait for the capture process to exit.
	CaptureShutdownTimeout = 5000 * time.Millisecond
	// InitialRetryDelay is the starting delay between archive upload attempts.
	InitialRetryDelay = 3000 * time.Millisecond
	// MaxRetryDelay is the maximum delay between archive upload attempts.
	MaxRetryDelay = 60000 * time.Millisecond
)
