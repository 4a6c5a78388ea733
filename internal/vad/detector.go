// Package vad implements adaptive energy-threshold voice activity detection.
//
// The detector consumes one dB level reading per polling period, maintains a
// noise-floor estimate from the quietest portion of a rolling window, and
// reports when an utterance has ended: either enough trailing silence after
// real speech, or the hard recording ceiling. Absence of speech is not an
// error; a silent round simply runs into the ceiling.
package vad

import (
	"sort"
	"sync"
	"time"
)

// Detection window parameters. The window holds ~5s of history at the 100ms
// polling period; the floor needs ~2s of samples before it starts adapting.
const (
	windowSize         = 50
	minSamplesForFloor = 20
	floorFraction      = 0.3
)

// Config holds the tunable thresholds for speech detection.
// The numeric defaults mirror the browser prototype but are not load-bearing;
// they are exposed through the application config.
type Config struct {
	// NoiseFloorDB is the initial noise-floor estimate before the rolling
	// window has enough samples to adapt.
	NoiseFloorDB float64 `json:"noise_floor_db"`
	// MarginDB is added to the noise floor to form the speech threshold.
	MarginDB float64 `json:"margin_db"`
	// MinSpeechMs is the minimum speech duration before auto-stop may trigger.
	MinSpeechMs int64 `json:"min_speech_ms"`
	// MaxSilenceMs is the trailing silence that ends an utterance.
	MaxSilenceMs int64 `json:"max_silence_ms"`
	// MaxRecordingMs is the hard ceiling for a single recording.
	MaxRecordingMs int64 `json:"max_recording_ms"`
}

// DefaultConfig returns the detection defaults.
func DefaultConfig() Config {
	return Config{
		NoiseFloorDB:   -40.0,
		MarginDB:       12.0,
		MinSpeechMs:    300,
		MaxSilenceMs:   2000,
		MaxRecordingMs: 10000,
	}
}

// StopReason explains why the detector signalled auto-stop.
type StopReason string

const (
	// StopSilence indicates enough trailing silence followed real speech.
	StopSilence StopReason = "silence"
	// StopCeiling indicates the hard recording time limit was reached.
	StopCeiling StopReason = "ceiling"
)

// Event is the result of feeding one level sample to the detector.
type Event struct {
	// LevelDB is the sampled level.
	LevelDB float64
	// NoiseFloorDB is the current adaptive noise-floor estimate.
	NoiseFloorDB float64
	// ThresholdDB is the current speech threshold (floor + margin).
	ThresholdDB float64
	// Speech reports whether this sample was classified as speech.
	Speech bool
	// SpeechStarted is true on the first speech sample of an utterance.
	SpeechStarted bool
	// SpeechMs is the speech duration so far (0 before speech starts).
	SpeechMs int64
	// SilenceMs is the trailing silence duration (0 while speech is active).
	SilenceMs int64
	// AutoStop is true when the utterance is complete and recording should end.
	AutoStop bool
	// Reason is set when AutoStop is true.
	Reason StopReason
}

// Detector tracks speech activity for one recording session.
// It is safe for concurrent use.
type Detector struct {
	mu  sync.Mutex
	cfg Config

	window     []float64
	noiseFloor float64

	startedAt   time.Time // when the current recording began
	speechStart time.Time // first sample above threshold
	lastActive  time.Time // most recent sample above threshold
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg:        cfg,
		window:     make([]float64, 0, windowSize),
		noiseFloor: cfg.NoiseFloorDB,
	}
}

// SetConfig replaces the detection thresholds. The rolling window survives so
// the noise floor keeps adapting; the speech interval is cleared.
func (d *Detector) SetConfig(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
	d.speechStart = time.Time{}
	d.lastActive = time.Time{}
}

// Config returns the current detection thresholds.
func (d *Detector) Config() Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Begin marks the start of a new recording. The speech interval is cleared;
// the rolling window is kept so the floor stays adapted to the room.
func (d *Detector) Begin(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startedAt = now
	d.speechStart = time.Time{}
	d.lastActive = time.Time{}
}

// Reset clears all detection state including the rolling window.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.window = d.window[:0]
	d.noiseFloor = d.cfg.NoiseFloorDB
	d.startedAt = time.Time{}
	d.speechStart = time.Time{}
	d.lastActive = time.Time{}
}

// NoiseFloor returns the current adaptive noise-floor estimate in dB.
func (d *Detector) NoiseFloor() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.noiseFloor
}

// Sample feeds one level reading into the detector and returns the resulting
// detection event. Call once per polling period while recording.
func (d *Detector) Sample(levelDB float64, now time.Time) Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pushLevel(levelDB)

	threshold := d.noiseFloor + d.cfg.MarginDB
	event := Event{
		LevelDB:      levelDB,
		NoiseFloorDB: d.noiseFloor,
		ThresholdDB:  threshold,
	}

	if levelDB > threshold {
		event.Speech = true
		if d.speechStart.IsZero() {
			d.speechStart = now
			event.SpeechStarted = true
		}
		d.lastActive = now
		event.SpeechMs = d.lastActive.Sub(d.speechStart).Milliseconds()
	} else if !d.speechStart.IsZero() && !d.lastActive.IsZero() {
		silenceMs := now.Sub(d.lastActive).Milliseconds()
		speechMs := d.lastActive.Sub(d.speechStart).Milliseconds()
		event.SilenceMs = silenceMs
		event.SpeechMs = speechMs

		if silenceMs > d.cfg.MaxSilenceMs && speechMs > d.cfg.MinSpeechMs {
			event.AutoStop = true
			event.Reason = StopSilence
		}
	}

	// Hard ceiling fires regardless of speech state: a silent round must
	// still terminate, and an endless utterance must still be cut off.
	if !d.startedAt.IsZero() && now.Sub(d.startedAt).Milliseconds() >= d.cfg.MaxRecordingMs {
		event.AutoStop = true
		event.Reason = StopCeiling
	}

	return event
}

// pushLevel appends to the bounded rolling window and recomputes the noise
// floor once enough history exists. Must be called with d.mu held.
func (d *Detector) pushLevel(levelDB float64) {
	d.window = append(d.window, levelDB)
	if len(d.window) > windowSize {
		d.window = d.window[1:]
	}

	if len(d.window) < minSamplesForFloor {
		return
	}

	sorted := make([]float64, len(d.window))
	copy(sorted, d.window)
	sort.Float64s(sorted)

	n := int(float64(len(sorted)) * floorFraction)
	if n == 0 {
		n = 1
	}
	var sum float64
	for _, v := range sorted[:n] {
		sum += v
	}
	d.noiseFloor = sum / float64(n)
}
