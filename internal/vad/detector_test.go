package vad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		NoiseFloorDB:   -40.0,
		MarginDB:       12.0,
		MinSpeechMs:    300,
		MaxSilenceMs:   2000,
		MaxRecordingMs: 10000,
	}
}

func TestSampleClassifiesSpeech(t *testing.T) {
	d := NewDetector(testConfig())
	t0 := time.Now()
	d.Begin(t0)

	// Threshold is floor(-40) + margin(12) = -28.
	ev := d.Sample(-35, t0)
	assert.False(t, ev.Speech)
	assert.Equal(t, -28.0, ev.ThresholdDB)

	ev = d.Sample(-20, t0.Add(100*time.Millisecond))
	assert.True(t, ev.Speech)
	assert.True(t, ev.SpeechStarted)

	ev = d.Sample(-18, t0.Add(200*time.Millisecond))
	assert.True(t, ev.Speech)
	assert.False(t, ev.SpeechStarted, "only the first speech sample starts the utterance")
	assert.Equal(t, int64(100), ev.SpeechMs)
}

func TestAutoStopOnTrailingSilence(t *testing.T) {
	d := NewDetector(testConfig())
	t0 := time.Now()
	d.Begin(t0)

	// 500ms of speech, comfortably past MinSpeechMs.
	for i := 0; i < 6; i++ {
		d.Sample(-15, t0.Add(time.Duration(i)*100*time.Millisecond))
	}

	// Trailing silence accumulates but must exceed MaxSilenceMs.
	ev := d.Sample(-50, t0.Add(2400*time.Millisecond))
	require.False(t, ev.AutoStop)
	assert.Equal(t, int64(1900), ev.SilenceMs)

	ev = d.Sample(-50, t0.Add(2600*time.Millisecond))
	require.True(t, ev.AutoStop)
	assert.Equal(t, StopSilence, ev.Reason)
	assert.Equal(t, int64(500), ev.SpeechMs)
}

func TestNoAutoStopForShortSpeech(t *testing.T) {
	d := NewDetector(testConfig())
	t0 := time.Now()
	d.Begin(t0)

	// 200ms of speech is below MinSpeechMs, so silence never ends it.
	d.Sample(-15, t0)
	d.Sample(-15, t0.Add(200*time.Millisecond))

	ev := d.Sample(-50, t0.Add(5*time.Second))
	assert.False(t, ev.AutoStop)
}

func TestCeilingStopsSilentRound(t *testing.T) {
	d := NewDetector(testConfig())
	t0 := time.Now()
	d.Begin(t0)

	ev := d.Sample(-50, t0.Add(9900*time.Millisecond))
	require.False(t, ev.AutoStop)

	ev = d.Sample(-50, t0.Add(10*time.Second))
	require.True(t, ev.AutoStop)
	assert.Equal(t, StopCeiling, ev.Reason)
}

func TestNoiseFloorAdaptsToRoom(t *testing.T) {
	d := NewDetector(testConfig())
	t0 := time.Now()
	d.Begin(t0)

	// Until the window has enough history, the configured floor holds.
	for i := 0; i < minSamplesForFloor-1; i++ {
		d.Sample(-60, t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	assert.Equal(t, -40.0, d.NoiseFloor())

	d.Sample(-60, t0.Add(2*time.Second))
	assert.InDelta(t, -60.0, d.NoiseFloor(), 0.001)
}

func TestBeginKeepsWindow(t *testing.T) {
	d := NewDetector(testConfig())
	t0 := time.Now()
	d.Begin(t0)

	for i := 0; i < windowSize; i++ {
		d.Sample(-55, t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	adapted := d.NoiseFloor()
	require.InDelta(t, -55.0, adapted, 0.001)

	// A new recording keeps the adapted floor; a full reset discards it.
	d.Begin(t0.Add(time.Minute))
	assert.Equal(t, adapted, d.NoiseFloor())

	d.Reset()
	assert.Equal(t, -40.0, d.NoiseFloor())
}

func TestSetConfigClearsSpeechInterval(t *testing.T) {
	d := NewDetector(testConfig())
	t0 := time.Now()
	d.Begin(t0)

	for i := 0; i < 6; i++ {
		d.Sample(-15, t0.Add(time.Duration(i)*100*time.Millisecond))
	}

	d.SetConfig(testConfig())

	// The old speech interval must not satisfy the silence rule anymore.
	ev := d.Sample(-50, t0.Add(10*time.Second-time.Millisecond))
	assert.False(t, ev.AutoStop)
}
