package recording

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacknao/echotower/internal/audio"
	"github.com/hacknao/echotower/internal/vad"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	capture := audio.NewCaptureSession("default", "", 10*time.Second)
	detector := vad.NewDetector(vad.DefaultConfig())
	return NewController(capture, detector, true)
}

// beginSession puts the controller into the listening state without spawning
// a capture process or poll loop.
func beginSession(c *Controller) {
	c.mu.Lock()
	c.listening = true
	c.finalized = false
	c.startedAt = time.Now()
	c.stopChan = make(chan struct{})
	c.mu.Unlock()
}

func TestStopListeningWithoutSession(t *testing.T) {
	c := newTestController(t)
	assert.Nil(t, c.StopListening())
	assert.False(t, c.Listening())
}

func TestStopListeningTwice(t *testing.T) {
	c := newTestController(t)
	beginSession(c)

	assert.Nil(t, c.StopListening(), "nothing buffered")
	assert.False(t, c.Listening())

	// The second call must be a silent no-op.
	assert.Nil(t, c.StopListening())
	assert.False(t, c.Listening())
}

func TestFinalizeExactlyOnce(t *testing.T) {
	c := newTestController(t)
	beginSession(c)

	_, ok := c.finalize(StopManual)
	require.True(t, ok)

	_, ok = c.finalize(StopManual)
	assert.False(t, ok)
	_, ok = c.finalize(StopAuto)
	assert.False(t, ok)
}

func TestFinalizeSingleWinnerUnderRace(t *testing.T) {
	c := newTestController(t)
	beginSession(c)

	const racers = 8
	wins := make(chan bool, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		reason := StopManual
		if i%2 == 0 {
			reason = StopAuto
		}
		wg.Add(1)
		go func(r StopReason) {
			defer wg.Done()
			_, ok := c.finalize(r)
			wins <- ok
		}(reason)
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one path may finalize the session")
	assert.False(t, c.Listening())
}

func TestAutoStopFiresCompletionOnce(t *testing.T) {
	c := newTestController(t)

	var mu sync.Mutex
	calls := 0
	c.SetCompletionHandler(func(Result) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	beginSession(c)
	event := vad.Event{AutoStop: true, Reason: vad.StopSilence, SpeechMs: 500}
	c.autoStop(event)
	c.autoStop(event)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestManualStopSuppressesAutoStop(t *testing.T) {
	c := newTestController(t)

	var mu sync.Mutex
	calls := 0
	c.SetCompletionHandler(func(Result) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	beginSession(c)
	c.StopListening()
	c.autoStop(vad.Event{AutoStop: true, Reason: vad.StopSilence})

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls, "completion must not fire after a manual stop")
}

func TestTeardownIdle(t *testing.T) {
	c := newTestController(t)
	c.Teardown()
	c.Teardown()
	assert.False(t, c.Listening())
}
