// Package recording binds the microphone capture session and the voice
// activity detector into a single "listen for one utterance" operation with
// optional S3 archival of finished utterances.
package recording

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hacknao/echotower/internal/audio"
	"github.com/hacknao/echotower/internal/types"
	"github.com/hacknao/echotower/internal/vad"
)

// PollPeriod is how often the controller samples the microphone level while
// listening. The VAD window sizing assumes this period.
const PollPeriod = 100 * time.Millisecond

// StopReason explains how a listening session ended.
type StopReason string

const (
	// StopAuto indicates the VAD ended the utterance.
	StopAuto StopReason = "auto"
	// StopManual indicates an explicit StopListening call.
	StopManual StopReason = "manual"
)

// Result is the outcome of one listening session.
type Result struct {
	// PCM is the captured utterance, nil when nothing was captured.
	PCM []byte
	// Reason is how the session ended.
	Reason StopReason
	// Detected is the final VAD event for diagnostics (zero for manual stops).
	Detected vad.Event
}

// CompletionFunc receives the finished recording when the VAD auto-stops.
type CompletionFunc func(Result)

// Controller drives the capture session and detector as one unit.
// Exactly one finished recording is produced per listening session: the VAD
// auto-stop and a manual stop are mutually exclusive, serialized by a single
// in-flight guard. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	capture  *audio.CaptureSession
	detector *vad.Detector

	// keepStreamOpen leaves the microphone acquired between utterances
	// (VAD mode); manual mode tears the stream down after each one.
	keepStreamOpen bool

	listening bool
	finalized bool
	stopChan  chan struct{}
	startedAt time.Time

	onComplete CompletionFunc
}

// NewController creates a controller over the given capture session and
// detector. keepStreamOpen selects the stream reuse policy across utterances.
func NewController(capture *audio.CaptureSession, detector *vad.Detector, keepStreamOpen bool) *Controller {
	return &Controller{
		capture:        capture,
		detector:       detector,
		keepStreamOpen: keepStreamOpen,
	}
}

// SetCompletionHandler registers the callback fired when the VAD ends a
// session. Replacing the handler mid-session is not supported.
func (c *Controller) SetCompletionHandler(fn CompletionFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComplete = fn
}

// Listening reports whether a listening session is active.
func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Detector returns the controller's voice activity detector.
func (c *Controller) Detector() *vad.Detector {
	return c.detector
}

// SetDevice changes the capture input device. Takes effect the next time
// the stream opens.
func (c *Controller) SetDevice(device string) {
	c.capture.SetDevice(device)
}

// CaptureState returns the state of the underlying microphone stream.
func (c *Controller) CaptureState() types.CaptureState {
	return c.capture.State()
}

// Levels returns the current microphone levels for the UI meter.
func (c *Controller) Levels() audio.Levels {
	return c.capture.Levels()
}

// StartListening opens (or reuses) the microphone, resets the speech
// interval, starts buffering and begins the sampling poll loop.
// It is an idempotent no-op when already listening.
// Returns types.ErrDeviceUnavailable when the microphone cannot be opened.
func (c *Controller) StartListening() error {
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// Open outside the lock: acquiring the device can block.
	if err := c.capture.Open(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listening {
		return nil
	}

	now := time.Now()
	c.detector.Begin(now)
	c.capture.StartBuffering()

	c.listening = true
	c.finalized = false
	c.startedAt = now
	c.stopChan = make(chan struct{})

	go c.pollLoop(c.stopChan)

	slog.Info("listening started")
	return nil
}

// StopListening ends the session manually and returns the captured audio,
// nil when nothing was captured or no session was active. Calling it twice
// in a row returns nil the second time. The completion callback does not
// fire for manual stops; the buffer goes to the caller instead.
func (c *Controller) StopListening() []byte {
	pcm, ok := c.finalize(StopManual)
	if !ok {
		return nil
	}
	return pcm
}

// pollLoop samples the microphone level at the poll period and feeds the
// detector until the session ends or the VAD signals auto-stop.
func (c *Controller) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(PollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			event := c.detector.Sample(c.capture.LevelDB(), now)
			if event.SpeechStarted {
				slog.Debug("speech started",
					"level_db", event.LevelDB, "threshold_db", event.ThresholdDB)
			}
			if event.AutoStop {
				c.autoStop(event)
				return
			}
		}
	}
}

// autoStop performs the same finalize sequence as StopListening, then fires
// the completion callback. The in-flight guard inside finalize makes this
// mutually exclusive with a concurrent manual stop.
func (c *Controller) autoStop(event vad.Event) {
	pcm, ok := c.finalize(StopAuto)
	if !ok {
		return
	}

	slog.Info("utterance auto-stopped",
		"reason", event.Reason,
		"speech_ms", event.SpeechMs,
		"silence_ms", event.SilenceMs,
		"captured_ms", audio.PCMDuration(pcm))

	c.mu.Lock()
	fn := c.onComplete
	c.mu.Unlock()

	if fn != nil {
		fn(Result{PCM: pcm, Reason: StopAuto, Detected: event})
	}
}

// finalize ends the active session exactly once. It reports false when no
// session is active or another path already finalized it.
// Any failure during finalization yields a nil buffer, never an error.
func (c *Controller) finalize(reason StopReason) ([]byte, bool) {
	c.mu.Lock()
	if !c.listening || c.finalized {
		c.mu.Unlock()
		return nil, false
	}
	c.finalized = true
	c.listening = false
	close(c.stopChan)

	pcm := c.capture.StopBuffering()
	keepOpen := c.keepStreamOpen
	startedAt := c.startedAt
	c.mu.Unlock()

	if !keepOpen {
		if err := c.capture.Close(); err != nil {
			slog.Warn("failed to close capture after utterance", "error", err)
		}
	}

	slog.Info("listening stopped",
		"reason", reason,
		"duration", time.Since(startedAt).Truncate(time.Millisecond),
		"captured_bytes", len(pcm))

	return pcm, true
}

// Teardown ends any active session and releases the microphone regardless of
// the stream reuse policy. Used on game reset and shutdown.
func (c *Controller) Teardown() {
	c.finalize(StopManual)
	if err := c.capture.Close(); err != nil {
		slog.Warn("failed to close capture on teardown", "error", err)
	}
}
