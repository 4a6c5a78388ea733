package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/hacknao/echotower/internal/types"
	"github.com/hacknao/echotower/internal/util"
)

// ErrNoAudioDevice is returned when no audio input device is available.
var ErrNoAudioDevice = errors.New("no audio input device found")

// chunkBytes is one metering period of S16LE mono PCM (100ms at 16kHz).
const chunkBytes = SampleRate * BytesPerSample / 10

// CaptureConfig defines platform-specific audio capture configuration.
type CaptureConfig struct {
	// Command is the executable name (e.g., "arecord", "ffmpeg").
	Command string

	// DefaultDevice is used when no device is configured.
	DefaultDevice string

	// UsesFFmpeg indicates if this platform uses FFmpeg for capture.
	UsesFFmpeg bool

	// BuildArgs returns the command arguments for audio capture.
	// The device parameter is the audio input device identifier.
	BuildArgs func(device string) []string
}

// BuildCaptureCommand returns the command and arguments for microphone capture.
// If device is empty, it attempts to use the default or auto-detect.
// The ffmpegPath parameter is used on platforms that use FFmpeg for capture.
func BuildCaptureCommand(device, ffmpegPath string) (cmd string, args []string, err error) {
	cfg := getPlatformConfig()

	if device == "" {
		device = cfg.DefaultDevice
	}

	// Auto-detect if still empty (Windows has no safe default).
	if device == "" {
		devices := Devices()
		if len(devices) == 0 {
			return "", nil, ErrNoAudioDevice
		}
		device = devices[0].ID
	}

	// Use provided ffmpegPath on platforms that use FFmpeg for capture
	command := cfg.Command
	if cfg.UsesFFmpeg && ffmpegPath != "" {
		command = ffmpegPath
	}

	return command, cfg.BuildArgs(device), nil
}

// CaptureSession owns the exclusive microphone stream for one player.
// It spawns the platform capture process, meters the live level at a fixed
// period, and accumulates one utterance at a time into an internal buffer.
// The stream stays open across consecutive utterances so the hardware is
// acquired once per game, not once per word.
// It is safe for concurrent use.
type CaptureSession struct {
	mu sync.Mutex

	device     string
	ffmpegPath string

	state  types.CaptureState
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr *bytes.Buffer
	done   chan struct{}

	level     Level
	peak      *PeakHolder
	buffering bool
	utterance bytes.Buffer
	maxBytes  int
	lastError string
}

// NewCaptureSession creates a capture session for the given input device.
// maxUtterance bounds how much audio a single utterance buffer may hold.
func NewCaptureSession(device, ffmpegPath string, maxUtterance time.Duration) *CaptureSession {
	maxBytes := int(maxUtterance.Seconds() * SampleRate * BytesPerSample)
	if maxBytes <= 0 {
		maxBytes = 15 * SampleRate * BytesPerSample
	}
	return &CaptureSession{
		device:     device,
		ffmpegPath: ffmpegPath,
		state:      types.CaptureClosed,
		peak:       NewPeakHolder(),
		maxBytes:   maxBytes,
		level:      Level{RMS: MinDB, Peak: MinDB},
	}
}

// SetDevice changes the input device. Takes effect on the next Open.
func (s *CaptureSession) SetDevice(device string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = device
}

// Open acquires the microphone stream. It is a no-op when the stream is
// already live, so consecutive utterances reuse the same process.
// Returns types.ErrDeviceUnavailable when the capture process cannot start.
func (s *CaptureSession) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == types.CaptureOpen || s.state == types.CaptureOpening {
		return nil
	}

	cmdName, args, err := BuildCaptureCommand(s.device, s.ffmpegPath)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrDeviceUnavailable, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cmdName, args...)

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("%w: stdout pipe: %w", types.ErrDeviceUnavailable, err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("%w: start %s: %w", types.ErrDeviceUnavailable, cmdName, err)
	}

	s.cmd = cmd
	s.cancel = cancel
	s.stdout = stdout
	s.stderr = stderr
	s.state = types.CaptureOpen
	s.lastError = ""
	s.done = make(chan struct{})
	s.peak.Reset()

	go s.readLoop(cmd, stdout, s.done)

	slog.Info("microphone opened", "command", cmdName, "device", s.device)
	return nil
}

// Close releases the microphone stream and all associated resources.
// Safe to call multiple times; closing a closed session is a no-op.
func (s *CaptureSession) Close() error {
	s.mu.Lock()

	if s.state == types.CaptureClosed || s.state == types.CaptureClosing {
		s.mu.Unlock()
		return nil
	}

	s.state = types.CaptureClosing
	process := s.cmd
	cancel := s.cancel
	done := s.done
	s.buffering = false
	s.utterance.Reset()
	s.mu.Unlock()

	if process != nil && process.Process != nil {
		if err := util.GracefulSignal(process.Process); err != nil {
			slog.Warn("failed to signal capture process", "error", err)
		}
	}

	select {
	case <-done:
	case <-time.After(types.CaptureShutdownTimeout):
		slog.Warn("capture process did not stop in time, forcing kill")
		if cancel != nil {
			cancel()
		}
		<-done
	}

	s.mu.Lock()
	s.cmd = nil
	s.cancel = nil
	s.stdout = nil
	s.state = types.CaptureClosed
	s.level = Level{RMS: MinDB, Peak: MinDB}
	s.mu.Unlock()

	slog.Info("microphone closed", "device", s.device)
	return nil
}

// IsOpen reports whether the microphone stream is live.
func (s *CaptureSession) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == types.CaptureOpen
}

// State returns the current capture state.
func (s *CaptureSession) State() types.CaptureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the last capture error message, empty when healthy.
func (s *CaptureSession) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// StartBuffering begins accumulating PCM into a fresh utterance buffer.
func (s *CaptureSession) StartBuffering() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.utterance.Reset()
	s.buffering = true
}

// StopBuffering finalizes the current utterance and returns the captured PCM.
// Returns nil when nothing was captured. The buffer is cleared either way.
func (s *CaptureSession) StopBuffering() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffering = false
	if s.utterance.Len() == 0 {
		return nil
	}
	data := make([]byte, s.utterance.Len())
	copy(data, s.utterance.Bytes())
	s.utterance.Reset()
	return data
}

// Levels returns the most recent level measurement with peak hold applied.
func (s *CaptureSession) Levels() Levels {
	s.mu.Lock()
	level := s.level
	state := s.state
	s.mu.Unlock()

	if state != types.CaptureOpen {
		return Levels{RMS: MinDB, Peak: MinDB}
	}
	held := s.peak.Update(level.Peak, time.Now())
	return Levels{RMS: level.RMS, Peak: held, Clip: level.Clip}
}

// LevelDB returns the most recent rolling RMS level in dB.
func (s *CaptureSession) LevelDB() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != types.CaptureOpen {
		return MinDB
	}
	return s.level.RMS
}

// readLoop consumes PCM from the capture process in 100ms chunks, updating
// the level meter every chunk and appending to the utterance buffer while
// buffering is on. Exits when the process stops producing data.
func (s *CaptureSession) readLoop(cmd *exec.Cmd, stdout io.Reader, done chan struct{}) {
	defer close(done)
	defer func() {
		_ = cmd.Wait() // reap the capture process
	}()

	buf := make([]byte, chunkBytes)
	var data LevelData

	for {
		n, err := io.ReadFull(stdout, buf)
		if n > 0 {
			data.Reset()
			ProcessSamples(buf, n, &data)
			level := CalculateLevel(&data)

			s.mu.Lock()
			s.level = level
			if s.buffering && s.utterance.Len() < s.maxBytes {
				remain := s.maxBytes - s.utterance.Len()
				if n > remain {
					n = remain
				}
				s.utterance.Write(buf[:n])
			}
			s.mu.Unlock()
		}
		if err != nil {
			s.handleReadEnd(err)
			return
		}
	}
}

// handleReadEnd records why the capture stream ended.
func (s *CaptureSession) handleReadEnd(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Expected during Close; only an unexpected exit is an error.
	if s.state == types.CaptureClosing || s.state == types.CaptureClosed {
		return
	}

	msg := err.Error()
	if s.stderr != nil {
		if line := util.ExtractLastError(s.stderr.String()); line != "" {
			msg = line
		}
	}
	s.lastError = msg
	s.state = types.CaptureClosed
	s.buffering = false
	s.level = Level{RMS: MinDB, Peak: MinDB}
	slog.Error("capture stream ended unexpectedly", "device", s.device, "error", msg)
}
