// Package events writes a JSON-lines log of game events for later review.
package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of game event.
type EventType string

const (
	EventGameStarted   EventType = "game_started"
	EventRoundStarted  EventType = "round_started"
	EventRoundResolved EventType = "round_resolved"
	EventDiscarded     EventType = "discarded"
	EventGameOver      EventType = "game_over"
	EventError         EventType = "error"
)

// GameEvent represents a single game event.
type GameEvent struct {
	Timestamp time.Time `json:"ts"`
	SessionID string    `json:"session_id"`
	Event     EventType `json:"event"`
	Word      string    `json:"word,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Floor     int       `json:"floor,omitempty"`
	Score     int       `json:"score,omitempty"`
	Message   string    `json:"msg,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger writes game events to a JSON lines file.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
	encoder  *json.Encoder
}

// NewLogger creates a new event logger.
func NewLogger(filePath string) (*Logger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return &Logger{
		filePath: filePath,
		file:     file,
		encoder:  json.NewEncoder(file),
	}, nil
}

// Log writes an event to the log file.
func (l *Logger) Log(event *GameEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return l.encoder.Encode(event)
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Path returns the path to the log file.
func (l *Logger) Path() string {
	return l.filePath
}

// ReadLast reads the last n events from the log file, newest first.
func ReadLast(filePath string, n int) ([]GameEvent, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []GameEvent{}, nil
		}
		return nil, err
	}
	defer file.Close() //nolint:errcheck // Read-only operation, close error not critical

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	start := 0
	if len(lines) > n {
		start = len(lines) - n
	}
	lines = lines[start:]

	events := make([]GameEvent, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		var event GameEvent
		if err := json.Unmarshal([]byte(lines[i]), &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	return events, nil
}
