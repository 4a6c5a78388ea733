package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hacknao/echotower/internal/audio"
	"github.com/hacknao/echotower/internal/events"
	"github.com/hacknao/echotower/internal/server"
	"github.com/hacknao/echotower/internal/types"
	"github.com/hacknao/echotower/internal/words"
)

// API response helpers

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// requireMethod reports whether the request uses the expected method,
// writing an error response when it does not.
func (s *Server) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// handleAPIStatus returns the same status view the WebSocket pushes.
// GET /api/status
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.buildWSStatus())
}

// handleAPIScorecard returns the scorecard of the current or finished game.
// GET /api/scorecard
func (s *Server) handleAPIScorecard(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.Scorecard())
}

// handleAPIEvents returns recent game events from the event log, newest first.
// GET /api/events?limit=N
func (s *Server) handleAPIEvents(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	path := s.config.LogPath()
	if path == "" {
		s.writeError(w, http.StatusNotFound, "Event log not configured")
		return
	}

	limit := server.MaxLogEntries
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, server.MaxLogEntries)
	}

	entries, err := events.ReadLast(path, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleAPIWords returns the word table, optionally filtered by floor.
// GET /api/words?floor=N
func (s *Server) handleAPIWords(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	list := words.All()
	if raw := r.URL.Query().Get("floor"); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil || floor < 1 {
			s.writeError(w, http.StatusBadRequest, "floor must be a positive integer")
			return
		}
		list = words.AtOrBelow(words.DifficultyForFloor(floor))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"words": list})
}

// handleAPIDevices returns the available audio input devices.
// GET /api/devices
func (s *Server) handleAPIDevices(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"devices": audio.Devices()})
}

// handleAPIGameStart starts a new climb.
// POST /api/game/start
func (s *Server) handleAPIGameStart(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.session.StartGame(); err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleAPIGameReset aborts the current game and returns to the menu.
// POST /api/game/reset
func (s *Server) handleAPIGameReset(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	s.session.Reset()
	s.writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleAPIRoundStart begins listening for the current word.
// POST /api/round/start
func (s *Server) handleAPIRoundStart(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.session.StartRound(); err != nil {
		status := http.StatusConflict
		if errors.Is(err, types.ErrDeviceUnavailable) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleAPIRoundStop ends the utterance early and submits whatever was heard.
// POST /api/round/stop
func (s *Server) handleAPIRoundStop(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	s.session.StopRound()
	s.writeJSON(w, http.StatusOK, s.session.Snapshot())
}
