package main

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/hacknao/echotower/internal/audio"
	"github.com/hacknao/echotower/internal/config"
	"github.com/hacknao/echotower/internal/game"
	"github.com/hacknao/echotower/internal/recording"
	"github.com/hacknao/echotower/internal/server"
	"github.com/hacknao/echotower/internal/types"
	"github.com/hacknao/echotower/internal/vad"
)

var loginTmpl = template.Must(template.New("login").Parse(loginHTML))
var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type loginData struct {
	Error     bool
	CSRFToken string
	Version   string
	Year      int
	GameTitle string
}

type indexData struct {
	Version   string
	Year      int
	GameTitle string
}

// wsSettings carries static client settings inside a status payload.
type wsSettings struct {
	AudioInput string `json:"audio_input"`
	Platform   string `json:"platform"`
}

// wsStatus is the periodic status payload pushed over the WebSocket.
type wsStatus struct {
	Type             string             `json:"type"` // "status"
	FFmpegAvailable  bool               `json:"ffmpeg_available"`
	GameTitle        string             `json:"game_title"`
	Game             game.Snapshot      `json:"game"`
	LastResult       *game.RoundResult  `json:"last_result,omitempty"`
	Listening        bool               `json:"listening"`
	Capture          types.CaptureState `json:"capture"`
	Devices          []audio.Device     `json:"devices"`
	VAD              vad.Config         `json:"vad"`
	RoundTimeMs      int64              `json:"round_time_ms"`
	AutoStart        bool               `json:"auto_start"`
	ScorerConfigured bool               `json:"scorer_configured"`
	ArchiveEnabled   bool               `json:"archive_enabled"`
	WebhookURL       string             `json:"webhook_url,omitempty"`
	LogPath          string             `json:"log_path,omitempty"`
	Settings         wsSettings         `json:"settings"`
	Version          types.VersionInfo  `json:"version"`
}

// wsLevels is the high-frequency microphone level payload.
type wsLevels struct {
	Type   string       `json:"type"` // "levels"
	Levels audio.Levels `json:"levels"`
}

// Server is an HTTP server that provides the web interface for the game.
type Server struct {
	config          *config.Config
	session         *game.Session
	controller      *recording.Controller
	archiver        *recording.Archiver
	sessions        *server.SessionManager
	commands        *server.CommandHandler
	version         *VersionChecker
	ffmpegAvailable bool

	clientsMu sync.Mutex
	clients   map[chan any]struct{}
}

// NewServer returns a new Server wired to the given game session and capture
// controller.
func NewServer(cfg *config.Config, sess *game.Session, ctrl *recording.Controller, archiver *recording.Archiver, ffmpegAvailable bool) *Server {
	return &Server{
		config:          cfg,
		session:         sess,
		controller:      ctrl,
		archiver:        archiver,
		sessions:        server.NewSessionManager(),
		commands:        server.NewCommandHandler(cfg, sess, ctrl, archiver),
		version:         NewVersionChecker(),
		ffmpegAvailable: ffmpegAvailable,
		clients:         make(map[chan any]struct{}),
	}
}

// Broadcast pushes a message to every connected WebSocket client.
// Slow clients drop messages rather than block the game loop.
func (s *Server) Broadcast(msg any) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// BroadcastGameEvent converts a game event into a WebSocket message and
// broadcasts it. Registered as (part of) the session observer in main.
func (s *Server) BroadcastGameEvent(ev game.Event) {
	s.Broadcast(map[string]any{
		"type":    "game_event",
		"event":   string(ev.Type),
		"payload": ev.Payload,
	})
	// Game events change the status view; push a fresh one alongside.
	s.Broadcast(s.buildWSStatus())
}

// registerClient adds a per-connection broadcast channel.
func (s *Server) registerClient(ch chan any) {
	s.clientsMu.Lock()
	s.clients[ch] = struct{}{}
	s.clientsMu.Unlock()
}

// unregisterClient removes a per-connection broadcast channel.
func (s *Server) unregisterClient(ch chan any) {
	s.clientsMu.Lock()
	delete(s.clients, ch)
	s.clientsMu.Unlock()
}

// handleWebSocket handles bidirectional WebSocket communication for real-time updates.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	// Create buffered send channel for thread-safe writes.
	// Only the writer goroutine writes to the connection, preventing race conditions.
	send := make(chan any, 16)
	done := make(chan struct{})
	statusUpdate := make(chan struct{}, 1)
	broadcast := make(chan any, 16)

	s.registerClient(broadcast)
	defer s.unregisterClient(broadcast)

	// Writer goroutine - sole writer to the connection
	go s.runWebSocketWriter(conn, send)

	// Reader goroutine - handles incoming commands
	go s.runWebSocketReader(conn, send, done, statusUpdate)

	s.runWebSocketEventLoop(send, done, statusUpdate, broadcast)
}

// runWebSocketWriter writes messages from the send channel to the connection.
func (s *Server) runWebSocketWriter(conn server.WebSocketConn, send <-chan any) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("WebSocket close error", "error", err)
		}
	}()
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// runWebSocketReader reads commands from the connection and dispatches them.
func (s *Server) runWebSocketReader(conn server.WebSocketConn, send chan<- any, done, statusUpdate chan<- struct{}) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in WebSocket reader", "panic", r)
		}
		close(done)
	}()

	for {
		var cmd server.WSCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.commands.Handle(cmd, send, func() {
			select {
			case statusUpdate <- struct{}{}:
			default:
			}
		})
	}
}

// runWebSocketEventLoop handles periodic status and level updates plus
// broadcast game events for one connection.
func (s *Server) runWebSocketEventLoop(send chan any, done, statusUpdate <-chan struct{}, broadcast <-chan any) {
	levelsTicker := time.NewTicker(100 * time.Millisecond)  // 10 fps for the mic meter
	statusTicker := time.NewTicker(3000 * time.Millisecond) // Status updates every 3s
	defer levelsTicker.Stop()
	defer statusTicker.Stop()

	// trySend attempts to send a message, returning false if done is closed
	trySend := func(msg any) bool {
		select {
		case send <- msg:
			return true
		case <-done:
			return false
		}
	}

	// Send initial status
	if !trySend(s.buildWSStatus()) {
		close(send)
		return
	}

	for {
		select {
		case <-done:
			close(send)
			return
		case msg := <-broadcast:
			if !trySend(msg) {
				close(send)
				return
			}
		case <-statusUpdate:
			if !trySend(s.buildWSStatus()) {
				close(send)
				return
			}
		case <-levelsTicker.C:
			if !trySend(wsLevels{Type: "levels", Levels: s.controller.Levels()}) {
				close(send)
				return
			}
		case <-statusTicker.C:
			if !trySend(s.buildWSStatus()) {
				close(send)
				return
			}
		}
	}
}

// buildWSStatus returns the current WebSocket status response.
func (s *Server) buildWSStatus() wsStatus {
	cfg := s.config.Snapshot()

	return wsStatus{
		Type:             "status",
		FFmpegAvailable:  s.ffmpegAvailable,
		GameTitle:        cfg.GameTitle,
		Game:             s.session.Snapshot(),
		LastResult:       s.session.LastResult(),
		Listening:        s.controller.Listening(),
		Capture:          s.controller.CaptureState(),
		Devices:          audio.Devices(),
		VAD:              cfg.VAD,
		RoundTimeMs:      cfg.RoundTimeMs,
		AutoStart:        cfg.AutoStart,
		ScorerConfigured: cfg.Scorer.IsConfigured(),
		ArchiveEnabled:   s.archiver.Enabled(),
		WebhookURL:       cfg.WebhookURL,
		LogPath:          cfg.LogPath,
		Settings: wsSettings{
			AudioInput: cfg.AudioInput,
			Platform:   runtime.GOOS,
		},
		Version: s.version.Info(),
	}
}

// SetupRoutes returns an [http.Handler] configured with all application routes.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()
	auth := s.sessions.AuthMiddleware()

	// Public routes (no auth required)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	// Public static assets (needed for login page styling)
	mux.HandleFunc("/style.css", s.handlePublicStatic)
	mux.HandleFunc("/favicon.svg", s.handleFavicon)

	// Read-only JSON API
	mux.HandleFunc("/api/status", auth(s.handleAPIStatus))
	mux.HandleFunc("/api/scorecard", auth(s.handleAPIScorecard))
	mux.HandleFunc("/api/events", auth(s.handleAPIEvents))
	mux.HandleFunc("/api/words", auth(s.handleAPIWords))
	mux.HandleFunc("/api/devices", auth(s.handleAPIDevices))

	// Game control API
	mux.HandleFunc("/api/game/start", auth(s.handleAPIGameStart))
	mux.HandleFunc("/api/game/reset", auth(s.handleAPIGameReset))
	mux.HandleFunc("/api/round/start", auth(s.handleAPIRoundStart))
	mux.HandleFunc("/api/round/stop", auth(s.handleAPIRoundStop))

	// Protected routes
	mux.HandleFunc("/ws", auth(s.handleWebSocket))
	mux.HandleFunc("/", auth(s.handleStatic))

	return securityHeaders(mux)
}

// securityHeaders returns middleware that wraps handlers with security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// handlePublicStatic handles requests for static files without authentication.
func (s *Server) handlePublicStatic(w http.ResponseWriter, r *http.Request) {
	if !serveStaticFile(w, r.URL.Path) {
		http.NotFound(w, r)
	}
}

// handleFavicon serves the favicon.
func (s *Server) handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(faviconSVG)); err != nil {
		slog.Error("failed to write favicon", "error", err)
	}
}

// serveStaticFile serves a static file by path and reports whether it was found.
func serveStaticFile(w http.ResponseWriter, path string) bool {
	file, ok := staticFiles[path]
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", file.contentType)
	if _, err := w.Write([]byte(file.content)); err != nil {
		slog.Error("failed to write static file", "file", file.name, "error", err)
	}
	return true
}

// handleLogin handles login page display and form submission.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("echotower_session"); err == nil {
		if s.sessions.Validate(cookie.Value) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	cfg := s.config.Snapshot()
	data := loginData{
		Version:   Version,
		Year:      time.Now().Year(),
		CSRFToken: s.sessions.CreateCSRFToken(),
		GameTitle: cfg.GameTitle,
	}

	if r.Method == http.MethodPost {
		csrfToken := r.FormValue("csrf_token")
		if !s.sessions.ValidateCSRFToken(csrfToken) {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")

		if s.sessions.Login(w, r, username, password, cfg.WebUser, cfg.WebPassword) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		data.Error = true
		data.CSRFToken = s.sessions.CreateCSRFToken() // New token for retry
	}

	w.Header().Set("Content-Type", "text/html")
	if err := loginTmpl.Execute(w, data); err != nil {
		slog.Error("failed to render login page", "error", err)
	}
}

// handleLogout handles user logout requests.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// staticFile is an embedded static file with content type and data.
type staticFile struct {
	contentType string
	content     string
	name        string
}

// staticFiles is a map from URL paths to static file definitions.
var staticFiles = map[string]staticFile{
	"/style.css": {
		contentType: "text/css",
		content:     styleCSS,
		name:        "style.css",
	},
	"/app.js": {
		contentType: "application/javascript",
		content:     appJS,
		name:        "app.js",
	},
	// favicon.svg is served via handleFavicon
}

// handleStatic handles requests for embedded static web interface files.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	// Serve index.html with dynamic placeholders.
	if path == "/index.html" {
		cfg := s.config.Snapshot()
		w.Header().Set("Content-Type", "text/html")
		if err := indexTmpl.Execute(w, indexData{
			Version:   Version,
			Year:      time.Now().Year(),
			GameTitle: cfg.GameTitle,
		}); err != nil {
			slog.Error("failed to write index.html", "error", err)
		}
		return
	}

	if serveStaticFile(w, path) {
		return
	}

	http.NotFound(w, r)
}

// Start begins the HTTP server.
// Returns an *http.Server that can be used for graceful shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.config.Snapshot().WebPort)
	slog.Info("starting web server", "addr", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.SetupRoutes(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return srv
}
