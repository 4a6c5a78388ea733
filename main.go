// Package main provides a pronunciation climbing game: the player speaks the
// displayed word into the microphone, a scoring service grades the attempt,
// and good pronunciation fights the player up the tower.
//
// Usage:
//
//	echotower [-config path/to/config.json]
//
// If -config is not specified, the server looks for config.json in the same
// directory as the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/hacknao/echotower/internal/audio"
	"github.com/hacknao/echotower/internal/config"
	"github.com/hacknao/echotower/internal/game"
	"github.com/hacknao/echotower/internal/notify"
	"github.com/hacknao/echotower/internal/recording"
	"github.com/hacknao/echotower/internal/scorer"
	"github.com/hacknao/echotower/internal/util"
	"github.com/hacknao/echotower/internal/vad"
	"github.com/hacknao/echotower/internal/words"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.json next to binary)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if *configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}

	slog.Info("using config file", "path", *configPath)

	cfg := config.New(*configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Check FFmpeg availability. Without it the game still serves the UI,
	// but rounds cannot capture audio.
	ffmpegPath := util.ResolveFFmpegPath(cfg.GetFFmpegPath())
	ffmpegAvailable := ffmpegPath != ""
	if !ffmpegAvailable {
		slog.Warn("FFmpeg not found - microphone capture disabled",
			"configured_path", cfg.GetFFmpegPath())
	} else {
		slog.Info("FFmpeg found", "path", ffmpegPath)
	}

	snap := cfg.Snapshot()

	// Capture pipeline: microphone stream, voice detector, one-utterance
	// controller, S3 archiver.
	vadCfg := snap.VAD
	capture := audio.NewCaptureSession(snap.AudioInput, ffmpegPath,
		time.Duration(vadCfg.MaxRecordingMs)*time.Millisecond)
	detector := vad.NewDetector(vadCfg)
	controller := recording.NewController(capture, detector, true)
	archiver := recording.NewArchiver(snap.Archive)

	// Pronunciation scorer. The session falls back to zero scores while
	// unconfigured, so a missing scorer is a warning, not a startup error.
	var sc scorer.Scorer
	if snap.Scorer.IsConfigured() {
		hs, err := scorer.NewHTTPScorer(snap.Scorer)
		if err != nil {
			slog.Error("failed to create scorer client", "error", err)
			os.Exit(1)
		}
		sc = hs
	} else {
		slog.Warn("scorer not configured - all attempts will score zero")
	}

	// Game session.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	picker := words.NewPicker(rng)
	engine := game.NewEngine(rng)
	session := game.NewSession(game.SessionConfig{
		RoundTime:     time.Duration(snap.RoundTimeMs) * time.Millisecond,
		AutoStart:     snap.AutoStart,
		ScorerTimeout: time.Duration(snap.Scorer.TimeoutMs) * time.Millisecond,
	}, controller, sc, picker, engine, archiver)

	// Event log and webhook notifications. The notifier resolves the log
	// path from the config per event, so notifications/log/update takes
	// effect without a restart.
	notifier := notify.NewGameNotifier(cfg)

	srv := NewServer(cfg, session, controller, archiver, ffmpegAvailable)

	// Fan session events out to the notifier and connected browsers.
	session.SetObserver(func(ev game.Event) {
		notifier.HandleEvent(ev)
		srv.BroadcastGameEvent(ev)
	})

	// Start web server.
	httpServer := srv.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, util.ShutdownSignals()...)
	<-sigChan

	slog.Info("shutting down")

	// Stop version checker goroutine
	srv.version.Stop()

	// Shut down HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	session.Close()

	if err := notifier.Close(); err != nil {
		slog.Error("error closing event log", "error", err)
	}

	slog.Info("shutdown complete")
}
