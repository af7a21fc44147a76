package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/api"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/app"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/daemon"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/loop"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/metrics"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/session"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
)

// runInterview runs the TUI until the user quits.
func runInterview(ctx context.Context, resume string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, log, err := setup(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting the interview agent",
		zap.String("version", version),
		zap.String("api", cfg.API.BaseURL),
		zap.String("speech_socket", cfg.Speech.Socket))

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, m, log); err != nil {
				log.Error("metrics endpoint", zap.Error(err))
			}
		}()
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	socket := cfg.Speech.Socket
	model := app.New(app.Options{
		Client: api.New(cfg.API.BaseURL, log, m),
		NewCapture: func(p loop.Poster) session.Capture {
			eng := daemon.NewEngine(socket, log)
			eng.Timeout = cfg.Speech.Timeout
			return speech.NewAdapter(eng, p, cfg.Speech.Locale, log)
		},
		Probe: daemon.Probe{SocketPath: socket, Timeout: cfg.Speech.Timeout},
		Store: store,
		Session: session.Config{
			TotalQuestions:   cfg.Interview.TotalQuestions,
			MaxRecordSeconds: cfg.Interview.MaxRecordSeconds,
			CompletionDelay:  cfg.Interview.CompletionDelay,
		},
		ResumePath: resume,
		Logger:     log,
		Metrics:    m,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Error("tui", zap.Error(err))
		return fmt.Errorf("run tui: %w", err)
	}
	log.Info("interview agent stopped")
	return nil
}
