package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/adk/model"

	"github.com/easeaico/tsukuyomi/internal/chat"
	"github.com/easeaico/tsukuyomi/internal/config"
	"github.com/easeaico/tsukuyomi/internal/emotion"
	"github.com/easeaico/tsukuyomi/internal/memory"
	"github.com/easeaico/tsukuyomi/internal/metrics"
	"github.com/easeaico/tsukuyomi/internal/models"
	"github.com/easeaico/tsukuyomi/internal/prompt"
	"github.com/easeaico/tsukuyomi/internal/server"
	"github.com/easeaico/tsukuyomi/internal/storage"
	"github.com/easeaico/tsukuyomi/internal/tts"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			setupLogger(cfg)
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("configuration loaded",
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
		"database", maskDatabaseURL(cfg.DatabaseURL),
		"tts", cfg.TTSEnabled,
	)

	store, err := storage.Open(ctx, cfg.DatabaseURL, storage.WithDefaultIntimacy(cfg.DefaultIntimacy))
	if err != nil {
		log.Fatalf("failed to open memory store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close memory store", "error", err.Error())
		}
	}()
	slog.Info("memory store ready", "kind", store.Kind())

	llm, err := models.New(ctx, cfg.ModelOptions())
	if err != nil {
		log.Fatalf("failed to create model: %v", err)
	}

	recorder := metrics.New()
	engine := memory.NewEngine(store, emotion.NewJudge(llm), memory.NewModelExtractor(llm), engineConfig(cfg), memory.WithMetrics(recorder))

	var speech chat.Synthesizer
	if cfg.TTSEnabled {
		synth, err := newSynthesizer(cfg, llm, recorder)
		if err != nil {
			log.Fatalf("failed to set up speech: %v", err)
		}
		sweeper, err := tts.StartSweeper(cfg.AudioSweepSchedule, synth.Cleanup)
		if err != nil {
			log.Fatalf("failed to schedule audio sweep: %v", err)
		}
		defer sweeper.Stop()
		speech = synth
	}

	service := chat.NewService(llm, prompt.NewBuilder("", cfg.MaxMemory), engine, chat.NewHistory(cfg.MaxMemory, cfg.MaxSessions, cfg.SessionTTL), speech)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.NewRouter(server.Options{
			Chat:         service,
			Memory:       engine,
			Metrics:      recorder,
			SessionKey:   cfg.SessionSecretKey,
			StaticDir:    cfg.StaticDir,
			TemplatesDir: cfg.TemplatesDir,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func newSynthesizer(cfg config.Config, llm model.LLM, recorder *metrics.Recorder) (*tts.Synthesizer, error) {
	var translator tts.TextTranslator
	if cfg.Translate {
		translator = tts.NewTranslator(llm, tts.DefaultStyle)
	}
	return tts.NewSynthesizer(
		tts.NewVoicevoxClient(cfg.VoicevoxURL, cfg.VoicevoxSpeaker),
		translator,
		tts.Config{AudioDir: cfg.AudioDir, URLPrefix: "/static/audio", Retain: cfg.AudioRetain},
		recorder,
	)
}
