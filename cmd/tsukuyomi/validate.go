package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/easeaico/tsukuyomi/internal/config"
	"github.com/easeaico/tsukuyomi/internal/storage"
)

const pingTimeout = 10 * time.Second

type setting struct {
	name   string
	envVar string
	value  string
	secret bool
}

func settings(cfg config.Config) []setting {
	return []setting{
		{"Listen address", "ADDR", cfg.Addr, false},
		{"Database URL", "DATABASE_URL", maskDatabaseURL(cfg.DatabaseURL), false},
		{"Session secret", "SESSION_SECRET_KEY", cfg.SessionSecretKey, true},
		{"LLM provider", "LLM_PROVIDER", cfg.LLMProvider, false},
		{"LLM model", "LLM_MODEL", cfg.LLMModel, false},
		{"LLM base URL", "LLM_BASE_URL", cfg.LLMBaseURL, false},
		{"LLM API key", "LLM_API_KEY", cfg.ProviderAPIKey(), true},
		{"TTS enabled", "TTS_ENABLED", strconv.FormatBool(cfg.TTSEnabled), false},
		{"VOICEVOX URL", "VOICEVOX_URL", cfg.VoicevoxURL, false},
		{"VOICEVOX speaker", "VOICEVOX_SPEAKER", strconv.Itoa(cfg.VoicevoxSpeaker), false},
		{"Audio dir", "AUDIO_DIR", cfg.AudioDir, false},
		{"Audio sweep", "AUDIO_SWEEP_SCHEDULE", cfg.AudioSweepSchedule, false},
		{"Max facts", "MAX_FACTS_PER_USER", strconv.Itoa(cfg.MaxFactsPerUser), false},
		{"Intimacy range", "MIN_INTIMACY/MAX_INTIMACY", fmt.Sprintf("%d..%d (default %d)", cfg.MinIntimacy, cfg.MaxIntimacy, cfg.DefaultIntimacy), false},
		{"Alpha", "ALPHA", strconv.FormatFloat(cfg.Alpha, 'f', -1, 64), false},
		{"History turns", "MAX_MEMORY", strconv.Itoa(cfg.MaxMemory), false},
		{"History sessions", "MAX_SESSIONS/SESSION_TTL", fmt.Sprintf("%d (idle %s)", cfg.MaxSessions, cfg.SessionTTL), false},
	}
}

func printSettings(w io.Writer, cfg config.Config) {
	for _, s := range settings(cfg) {
		if s.value == "" {
			fmt.Fprintf(w, "  - %s (%s): not set\n", s.name, s.envVar)
			continue
		}
		value := s.value
		if s.secret {
			value = maskValue(value)
		}
		fmt.Fprintf(w, "  ✓ %s (%s): %s\n", s.name, s.envVar, value)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and test the database connection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Validating configuration...")

			cfg, err := config.ParseUnvalidated()
			if err != nil {
				return err
			}
			printSettings(out, cfg)
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "\n  ✗ %v\n", err)
				return fmt.Errorf("configuration validation failed")
			}

			fmt.Fprintln(out, "\nTesting database connection...")
			ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
			defer cancel()

			store, err := storage.Open(ctx, cfg.DatabaseURL, storage.WithoutMigrate())
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer store.Close()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("failed to ping: %w", err)
			}
			fmt.Fprintf(out, "  ✓ %s connection successful\n", store.Kind())

			fmt.Fprintln(out, "\nConfiguration validation completed!")
			return nil
		},
	}
}
