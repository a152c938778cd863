package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easeaico/tsukuyomi/internal/config"
	"github.com/easeaico/tsukuyomi/internal/emotion"
	"github.com/easeaico/tsukuyomi/internal/memory"
	"github.com/easeaico/tsukuyomi/internal/storage"
)

func openStore(cmd *cobra.Command) (config.Config, storage.Backend, error) {
	cfg, err := config.ParseUnvalidated()
	if err != nil {
		return config.Config{}, nil, err
	}
	store, err := storage.Open(cmd.Context(), cfg.DatabaseURL, storage.WithDefaultIntimacy(cfg.DefaultIntimacy))
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to open memory store: %w", err)
	}
	return cfg, store, nil
}

func engineConfig(cfg config.Config) memory.Config {
	return memory.Config{
		MaxFacts:        cfg.MaxFactsPerUser,
		DefaultIntimacy: cfg.DefaultIntimacy,
		Bounds:          emotion.Bounds{Min: cfg.MinIntimacy, Max: cfg.MaxIntimacy},
		Alpha:           cfg.Alpha,
	}
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <user_id>",
		Short: "Print a user's intimacy and remembered facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("memory store unreachable: %w", err)
			}
			engine := memory.NewEngine(store, nil, nil, engineConfig(cfg))
			state := engine.GetState(cmd.Context(), args[0])
			b, _ := json.MarshalIndent(state, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <user_id>",
		Short: "Delete a user's long-term memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := memory.NewEngine(store, nil, nil, engineConfig(cfg))
			if err := engine.Clear(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared memory for %s\n", args[0])
			return nil
		},
	}
}
