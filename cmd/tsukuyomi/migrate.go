package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easeaico/tsukuyomi/internal/config"
	"github.com/easeaico/tsukuyomi/internal/storage"
)

func migrateCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the user_memory table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ParseUnvalidated()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			kind, schema := storage.SchemaFor(cfg.DatabaseURL)

			if dryRun {
				fmt.Fprintln(out, "Dry run mode - no changes will be made")
				fmt.Fprintf(out, "  - Would migrate the %s store at %s:\n\n%s\n", kind, maskDatabaseURL(cfg.DatabaseURL), schema)
				return nil
			}

			fmt.Fprintf(out, "Migrating %s store...\n", kind)
			store, err := storage.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to close memory store: %w", err)
			}
			fmt.Fprintln(out, "  ✓ user_memory table migrated")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the schema without applying it")
	return cmd
}
