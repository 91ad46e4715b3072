package main

import (
	"fmt"
	"log/slog"

	"github.com/ingoatl/propertycentral/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures your local database has all the required
tables and indexes for reconciliations, line items, expenses and the audit log.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := currentConfig()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Database:        %s\n", cfg.DatabasePath)
		fmt.Fprintf(out, "Current version: %d\n", current)
		fmt.Fprintf(out, "Latest version:  %d\n", storage.ExpectedSchemaVersion)
		return nil
	}

	slog.Info("Running database migrations", "database", cfg.DatabasePath)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Database migrations completed")
	return nil
}
