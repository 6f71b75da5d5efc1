package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmynk/tripledger/internal/storage/sqlite"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

The server applies pending migrations on startup; this command is for
checking the schema version or rolling back.`,
		RunE: runMigrate,
	}

	// Flags
	cmd.Flags().Int("down", 0, "roll back this many migrations instead of applying")
	cmd.Flags().Bool("status", false, "show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	down, _ := cmd.Flags().GetInt("down")
	status, _ := cmd.Flags().GetBool("status")
	dbPath := cfg.Database.Path
	out := cmd.OutOrStdout()

	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	switch {
	case status:
	case down > 0:
		slog.Info("Rolling back migrations", "database", dbPath, "steps", down)
		if err := sqlite.RollbackMigrations(dbPath, down); err != nil {
			return err
		}
	default:
		slog.Info("Running migrations", "database", dbPath)
		if err := sqlite.RunMigrations(dbPath); err != nil {
			return err
		}
	}

	version, dirty, err := sqlite.MigrationVersion(dbPath)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Database:"), dbPath)
	fmt.Fprintf(out, "%s %d\n", labelStyle.Render("Schema version:"), version)
	if dirty {
		fmt.Fprintln(out, warnStyle.Render("Schema is dirty: a migration failed halfway and needs manual repair"))
	}
	return nil
}
