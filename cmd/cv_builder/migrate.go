package main

import (
	"fmt"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Applies every pending PostgreSQL migration. The database URL comes from --db-url or database.url.",
	RunE:  runMigrate,
}

var migrateDatabaseURL string

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "Database URL (default: database.url)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	url := migrateDatabaseURL
	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		url = cfg.Database.URL
	}
	if url == "" {
		return fmt.Errorf("database URL is required (--db-url or %s_DATABASE_URL)", config.EnvPrefix)
	}
	if err := db.Migrate(cmd.Context(), url); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), labelStyle.Render("Migrations applied"))
	return nil
}
