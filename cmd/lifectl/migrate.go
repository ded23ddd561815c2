package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifeledger/internal/log"
	"lifeledger/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite schema migrations",
		Long: `Apply every pending migration to the database at SQLITE_DB_PATH. The server
also migrates on start; this command is for upgrades run ahead of a deploy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, _ := cmd.Flags().GetBool("status")
			path := cfg.SQLiteDBPath

			if !status {
				logger.Info("Running database migrations", "db_path", path)
				if err := storage.RunMigrations(path); err != nil {
					return err
				}
			}
			version, dirty, err := storage.MigrationVersion(path)
			if err != nil {
				return err
			}
			logger.Info("Schema version", "db_path", path, "version", version, "dirty", dirty, log.FieldOperation, "migrate")
			fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().Bool("status", false, "only print the current schema version")
	return cmd
}
