package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/siteproof-backend/internal/data/db"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the relational schema",
	Long: `Auto-migrate every table, then create the partial unique indexes and
read views the API depends on. Safe to run repeatedly.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	log, err := logger.FromEnv()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.AutoMigrateAll(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
	return nil
}
