package cmd

import (
	"fmt"

	"photo-social-backend/internal/db"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// migrateCmd applies the embedded schema migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Migrations only touch the database
		if err := cfg.Database.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		if err := db.Migrate(cfg.Database.DSN()); err != nil {
			return err
		}
		log.Info().Msg("Migrations applied")
		return nil
	},
}
