package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content/sqlstore"
	"github.com/Zachkp/portfolio/internal/visits"
)

//nolint:gochecknoglobals // Cobra boilerplate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the content and visitor tables",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // closing on exit

	err = sqlstore.New(db).Migrate(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to migrate content tables")
		return err
	}
	err = visits.NewStore(db).Migrate(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to migrate visitors table")
		return err
	}

	logger.Info("database migrated", "database", cfg.DatabasePath)
	return nil
}
