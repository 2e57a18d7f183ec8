package cmd

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/content/sqlstore"
)

//nolint:gochecknoglobals // Cobra boilerplate
var seedCmd = &cobra.Command{
	Use:   "seed <content.yaml>",
	Short: "Load portfolio content from a YAML file into the sqlite store",
	Long: `Load portfolio content from a YAML file into the sqlite store, replacing
every content table in one transaction.

Rows without an id get a generated UUID. Every row is validated before anything
is written.

Example:
  portfolio seed content.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	var bundle content.Bundle
	bundle, err = readBundle(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // closing on exit

	store := sqlstore.New(db)
	err = store.Migrate(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to migrate content tables")
		return err
	}
	err = store.Replace(ctx, bundle)
	if err != nil {
		err = errors.Wrap(err, "failed to write content")
		return err
	}

	logger.Info("content seeded",
		"database", cfg.DatabasePath,
		"projects", len(bundle.Projects),
		"skills", len(bundle.Skills),
		"certifications", len(bundle.Certifications),
		"journey_entries", len(bundle.JourneyTimeline),
	)
	return nil
}

func readBundle(path string) (bundle content.Bundle, err error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s", path)
		return bundle, err
	}
	defer f.Close() //nolint:errcheck // read only

	bundle, err = content.DecodeBundle(f)
	if err != nil {
		err = errors.Wrapf(err, "invalid content file %s", path)
		return bundle, err
	}
	return bundle, nil
}
