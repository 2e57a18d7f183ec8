package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/sitemap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var sitemapOut string

//nolint:gochecknoglobals // Cobra boilerplate
var sitemapBaseURL string

//nolint:gochecknoglobals // Cobra boilerplate
var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Write sitemap.xml and sitemap.html",
	Long: `Write sitemap.xml and sitemap.html for the public routes.

Example:
  portfolio sitemap --out public --base-url https://example.dev`,
	Args: cobra.NoArgs,
	RunE: runSitemap,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(sitemapCmd)
	sitemapCmd.Flags().StringVar(&sitemapOut, "out", "public", "Output directory")
	sitemapCmd.Flags().StringVar(&sitemapBaseURL, "base-url", "", "Site base URL (default SITE_BASE_URL)")
}

func runSitemap(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	base := sitemapBaseURL
	if base == "" {
		base = cfg.SiteBaseURL
	}

	err = sitemap.New(base, cfg.Mail.OwnerName).WriteFiles(sitemapOut)
	if err != nil {
		err = errors.Wrap(err, "failed to write sitemaps")
		return err
	}
	logger.Info("sitemaps generated", "dir", sitemapOut, "base_url", base)
	return nil
}
