package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/queries"
	"github.com/Zachkp/portfolio/internal/site"
	"github.com/Zachkp/portfolio/internal/sitemap"
	"github.com/Zachkp/portfolio/internal/visits"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio web server",
	Long: `Run the portfolio web server: pages, content API, contact relay, admin API,
sitemaps, /healthz and /metrics.

Contact form submissions are relayed in process unless CONTACT_RELAY_URL points
at a remote relay.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func setGinMode(mode string) (err error) {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
		return nil
	default:
		err = errors.Errorf("unknown GIN_MODE %q", mode)
		return err
	}
}

func newRegistry() (reg *prometheus.Registry) {
	reg = prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return err
	}
	err = setGinMode(cfg.GinMode)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	reg := newRegistry()
	m := metrics.New(reg)

	ctx, stop := signalContext()
	defer stop()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // closing on exit

	store, err := newContentStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	client := queries.New(store, newCache(cfg, logger, m), logger)

	relaySvc, relayHandler, err := newRelay(cfg, logger, m)
	if err != nil {
		return err
	}
	var submitter contact.Submitter = relaySvc
	if cfg.ContactRelayURL != "" {
		submitter = contact.NewRelayClient(cfg.ContactRelayURL, cfg.ContentRESTKey)
		logger.Info("contact form uses remote relay", "url", cfg.ContactRelayURL)
	}

	visitStore := visits.NewStore(db)
	err = visitStore.Migrate(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to migrate visitors table")
		return err
	}
	tracker := visits.NewTracker(visitStore, cfg.Admin.VisitSalt, logger, m)
	admin := visits.NewAdmin(visitStore, tracker, client, visits.AdminOptions{
		Username:  cfg.Admin.Username,
		Password:  cfg.Admin.Password,
		Token:     cfg.Admin.Token,
		Retention: cfg.Admin.VisitRetention,
		Logger:    logger,
	})
	if !admin.LoginEnabled() {
		logger.Warn("admin login disabled, set ADMIN_USERNAME and ADMIN_PASSWORD to enable it")
	}
	go runCleanup(ctx, admin, logger)

	server := site.New(site.Options{
		SiteName:  cfg.Mail.OwnerName,
		Queries:   client,
		Submitter: submitter,
		Relay:     relayHandler,
		Tracker:   tracker,
		Admin:     admin,
		Sitemap:   sitemap.New(cfg.SiteBaseURL, cfg.Mail.OwnerName),
		Gatherer:  reg,
		Logger:    logger,
		Metrics:   m,
	})

	logger.Info("starting portfolio server",
		"port", cfg.Port,
		"content_source", cfg.ContentSource,
		"mail_provider", cfg.Mail.Provider,
	)
	err = server.Run(ctx, ":"+cfg.Port)
	tracker.Wait()
	return err
}

// runCleanup applies the visit retention window at startup and daily.
func runCleanup(ctx context.Context, admin *visits.Admin, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		if _, err := admin.Cleanup(ctx); err != nil {
			logger.Warn("visit cleanup failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
