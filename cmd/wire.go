package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/content/rest"
	"github.com/Zachkp/portfolio/internal/content/sqlstore"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/querycache"
	"github.com/Zachkp/portfolio/internal/relay"
)

// loadConfig reads the environment and applies command line overrides.
func loadConfig() (cfg config.Config, err error) {
	cfg, err = config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (logger *slog.Logger) {
	logger = logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	return logger
}

// openDatabase opens and pings the sqlite database at cfg.DatabasePath.
func openDatabase(cfg config.Config) (db *bun.DB, err error) {
	db, err = sqlstore.Open(sqlstore.DSN(cfg.DatabasePath))
	if err != nil {
		err = errors.Wrapf(err, "failed to open database %s", cfg.DatabasePath)
		return nil, err
	}
	return db, nil
}

// newContentStore returns the configured content backend. The sqlite store
// is migrated before use.
func newContentStore(ctx context.Context, cfg config.Config, db *bun.DB) (store content.Store, err error) {
	switch cfg.ContentSource {
	case config.SourceREST:
		store = rest.New(cfg.ContentRESTURL, cfg.ContentRESTKey)
		return store, nil
	case config.SourceSQLite:
		sqlStore := sqlstore.New(db)
		err = sqlStore.Migrate(ctx)
		if err != nil {
			err = errors.Wrap(err, "failed to migrate content tables")
			return nil, err
		}
		return sqlStore, nil
	default:
		err = errors.Errorf("unknown content source %q", cfg.ContentSource)
		return nil, err
	}
}

func newCache(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *querycache.Cache {
	opts := querycache.Options{
		Logger:      logger,
		Metrics:     m,
		LoadTimeout: cfg.CacheLoadTimeout,
	}
	if cfg.CacheRetryAttempts > 1 {
		opts.Retry = querycache.RetryPolicy{
			MaxAttempts:     uint(cfg.CacheRetryAttempts),
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}
	}
	return querycache.New(opts)
}

// newMailer builds the configured mail provider.
func newMailer(cfg config.Config, logger *slog.Logger) (mailer relay.Mailer, err error) {
	switch cfg.Mail.Provider {
	case config.ProviderResend:
		mailer = relay.NewResendMailer(cfg.Mail.ResendAPIKey)
	case config.ProviderSMTP:
		mailer = relay.NewSMTPMailer(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPass)
	case config.ProviderLog:
		mailer = relay.NewLogMailer(logger)
	default:
		err = errors.Errorf("unknown mail provider %q", cfg.Mail.Provider)
		return nil, err
	}
	return mailer, nil
}

func newRelay(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (svc *relay.Service, handler *relay.Handler, err error) {
	var mailer relay.Mailer
	mailer, err = newMailer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	svc = relay.NewService(relay.Options{
		Mailer:     mailer,
		OwnerEmail: cfg.Mail.OwnerEmail,
		OwnerName:  cfg.Mail.OwnerName,
		From:       cfg.Mail.From,
		Logger:     logger,
		Metrics:    m,
	})
	handler = relay.NewHandler(svc, relay.HandlerOptions{
		RatePerMinute: cfg.RelayRateLimit,
		Burst:         cfg.RelayRateBurst,
		Logger:        logger,
		Metrics:       m,
	})
	return svc, handler, nil
}
