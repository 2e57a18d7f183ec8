// Package config loads the portfolio server configuration from the process
// environment, optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Content sources.
const (
	SourceSQLite = "sqlite"
	SourceREST   = "rest"
)

// Mail providers.
const (
	ProviderResend = "resend"
	ProviderSMTP   = "smtp"
	ProviderLog    = "log"
)

// Config represents the application configuration.
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	DatabasePath   string
	ContentSource  string
	ContentRESTURL string
	ContentRESTKey string

	CacheLoadTimeout   time.Duration
	CacheRetryAttempts int

	Mail MailConfig

	SiteBaseURL     string
	ContactRelayURL string

	RelayRateLimit float64 // requests per minute per client, 0 disables
	RelayRateBurst int

	Admin AdminConfig
}

// MailConfig holds outbound email settings.
type MailConfig struct {
	Provider     string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	OwnerEmail   string
	OwnerName    string
	From         string
}

// AdminConfig holds admin dashboard and visitor tracking settings.
type AdminConfig struct {
	Username       string
	Password       string
	Token          string
	VisitSalt      string
	VisitRetention time.Duration
}

// Load reads the optional env file (".env" when envFile is empty) and then
// builds a Config from the environment. A missing .env file is not an error.
func Load(envFile string) (cfg Config, err error) {
	path := envFile
	if path == "" {
		path = ".env"
	}
	err = godotenv.Load(path)
	if err != nil {
		if envFile != "" || !os.IsNotExist(err) {
			err = errors.Wrapf(err, "failed to load env file %s", path)
			return cfg, err
		}
		err = nil
	}

	cfg, err = FromEnv(os.Getenv)
	return cfg, err
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (cfg Config, err error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg = Config{
		Port:           get("PORT", "8080"),
		GinMode:        get("GIN_MODE", "release"),
		LogLevel:       get("LOG_LEVEL", "info"),
		LogFormat:      get("LOG_FORMAT", "text"),
		DatabasePath:   get("DATABASE_PATH", "portfolio.db"),
		ContentSource:  strings.ToLower(get("CONTENT_SOURCE", SourceSQLite)),
		ContentRESTURL: strings.TrimRight(get("CONTENT_REST_URL", ""), "/"),
		ContentRESTKey: get("CONTENT_REST_KEY", ""),
		Mail: MailConfig{
			Provider:     strings.ToLower(get("MAIL_PROVIDER", ProviderLog)),
			ResendAPIKey: get("RESEND_API_KEY", ""),
			SMTPHost:     get("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     get("SMTP_PORT", "587"),
			SMTPUser:     get("SMTP_USER", ""),
			SMTPPass:     get("SMTP_PASS", ""),
			OwnerEmail:   get("OWNER_EMAIL", ""),
			OwnerName:    get("OWNER_NAME", "Portfolio Owner"),
			From:         get("MAIL_FROM", "onboarding@resend.dev"),
		},
		SiteBaseURL:     strings.TrimRight(get("SITE_BASE_URL", "http://localhost:8080"), "/"),
		ContactRelayURL: strings.TrimRight(get("CONTACT_RELAY_URL", ""), "/"),
		Admin: AdminConfig{
			Username:  get("ADMIN_USERNAME", ""),
			Password:  get("ADMIN_PASSWORD", ""),
			Token:     get("ADMIN_TOKEN", ""),
			VisitSalt: get("VISIT_SALT", ""),
		},
	}

	if cfg.CacheLoadTimeout, err = parseDuration(get("CACHE_LOAD_TIMEOUT", "0s"), "CACHE_LOAD_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.Admin.VisitRetention, err = parseDuration(get("VISIT_RETENTION", "8760h"), "VISIT_RETENTION"); err != nil {
		return cfg, err
	}
	if cfg.CacheRetryAttempts, err = parseInt(get("CACHE_RETRY_ATTEMPTS", "0"), "CACHE_RETRY_ATTEMPTS"); err != nil {
		return cfg, err
	}
	if cfg.RelayRateBurst, err = parseInt(get("RELAY_RATE_BURST", "3"), "RELAY_RATE_BURST"); err != nil {
		return cfg, err
	}
	cfg.RelayRateLimit, err = strconv.ParseFloat(get("RELAY_RATE_LIMIT", "0"), 64)
	if err != nil {
		err = errors.Wrap(err, "invalid RELAY_RATE_LIMIT")
		return cfg, err
	}

	return cfg, nil
}

// Validate checks that the settings needed by the selected providers exist.
func (c *Config) Validate() (err error) {
	switch c.ContentSource {
	case SourceSQLite:
		if c.DatabasePath == "" {
			err = errors.New("DATABASE_PATH is required for the sqlite content source")
			return err
		}
	case SourceREST:
		if c.ContentRESTURL == "" || c.ContentRESTKey == "" {
			err = errors.New("CONTENT_REST_URL and CONTENT_REST_KEY are required for the rest content source")
			return err
		}
	default:
		err = errors.Errorf("unknown CONTENT_SOURCE %q", c.ContentSource)
		return err
	}

	err = c.ValidateMail()
	return err
}

// ValidateMail checks only the outbound mail settings. The relay command
// runs without a content source and uses this directly.
func (c *Config) ValidateMail() (err error) {
	switch c.Mail.Provider {
	case ProviderResend:
		if c.Mail.ResendAPIKey == "" {
			err = errors.New("RESEND_API_KEY is required for the resend mail provider")
			return err
		}
	case ProviderSMTP:
		if c.Mail.SMTPUser == "" || c.Mail.SMTPPass == "" {
			err = errors.New("SMTP credentials not configured")
			return err
		}
	case ProviderLog:
	default:
		err = errors.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider)
		return err
	}

	if c.Mail.Provider != ProviderLog && c.Mail.OwnerEmail == "" {
		err = errors.New("OWNER_EMAIL is required to deliver contact messages")
		return err
	}
	if c.RelayRateLimit < 0 {
		err = errors.New("RELAY_RATE_LIMIT must not be negative")
		return err
	}
	return nil
}

func parseDuration(raw, key string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	if d < 0 {
		return 0, errors.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func parseInt(raw, key string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	if n < 0 {
		return 0, errors.Errorf("%s must not be negative", key)
	}
	return n, nil
}
