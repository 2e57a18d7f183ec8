package cmd

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/relay"
	"github.com/Zachkp/portfolio/internal/site"
)

//nolint:gochecknoglobals // Cobra boilerplate
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run only the contact mail relay",
	Long: `Run the contact mail relay as a standalone service.

It accepts POST /send-contact-email with {name, email, message}, emails the site
owner, and sends the sender a confirmation. No content store is needed.`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	err = cfg.ValidateMail()
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

	_, handler, err := newRelay(cfg, logger, m)
	if err != nil {
		return err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	handler.Register(r)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	ctx, stop := signalContext()
	defer stop()

	logger.Info("starting contact relay", "port", cfg.Port, "path", relay.Path, "mail_provider", cfg.Mail.Provider)
	err = site.Serve(ctx, ":"+cfg.Port, r, logger)
	return err
}
