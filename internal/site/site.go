// Package site serves the portfolio: HTML pages, the content JSON API, the
// contact relay, admin endpoints, sitemaps, health and metrics.
package site

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/queries"
	"github.com/Zachkp/portfolio/internal/relay"
	"github.com/Zachkp/portfolio/internal/sitemap"
	"github.com/Zachkp/portfolio/internal/visits"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"year": func() int { return time.Now().Year() },
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}

// Options wires the server's collaborators. Only Queries is required; the
// other parts are mounted when present.
type Options struct {
	SiteName  string
	Queries   *queries.Client
	Submitter contact.Submitter
	Relay     *relay.Handler
	Tracker   *visits.Tracker
	Admin     *visits.Admin
	Sitemap   *sitemap.Generator
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Server is the portfolio HTTP server.
type Server struct {
	engine    *gin.Engine
	queries   *queries.Client
	submitter contact.Submitter
	siteName  string
	sitemap   *sitemap.Generator
	logger    *slog.Logger
	metrics   *metrics.Metrics

	contactInFlight *inFlight
}

// New builds the gin engine and registers every route.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	if opts.SiteName == "" {
		opts.SiteName = "Portfolio"
	}

	s := &Server{
		engine:    gin.New(),
		queries:   opts.Queries,
		submitter: opts.Submitter,
		siteName:  opts.SiteName,
		sitemap:   opts.Sitemap,
		logger:    opts.Logger.With("component", "site"),
		metrics:   opts.Metrics,

		contactInFlight: newInFlight(),
	}

	r := s.engine
	r.Use(gin.Recovery(), requestLogger(s.logger))
	if opts.Tracker != nil {
		r.Use(opts.Tracker.Middleware())
	}
	r.SetHTMLTemplate(parseTemplates())

	r.GET("/", s.home)
	r.GET("/projects", s.projects)
	r.GET("/skills", s.skills)
	r.GET("/about", s.about)
	r.GET("/contact", s.contactForm)
	r.POST("/contact", s.contactSubmit)

	api := r.Group("/api/content")
	api.GET("/personal-info", s.apiPersonalInfo)
	api.GET("/projects", s.apiProjects)
	api.GET("/skills", s.apiSkills)
	api.GET("/skills/stats", s.apiSkillStats)
	api.GET("/certifications", s.apiCertifications)
	api.GET("/journey-timeline", s.apiJourneyTimeline)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if s.sitemap != nil {
		r.GET("/sitemap.xml", s.sitemapXML)
		r.GET("/sitemap.html", s.sitemapHTML)
	}
	if opts.Relay != nil {
		opts.Relay.Register(r)
	}
	if opts.Admin != nil {
		opts.Admin.Register(r)
	}

	r.NoRoute(s.notFound)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	return Serve(ctx, addr, s.engine, s.logger)
}

// Serve runs h on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		)
	}
}

func (s *Server) sitemapXML(c *gin.Context) {
	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.sitemap.WriteXML(c.Writer); err != nil {
		s.logger.Error("error writing sitemap", "error", err)
	}
}

func (s *Server) sitemapHTML(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.sitemap.WriteHTML(c.Writer); err != nil {
		s.logger.Error("error writing sitemap", "error", err)
	}
}
