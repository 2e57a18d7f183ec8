package visits

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/querycache"
)

const tokenCookie = "admin_token"

// ContentRefresher drops cached content so the next read reloads it.
type ContentRefresher interface {
	InvalidateAll() []querycache.Key
}

// AdminOptions configures the admin API.
type AdminOptions struct {
	Username  string
	Password  string
	Token     string // random per process when empty
	Retention time.Duration
	Logger    *slog.Logger
}

// Admin serves the authenticated admin API.
type Admin struct {
	store     *Store
	tracker   *Tracker
	refresher ContentRefresher
	username  string
	password  string
	token     string
	retention time.Duration
	logger    *slog.Logger
}

// NewAdmin creates the admin API. refresher may be nil when the process has
// no content cache.
func NewAdmin(store *Store, tracker *Tracker, refresher ContentRefresher, opts AdminOptions) *Admin {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Token == "" {
		opts.Token = RandomToken()
	}
	if opts.Retention <= 0 {
		opts.Retention = 365 * 24 * time.Hour
	}
	return &Admin{
		store:     store,
		tracker:   tracker,
		refresher: refresher,
		username:  opts.Username,
		password:  opts.Password,
		token:     opts.Token,
		retention: opts.Retention,
		logger:    opts.Logger.With("component", "admin"),
	}
}

// LoginEnabled reports whether username/password login is configured.
func (a *Admin) LoginEnabled() bool {
	return a.username != "" && a.password != ""
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// AuthMiddleware accepts the admin cookie or an Authorization bearer token.
func (a *Admin) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(tokenCookie)
		if err != nil || token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" || !equal(token, a.token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Register mounts the admin routes under /admin.
func (a *Admin) Register(r gin.IRouter) {
	g := r.Group("/admin")
	g.POST("/login", a.login)
	g.POST("/logout", a.logout)

	api := g.Group("/api", a.AuthMiddleware())
	api.GET("/stats", a.stats)
	api.GET("/visitors", a.visitors)
	api.POST("/content/refresh", a.refreshContent)
	api.POST("/privacy/cleanup", a.cleanup)
	api.GET("/export/stats", a.exportStats)
}

func (a *Admin) login(c *gin.Context) {
	if !a.LoginEnabled() {
		c.JSON(http.StatusNotFound, gin.H{"error": "admin login is not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login request"})
		return
	}

	userOK := equal(req.Username, a.username)
	passOK := equal(req.Password, a.password)
	who := a.tracker.HashIP(c.ClientIP())
	if !userOK || !passOK {
		a.logger.Warn("failed admin login attempt", "client", who)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(tokenCookie, a.token, 3600*24, "/admin", "", c.Request.TLS != nil, true)
	a.logger.Info("admin login successful", "client", who)
	c.JSON(http.StatusOK, gin.H{"message": "logged in"})
}

func (a *Admin) logout(c *gin.Context) {
	c.SetCookie(tokenCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
	a.logger.Info("admin logout", "client", a.tracker.HashIP(c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *Admin) stats(c *gin.Context) {
	stats, err := a.store.Stats(c.Request.Context())
	if err != nil {
		a.logger.Error("error loading admin stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (a *Admin) visitors(c *gin.Context) {
	limit := 200
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}
	visits, err := a.store.Recent(c.Request.Context(), limit)
	if err != nil {
		a.logger.Error("error loading visitors", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitors": visits})
}

func (a *Admin) refreshContent(c *gin.Context) {
	if a.refresher == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no content cache in this process"})
		return
	}
	keys := a.refresher.InvalidateAll()
	a.logger.Info("content cache invalidated", "keys", len(keys))
	c.JSON(http.StatusOK, gin.H{"invalidated": keys})
}

func (a *Admin) cleanup(c *gin.Context) {
	n, err := a.Cleanup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "deleted": n})
}

// Cleanup removes visits past the retention window.
func (a *Admin) Cleanup(ctx context.Context) (int64, error) {
	n, err := a.store.Cleanup(ctx, a.retention)
	if err != nil {
		a.logger.Error("error cleaning up old visitor data", "error", err)
		return 0, err
	}
	if n > 0 {
		a.logger.Info("privacy cleanup removed old visitor records", "deleted", n, "retention", a.retention)
	}
	return n, nil
}

func (a *Admin) exportStats(c *gin.Context) {
	stats, err := a.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
	a.logger.Info("admin stats exported", "client", a.tracker.HashIP(c.ClientIP()))
	c.JSON(http.StatusOK, stats)
}
