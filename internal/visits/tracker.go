package visits

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
)

var skipPrefixes = []string{"/static/", "/images/", "/admin", "/favicon", "/privacy", "/metrics", "/healthz", "/api/"}

// Recorder stores visits.
type Recorder interface {
	Record(ctx context.Context, v Visit) error
}

// Tracker records page views in the background.
type Tracker struct {
	recorder Recorder
	salt     string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewTracker creates a tracker. An empty salt gets a random one, so hashes
// stay stable only for the life of the process.
func NewTracker(recorder Recorder, salt string, logger *slog.Logger, m *metrics.Metrics) *Tracker {
	if salt == "" {
		salt = RandomToken()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Tracker{
		recorder: recorder,
		salt:     salt,
		logger:   logger.With("component", "visits"),
		metrics:  m,
		timeout:  5 * time.Second,
	}
}

// RandomToken returns 32 random bytes hex encoded.
func RandomToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// HashIP returns a truncated salted SHA-256 of ip.
func (t *Tracker) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + t.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func skipped(path string) bool {
	for _, p := range skipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Middleware records successful GET page views. Requests with DNT: 1 and
// asset, admin, and API paths are not recorded.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || skipped(path) || c.GetHeader("DNT") == "1" {
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest || c.FullPath() == "" {
			return
		}

		v := Visit{
			HashedIP:  t.HashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
		}
		t.metrics.PageViews.WithLabelValues(c.FullPath()).Inc()

		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
			defer cancel()
			if err := t.recorder.Record(ctx, v); err != nil {
				t.logger.Error("error recording visitor", "error", err)
			}
		}()
	}
}

// Wait blocks until pending background writes finish.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
