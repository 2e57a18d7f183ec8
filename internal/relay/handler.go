package relay

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
)

// Path is the relay route.
const Path = contact.RelayPath

// MaxBodyBytes caps the size of a relay request body.
const MaxBodyBytes = 64 << 10

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// MessageID is the provider id of one sent email.
type MessageID struct {
	ID string `json:"id"`
}

// Response is the relay's JSON body.
type Response struct {
	Success           bool       `json:"success"`
	Message           string     `json:"message,omitempty"`
	Partial           bool       `json:"partial,omitempty"`
	EmailToOwner      *MessageID `json:"emailToOwner,omitempty"`
	ConfirmationEmail *MessageID `json:"confirmationEmail,omitempty"`
	ConfirmationError string     `json:"confirmationError,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// HandlerOptions configures the HTTP handler.
type HandlerOptions struct {
	// RatePerMinute limits POSTs per client IP. Zero disables limiting.
	RatePerMinute float64
	Burst         int
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
}

// Handler serves the relay over HTTP.
type Handler struct {
	service *Service
	limits  *clientLimiter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler wraps service for HTTP.
func NewHandler(service *Service, opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	h := &Handler{
		service: service,
		logger:  opts.Logger.With("component", "relay_handler"),
		metrics: opts.Metrics,
	}
	if opts.RatePerMinute > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		h.limits = newClientLimiter(rate.Limit(opts.RatePerMinute/60), burst)
	}
	return h
}

// Register mounts the relay routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.OPTIONS(Path, cors(), h.preflight)
	r.POST(Path, cors(), h.send)
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range corsHeaders {
			c.Header(k, v)
		}
		c.Next()
	}
}

func (h *Handler) preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *Handler) send(c *gin.Context) {
	h.logger.Debug("contact email function called")

	if h.limits != nil && !h.limits.allow(c.ClientIP()) {
		h.metrics.RelayRequests.WithLabelValues("limited").Inc()
		c.JSON(http.StatusTooManyRequests, Response{Error: "Too many requests, please try again later"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.metrics.RelayRequests.WithLabelValues("invalid").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, Response{Error: "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, Response{Error: "Invalid request body"})
		return
	}

	receipt, err := h.service.Deliver(c.Request.Context(), sub)
	switch {
	case errors.Is(err, ErrInvalidRequest):
		h.metrics.RelayRequests.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, Response{Error: invalidMessage(err)})
	case err != nil:
		h.metrics.RelayRequests.WithLabelValues("failed").Inc()
		h.logger.Error("error in send-contact-email", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Error: err.Error()})
	case receipt.Partial():
		h.metrics.RelayRequests.WithLabelValues("partial").Inc()
		c.JSON(http.StatusOK, Response{
			Success:           true,
			Partial:           true,
			Message:           "Message delivered; confirmation email could not be sent",
			EmailToOwner:      &MessageID{ID: receipt.OwnerMessageID},
			ConfirmationError: receipt.ConfirmationErr.Error(),
		})
	default:
		h.metrics.RelayRequests.WithLabelValues("success").Inc()
		c.JSON(http.StatusOK, Response{
			Success:           true,
			Message:           "Emails sent successfully",
			EmailToOwner:      &MessageID{ID: receipt.OwnerMessageID},
			ConfirmationEmail: &MessageID{ID: receipt.ConfirmationMessageID},
		})
	}
}

func invalidMessage(err error) string {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return "Invalid contact form: " + fieldErrs.Error()
	}
	return "Invalid contact form"
}

const limiterIdle = 10 * time.Minute

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientEntry
	now     func() time.Time
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   limit,
		burst:   burst,
		clients: make(map[string]*clientEntry),
		now:     time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= 1024 {
			l.pruneLocked(now)
		}
		e = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *clientLimiter) pruneLocked(now time.Time) {
	for k, e := range l.clients {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(l.clients, k)
		}
	}
}
