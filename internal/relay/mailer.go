package relay

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"

	"github.com/Zachkp/portfolio/internal/logging"
)

// Email is one outbound HTML message.
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer sends a single email and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, e Email) (string, error)
}

// ResendMailer delivers through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
}

// NewResendMailer creates a Resend-backed mailer.
func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

// Send implements Mailer.
func (m *ResendMailer) Send(ctx context.Context, e Email) (string, error) {
	resp, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.From,
		To:      e.To,
		ReplyTo: e.ReplyTo,
		Subject: e.Subject,
		Html:    e.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("relay.ResendMailer.Send: %w", err)
	}
	return resp.Id, nil
}

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers through an authenticated SMTP relay such as Gmail.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	pass     string
	sendMail SendMailFunc
}

// NewSMTPMailer creates an SMTP mailer using PLAIN auth.
func NewSMTPMailer(host, port, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		user:     user,
		pass:     pass,
		sendMail: smtp.SendMail,
	}
}

// Send implements Mailer. The envelope sender is always the authenticated
// user; e.From is only used for the From header.
func (m *SMTPMailer) Send(_ context.Context, e Email) (string, error) {
	if m.user == "" || m.pass == "" {
		return "", fmt.Errorf("relay.SMTPMailer.Send: SMTP credentials not configured")
	}

	id := uuid.NewString()
	from := e.From
	if from == "" {
		from = m.user
	}

	var b strings.Builder
	b.WriteString("To: " + headerValue(strings.Join(e.To, ", ")) + "\r\n")
	b.WriteString("From: " + headerValue(from) + "\r\n")
	if e.ReplyTo != "" {
		b.WriteString("Reply-To: " + headerValue(e.ReplyTo) + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", e.Subject) + "\r\n")
	b.WriteString("Message-ID: <" + id + "@" + m.host + ">\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.HTML + "\r\n")

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := m.sendMail(m.host+":"+m.port, auth, m.user, e.To, []byte(b.String())); err != nil {
		return "", fmt.Errorf("relay.SMTPMailer.Send: %w", err)
	}
	return id, nil
}

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// headerValue keeps an address header on one line.
func headerValue(v string) string {
	return lineBreaks.Replace(v)
}

// LogMailer only logs what it would have sent. Used in development.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a log-only mailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &LogMailer{logger: logger.With("component", "mailer")}
}

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, e Email) (string, error) {
	id := uuid.NewString()
	m.logger.Info("email not sent (log provider)",
		"id", id,
		"to_count", len(e.To),
		"subject", e.Subject,
		"html_length", len(e.HTML),
	)
	return id, nil
}
