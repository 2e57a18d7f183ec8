// Package relay implements the contact mail relay: it validates a contact
// submission, notifies the site owner, and sends the sender a confirmation.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
)

var (
	// ErrInvalidRequest wraps validation failures. No email is sent.
	ErrInvalidRequest = errors.New("relay: invalid request")
	// ErrOwnerNotification means the owner was not notified.
	ErrOwnerNotification = errors.New("relay: owner notification failed")
)

// Options configures a Service.
type Options struct {
	Mailer     Mailer
	OwnerEmail string
	OwnerName  string
	From       string // bare address, e.g. onboarding@resend.dev
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Receipt describes a delivery. ConfirmationErr is set when the owner was
// notified but the confirmation to the sender failed.
type Receipt struct {
	OwnerMessageID        string
	ConfirmationMessageID string
	ConfirmationErr       error
}

// Partial reports whether only the owner notification went out.
func (r Receipt) Partial() bool { return r.ConfirmationErr != nil }

// Service sends the two contact emails.
type Service struct {
	mailer     Mailer
	ownerEmail string
	ownerName  string
	from       string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewService creates a relay service.
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNop()
	}
	return &Service{
		mailer:     opts.Mailer,
		ownerEmail: opts.OwnerEmail,
		ownerName:  opts.OwnerName,
		from:       opts.From,
		logger:     opts.Logger.With("component", "relay"),
		metrics:    opts.Metrics,
	}
}

// Deliver validates s, sends the owner notification and then the sender
// confirmation. Both sends are attempted. An error is returned when s is
// invalid (wrapping ErrInvalidRequest) or the owner was not notified
// (wrapping ErrOwnerNotification); a failed confirmation alone is reported
// on the Receipt.
func (s *Service) Deliver(ctx context.Context, sub contact.Submission) (Receipt, error) {
	if err := sub.Validate(); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	sub = sub.Trimmed()
	s.logger.Info("received contact form data", "message_length", len(sub.Message))

	data := emailData{Submission: sub, OwnerName: s.ownerName}
	ownerHTML, err := render(ownerTmpl, data)
	if err != nil {
		return Receipt{}, err
	}
	confirmHTML, err := render(confirmationTmpl, data)
	if err != nil {
		return Receipt{}, err
	}

	var receipt Receipt
	ownerID, ownerErr := s.send(ctx, "owner", Email{
		From:    fmt.Sprintf("Portfolio Contact <%s>", s.from),
		To:      []string{s.ownerEmail},
		ReplyTo: sub.Email,
		Subject: "New Contact Form Message from " + sub.Name,
		HTML:    ownerHTML,
	})
	receipt.OwnerMessageID = ownerID

	confirmID, confirmErr := s.send(ctx, "confirmation", Email{
		From:    fmt.Sprintf("%s <%s>", s.ownerName, s.from),
		To:      []string{sub.Email},
		Subject: "Thank you for contacting me!",
		HTML:    confirmHTML,
	})
	receipt.ConfirmationMessageID = confirmID

	if ownerErr != nil {
		return receipt, fmt.Errorf("%w: %w", ErrOwnerNotification, ownerErr)
	}
	if confirmErr != nil {
		receipt.ConfirmationErr = confirmErr
		s.logger.Warn("owner notified but confirmation failed", "error", confirmErr)
		return receipt, nil
	}
	s.logger.Info("emails sent successfully", "owner_id", ownerID, "confirmation_id", confirmID)
	return receipt, nil
}

func (s *Service) send(ctx context.Context, kind string, e Email) (string, error) {
	id, err := s.mailer.Send(ctx, e)
	if err != nil {
		s.metrics.RelaySends.WithLabelValues(kind, "error").Inc()
		s.logger.Error("error sending email", "kind", kind, "error", err)
		return "", err
	}
	s.metrics.RelaySends.WithLabelValues(kind, "ok").Inc()
	return id, nil
}

// Submit lets the site's contact form deliver in process. It implements
// contact.Submitter; a partial delivery counts as sent.
func (s *Service) Submit(ctx context.Context, sub contact.Submission) error {
	_, err := s.Deliver(ctx, sub)
	return err
}
