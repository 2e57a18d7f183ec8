// Package contact holds the contact form controller: field state,
// validation, and the Idle → Submitting → Succeeded|Failed lifecycle that
// drives one call to the mail relay.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
)

// State is the submission lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

var (
	// ErrSubmitInFlight is returned by Submit while a submission is pending.
	ErrSubmitInFlight = errors.New("contact: submission already in progress")
	// ErrInvalidSubmission wraps field validation failures.
	ErrInvalidSubmission = errors.New("contact: invalid submission")
	// ErrNoSubmitter is returned by Submit when the form has no relay.
	ErrNoSubmitter = errors.New("contact: no submitter configured")
)

// Messages shown for the terminal states.
const (
	SuccessMessage = "Thank you for your message! I'll get back to you soon."
	FailureMessage = "Sorry, there was an error sending your message. Please try again later."
)

// Submission is the payload sent to the relay.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (s Submission) Trimmed() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Message: strings.TrimSpace(s.Message),
	}
}

// singleLine rejects control characters. Name and email end up in mail
// headers.
var singleLine = validation.Match(regexp.MustCompile(`^[^\p{Cc}]*$`)).
	Error("must not contain control characters")

// Validate requires every field to be non-blank and the email to be well
// formed. Name and email must be a single line.
func (s Submission) Validate() error {
	t := s.Trimmed()
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, singleLine),
		validation.Field(&t.Email, validation.Required, singleLine, is.EmailFormat),
		validation.Field(&t.Message, validation.Required),
	)
}

// Submitter delivers one submission to the relay.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, s Submission) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, s Submission) error { return f(ctx, s) }

// Form is the contact form controller. It is safe for concurrent use; at
// most one submission is in flight at a time.
type Form struct {
	mu        sync.Mutex
	fields    Submission
	state     State
	lastErr   error
	submitter Submitter
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewForm returns an empty form in the Idle state.
func NewForm(submitter Submitter, logger *slog.Logger, m *metrics.Metrics) *Form {
	if logger == nil {
		logger = logging.Discard()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Form{
		submitter: submitter,
		logger:    logger.With("component", "contact"),
		metrics:   m,
	}
}

// Set updates one field. Editing after a finished submission returns the
// form to Idle. Edits are ignored while submitting.
func (f *Form) Set(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return
	}
	switch field {
	case FieldName:
		f.fields.Name = value
	case FieldEmail:
		f.fields.Email = value
	case FieldMessage:
		f.fields.Message = value
	default:
		return
	}
	f.resetLocked()
}

// SetAll replaces every field at once.
func (f *Form) SetAll(s Submission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return
	}
	f.fields = s
	f.resetLocked()
}

func (f *Form) resetLocked() {
	if f.state == StateSucceeded || f.state == StateFailed {
		f.state = StateIdle
		f.lastErr = nil
	}
}

// Fields returns the current field values.
func (f *Form) Fields() Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// State returns the lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error that moved the form to Failed, if any.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool {
	return f.State() != StateSubmitting
}

// StatusMessage returns the user-facing message for the current state.
func (f *Form) StatusMessage() string {
	switch f.State() {
	case StateSucceeded:
		return SuccessMessage
	case StateFailed:
		return FailureMessage
	default:
		return ""
	}
}

// Submit validates the fields and sends them to the relay. It returns
// ErrSubmitInFlight without sending while another submission is pending, and
// an ErrInvalidSubmission-wrapped error without sending or changing state
// when validation fails. On success the fields are cleared; on failure they
// are kept so the user can retry.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	payload := f.fields
	if err := payload.Validate(); err != nil {
		f.mu.Unlock()
		f.metrics.ContactSubmissions.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	if f.submitter == nil {
		f.state = StateFailed
		f.lastErr = ErrNoSubmitter
		f.mu.Unlock()
		f.metrics.ContactSubmissions.WithLabelValues("failed").Inc()
		f.logger.Error("contact form submitted but no mail relay is configured")
		return ErrNoSubmitter
	}
	f.state = StateSubmitting
	f.lastErr = nil
	f.mu.Unlock()

	payload = payload.Trimmed()
	f.logger.Info("submitting contact form", "email_present", payload.Email != "", "message_length", len(payload.Message))
	err := f.submitter.Submit(ctx, payload)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		f.lastErr = err
		f.metrics.ContactSubmissions.WithLabelValues("failed").Inc()
		f.logger.Error("error sending contact form", "error", err)
		return err
	}
	f.state = StateSucceeded
	f.fields = Submission{}
	f.metrics.ContactSubmissions.WithLabelValues("succeeded").Inc()
	f.logger.Info("contact form sent")
	return nil
}
