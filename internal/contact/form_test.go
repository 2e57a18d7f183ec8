package contact

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/metrics"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	calls atomic.Int32
	got   []Submission
	err   error
	gate  chan struct{}
}

func (r *recordingSubmitter) Submit(ctx context.Context, s Submission) error {
	r.calls.Add(1)
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	r.got = append(r.got, s)
	r.mu.Unlock()
	return r.err
}

func filledForm(sub Submitter) *Form {
	f := NewForm(sub, nil, nil)
	f.Set(FieldName, "Ada Lovelace")
	f.Set(FieldEmail, "ada@example.com")
	f.Set(FieldMessage, "Hello there")
	return f
}

func TestSubmit_Success(t *testing.T) {
	sub := &recordingSubmitter{}
	reg := prometheus.NewRegistry()
	f := NewForm(sub, nil, metrics.New(reg))
	f.SetAll(Submission{Name: " Ada ", Email: "ada@example.com", Message: "Hi\n"})

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, StateSucceeded, f.State())
	assert.Equal(t, Submission{}, f.Fields())
	assert.Equal(t, SuccessMessage, f.StatusMessage())
	require.Len(t, sub.got, 1)
	assert.Equal(t, Submission{Name: "Ada", Email: "ada@example.com", Message: "Hi"}, sub.got[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ContactSubmissions.WithLabelValues("succeeded")))
}

func TestSubmit_FailureKeepsFields(t *testing.T) {
	boom := errors.New("relay unavailable")
	sub := &recordingSubmitter{err: boom}
	f := filledForm(sub)
	before := f.Fields()

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, f.State())
	assert.ErrorIs(t, f.Err(), boom)
	assert.Equal(t, before, f.Fields())
	assert.Equal(t, FailureMessage, f.StatusMessage())
	assert.True(t, f.CanSubmit())
}

func TestSubmit_InvalidDoesNotSend(t *testing.T) {
	tests := []struct {
		name   string
		fields Submission
	}{
		{"empty", Submission{}},
		{"blank name", Submission{Name: "   ", Email: "a@b.co", Message: "m"}},
		{"bad email", Submission{Name: "A", Email: "not-an-email", Message: "m"}},
		{"blank message", Submission{Name: "A", Email: "a@b.co", Message: "\n\t"}},
		{"line break in name", Submission{Name: "A\r\nBcc: x@evil.example", Email: "a@b.co", Message: "m"}},
		{"line break in email", Submission{Name: "A", Email: "a@b.co\nBcc: x@evil.example", Message: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &recordingSubmitter{}
			f := NewForm(sub, nil, nil)
			f.SetAll(tt.fields)

			err := f.Submit(context.Background())
			assert.ErrorIs(t, err, ErrInvalidSubmission)
			assert.Equal(t, StateIdle, f.State())
			assert.Equal(t, tt.fields, f.Fields())
			assert.Zero(t, sub.calls.Load())
		})
	}
}

func TestSubmit_SingleFlight(t *testing.T) {
	sub := &recordingSubmitter{gate: make(chan struct{})}
	f := filledForm(sub)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return f.State() == StateSubmitting }, time.Second, time.Millisecond)
	assert.False(t, f.CanSubmit())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrSubmitInFlight)

	// edits are ignored while a submission is pending
	f.Set(FieldName, "Someone Else")
	assert.Equal(t, "Ada Lovelace", f.Fields().Name)

	close(sub.gate)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), sub.calls.Load())
	assert.Equal(t, StateSucceeded, f.State())
}

func TestSet_ResetsTerminalState(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("down")}
	f := filledForm(sub)
	require.Error(t, f.Submit(context.Background()))
	require.Equal(t, StateFailed, f.State())

	f.Set(FieldMessage, "Trying again")
	assert.Equal(t, StateIdle, f.State())
	assert.NoError(t, f.Err())
	assert.Empty(t, f.StatusMessage())

	sub.err = nil
	require.NoError(t, f.Submit(context.Background()))
	require.Equal(t, StateSucceeded, f.State())

	f.Set(FieldName, "Ada")
	assert.Equal(t, StateIdle, f.State())
}

func TestSubmit_RetryAfterFailure(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("down")}
	f := filledForm(sub)
	require.Error(t, f.Submit(context.Background()))

	sub.err = nil
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, int32(2), sub.calls.Load())
	assert.Equal(t, StateSucceeded, f.State())
}

func TestSubmitterFunc(t *testing.T) {
	var got Submission
	f := filledForm(SubmitterFunc(func(_ context.Context, s Submission) error {
		got = s
		return nil
	}))
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
}

func TestSubmit_NoSubmitter(t *testing.T) {
	f := filledForm(nil)

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoSubmitter)
	assert.Equal(t, StateFailed, f.State())
	assert.Equal(t, FailureMessage, f.StatusMessage())
	assert.Equal(t, "Ada Lovelace", f.Fields().Name)
}
