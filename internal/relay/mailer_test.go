package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/logging"
)

func TestSMTPMailer_Send(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	m := NewSMTPMailer("smtp.example.com", "587", "me@example.com", "app-pass")
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	id, err := m.Send(context.Background(), Email{
		From:    "Portfolio Contact <me@example.com>",
		To:      []string{"owner@example.com"},
		ReplyTo: "grace@example.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "me@example.com", gotFrom)
	assert.Equal(t, []string{"owner@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Reply-To: grace@example.com\r\n")
	assert.Contains(t, string(gotMsg), "Content-Type: text/html")
	assert.Contains(t, string(gotMsg), "\r\n\r\n<p>hi</p>")
}

func TestSMTPMailer_HeadersStayOnOneLine(t *testing.T) {
	var gotMsg []byte
	m := NewSMTPMailer("smtp.example.com", "587", "me@example.com", "app-pass")
	m.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	_, err := m.Send(context.Background(), Email{
		From:    "Eve\r\nX-From: yes <me@example.com>",
		To:      []string{"owner@example.com"},
		ReplyTo: "eve@example.com\r\nCc: victim@evil.example",
		Subject: "Hi\r\nBcc: victim@evil.example\r\n\r\n<p>forged</p>",
		HTML:    "<p>real</p>",
	})
	require.NoError(t, err)

	head, body, found := strings.Cut(string(gotMsg), "\r\n\r\n")
	require.True(t, found)
	for _, line := range strings.Split(head, "\r\n") {
		assert.NotRegexp(t, `^(Bcc|Cc|X-From):`, line)
	}
	assert.Contains(t, head, "Subject: =?utf-8?q?")
	assert.Equal(t, "<p>real</p>\r\n", body)
}

func TestSMTPMailer_Errors(t *testing.T) {
	_, err := NewSMTPMailer("smtp.example.com", "587", "", "").Send(context.Background(), Email{To: []string{"x@y.z"}})
	assert.ErrorContains(t, err, "SMTP credentials not configured")

	m := NewSMTPMailer("smtp.example.com", "587", "u", "p")
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("535 auth failed") }
	_, err = m.Send(context.Background(), Email{To: []string{"x@y.z"}})
	assert.ErrorContains(t, err, "535 auth failed")
}

func TestLogMailer_DoesNotLogBody(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(logging.New(logging.Options{Output: &buf}))
	id, err := m.Send(context.Background(), Email{To: []string{"x@y.z"}, Subject: "S", HTML: "secret message"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotContains(t, buf.String(), "secret message")
	assert.Contains(t, buf.String(), "html_length=14")
}

func TestResendMailer_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"4ef9a417"}`))
	}))
	defer srv.Close()

	m := NewResendMailer("re_test")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	m.client.BaseURL = base

	id, err := m.Send(context.Background(), Email{
		From:    "Portfolio Contact <onboarding@resend.dev>",
		To:      []string{"owner@example.com"},
		Subject: "New Contact Form Message from Grace",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "4ef9a417", id)
	assert.Equal(t, "New Contact Form Message from Grace", got["subject"])
	assert.Equal(t, "<p>hi</p>", got["html"])
}
