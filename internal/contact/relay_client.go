package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RelayPath is the relay function's route.
const RelayPath = "/send-contact-email"

// HTTPError is a non-2xx relay response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// RelayClient submits contact messages to a remote relay function.
type RelayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRelayClient creates a client for the relay hosted at baseURL. apiKey,
// when set, is sent the way the hosted function gateway expects it.
func NewRelayClient(baseURL, apiKey string) *RelayClient {
	return &RelayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type relayResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Submit posts s and fails on transport errors, non-2xx statuses, or a
// {success:false} body.
func (c *RelayClient) Submit(ctx context.Context, s Submission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("contact.Submit: marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RelayPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("contact.Submit: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contact.Submit: do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("contact.Submit: read response: %w", err)
	}

	var out relayResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode >= 300 {
		msg := string(body)
		if decodeErr == nil && out.Error != "" {
			msg = out.Error
		}
		return fmt.Errorf("contact.Submit: %w", &HTTPError{StatusCode: resp.StatusCode, Message: msg})
	}
	if decodeErr != nil {
		return fmt.Errorf("contact.Submit: decode response: %w", decodeErr)
	}
	if !out.Success {
		return fmt.Errorf("contact.Submit: relay reported failure: %s", out.Error)
	}
	return nil
}
