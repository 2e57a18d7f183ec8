// Package rest is a content.Store that reads the hosted PostgREST interface
// the portfolio content lives behind.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Zachkp/portfolio/internal/content"
)

// HTTPError is a non-2xx response from the content API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client reads content tables over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the project at baseURL, authenticating with the
// anonymous API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PersonalInfo returns the single personal_info row.
func (c *Client) PersonalInfo(ctx context.Context) (content.PersonalInfo, error) {
	var rows []personalInfoRow
	if err := c.selectRows(ctx, content.TablePersonalInfo, url.Values{"limit": {"2"}}, &rows); err != nil {
		return content.PersonalInfo{}, fmt.Errorf("rest.PersonalInfo: %w", err)
	}
	switch len(rows) {
	case 0:
		return content.PersonalInfo{}, content.ErrSingletonNotFound
	case 1:
		return rows[0].toContent(), nil
	default:
		return content.PersonalInfo{}, content.ErrSingletonAmbiguous
	}
}

// Projects returns every project ordered by sort_order.
func (c *Client) Projects(ctx context.Context) ([]content.Project, error) {
	var rows []projectRow
	if err := c.selectRows(ctx, content.TableProjects, ordered(), &rows); err != nil {
		return nil, fmt.Errorf("rest.Projects: %w", err)
	}
	out := make([]content.Project, len(rows))
	for i, r := range rows {
		out[i] = r.toContent()
	}
	return out, nil
}

// Skills returns every skill ordered by sort_order.
func (c *Client) Skills(ctx context.Context) ([]content.Skill, error) {
	var rows []skillRow
	if err := c.selectRows(ctx, content.TableSkills, ordered(), &rows); err != nil {
		return nil, fmt.Errorf("rest.Skills: %w", err)
	}
	out := make([]content.Skill, len(rows))
	for i, r := range rows {
		out[i] = r.toContent()
	}
	return out, nil
}

// Certifications returns every certification ordered by sort_order.
func (c *Client) Certifications(ctx context.Context) ([]content.Certification, error) {
	var rows []certificationRow
	if err := c.selectRows(ctx, content.TableCertifications, ordered(), &rows); err != nil {
		return nil, fmt.Errorf("rest.Certifications: %w", err)
	}
	out := make([]content.Certification, len(rows))
	for i, r := range rows {
		out[i] = r.toContent()
	}
	return out, nil
}

// JourneyTimeline returns every timeline entry ordered by sort_order.
func (c *Client) JourneyTimeline(ctx context.Context) ([]content.JourneyEntry, error) {
	var rows []journeyRow
	if err := c.selectRows(ctx, content.TableJourneyTimeline, ordered(), &rows); err != nil {
		return nil, fmt.Errorf("rest.JourneyTimeline: %w", err)
	}
	out := make([]content.JourneyEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toContent()
	}
	return out, nil
}

func ordered() url.Values {
	return url.Values{"order": {"sort_order.asc.nullslast"}}
}

func (c *Client) selectRows(ctx context.Context, table string, params url.Values, out any) error {
	params.Set("select", "*")
	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(table) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
