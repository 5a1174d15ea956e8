// Package intelclient talks to the CyberShield intelligence API over HTTP.
// It serves both the managed-store routes under /api/v1 and the feed routes
// under /api.
package intelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/version"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("intel api: %d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
	}
	return fmt.Sprintf("intel api: %d %s", e.Code, http.StatusText(e.Code))
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.Code }

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default client. The default has no timeout;
// bound requests with the context instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// FeedThreats fetches GET /api/threats.
func (c *Client) FeedThreats(ctx context.Context) ([]models.FeedThreat, error) {
	var out []models.FeedThreat
	if err := c.do(ctx, http.MethodGet, "/api/threats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats fetches GET /api/threats/stats.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	err := c.do(ctx, http.MethodGet, "/api/threats/stats", nil, &out)
	return out, err
}

// Ingest triggers a feed pull and returns how many threats were added.
func (c *Client) Ingest(ctx context.Context, source string) (int, error) {
	var out struct {
		Added int `json:"added"`
	}
	path := "/api/threats/ingest?source=" + url.QueryEscape(source)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Added, nil
}

func (c *Client) ListThreats(ctx context.Context) ([]models.Threat, error) {
	var out []models.Threat
	if err := c.do(ctx, http.MethodGet, "/api/v1/threats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateThreat(ctx context.Context, threat models.Threat) (*models.Threat, error) {
	var out models.Threat
	if err := c.do(ctx, http.MethodPost, "/api/v1/threats", threat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateThreat(ctx context.Context, id string, patch models.ThreatPatch) (*models.Threat, error) {
	var out models.Threat
	if err := c.do(ctx, http.MethodPatch, "/api/v1/threats/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteThreat(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/threats/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListMetrics(ctx context.Context) ([]models.SecurityMetric, error) {
	var out []models.SecurityMetric
	if err := c.do(ctx, http.MethodGet, "/api/v1/security-metrics", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListThreatActors(ctx context.Context) ([]models.ThreatActor, error) {
	var out []models.ThreatActor
	if err := c.do(ctx, http.MethodGet, "/api/v1/threat-actors", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(raw, &payload) == nil {
				se.Message = payload.Error
			}
		}
		return se
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
