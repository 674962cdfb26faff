// Package tenant is the HTTP client for the remote identity platform. It
// shapes every request the same way: JSON (or form-encoded) bodies, bearer
// authorization, Accept/Accept-Language headers, and typed errors carrying
// the remote error body for non-2xx responses.
package tenant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client issues requests against a single tenant.
type Client struct {
	TenantURL  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New creates a tenant client. The tenant URL must include the scheme.
func New(tenantURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		TenantURL:  strings.TrimSuffix(tenantURL, "/"),
		HTTPClient: httpClient,
		Logger:     logger,
	}
}

// Get sends a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, accessToken, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, accessToken, path, query, nil, out)
}

// Post sends a JSON POST request and decodes the JSON response into out.
// A nil body sends an empty JSON object, matching what the platform's
// verification-creation endpoints expect.
func (c *Client) Post(ctx context.Context, accessToken, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, accessToken, path, query, body, out)
}

// Patch sends a JSON PATCH request and decodes the JSON response into out.
func (c *Client) Patch(ctx context.Context, accessToken, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPatch, accessToken, path, query, body, out)
}

// PostForm sends an x-www-form-urlencoded POST, used for the OAuth token,
// introspection and revocation endpoints. Client credentials travel in the
// form body, not the Authorization header.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TenantURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(req, out)
}

func (c *Client) do(ctx context.Context, method, accessToken, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if method != http.MethodGet {
		payload := body
		if payload == nil {
			payload = struct{}{}
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	endpoint := c.TenantURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	c.Logger.Debug("tenant request", "method", req.Method, "path", req.URL.Path)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Logger.Debug("tenant error response",
			"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return newRemoteError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
