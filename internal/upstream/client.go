// Package upstream is the client for the core DriveLink API, which owns
// event and approval-request state. Only the two reads the permission
// resolver needs are implemented here.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/DriveLinkHQ/dl-backend/internal/config"
)

type contextKey string

const userTokenKey contextKey = "upstream_user_token"

// WithUserToken attaches the caller's bearer token to the context so
// upstream calls are made with the caller's identity. The core API
// resolves "available actions" per authenticated user.
func WithUserToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, userTokenKey, token)
}

func userToken(ctx context.Context) string {
	token, _ := ctx.Value(userTokenKey).(string)
	return token
}

type Client struct {
	baseURL      string
	serviceToken string
	http         *http.Client
}

func New(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		serviceToken: cfg.ServiceToken,
		http:         &http.Client{Timeout: cfg.Timeout},
	}
}

// GetRequestActions fetches the authoritative action list for an approval
// request, as seen by the calling user.
func (c *Client) GetRequestActions(ctx context.Context, requestID string) ([]string, error) {
	var body struct {
		Actions []string `json:"actions"`
	}
	path := fmt.Sprintf("/api/requests/%s/actions", url.PathEscape(requestID))
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Actions, nil
}

// GetEventDetail fetches the full event record. The resolver uses it only
// to recover a missing approval-request linkage.
func (c *Client) GetEventDetail(ctx context.Context, eventID string) (map[string]any, error) {
	var body map[string]any
	path := fmt.Sprintf("/api/events/%s", url.PathEscape(eventID))
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building upstream request: %w", err)
	}

	token := userToken(ctx)
	if token == "" {
		token = c.serviceToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling upstream %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding upstream %s response: %w", path, err)
	}
	return nil
}
