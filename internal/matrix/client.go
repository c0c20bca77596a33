package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the subset of the client-server API the editor relies on.
// It is implemented by *Client and can be faked in tests.
type API interface {
	WhoAmI(ctx context.Context) (string, error)
	ResolveAlias(ctx context.Context, alias string) (string, error)
	PowerLevels(ctx context.Context, roomID string) (PowerLevels, error)
	SetPowerLevels(ctx context.Context, roomID string, content PowerLevels) (string, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to a Matrix homeserver's client-server API.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	accessToken string
	userAgent   string
}

// Options configures NewClient.
type Options struct {
	HomeserverURL string
	AccessToken   string
	UserAgent     string
	Timeout       time.Duration
}

const (
	defaultUserAgent = "roomperms/0.1"
	requestTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20
)

// NewClient builds a Client for the homeserver in opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.HomeserverURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:     base,
		http:        &http.Client{Timeout: timeout},
		accessToken: opts.AccessToken,
		userAgent:   userAgent,
	}, nil
}

// WhoAmI returns the user id owning the access token.
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := c.do(ctx, http.MethodGet, nil, &payload, "account", "whoami"); err != nil {
		return "", err
	}
	return payload.UserID, nil
}

// ResolveAlias maps a #alias:server to its room id.
func (c *Client) ResolveAlias(ctx context.Context, alias string) (string, error) {
	alias = strings.TrimSpace(alias)
	if !strings.HasPrefix(alias, "#") {
		return "", fmt.Errorf("room alias %q must start with #", alias)
	}
	var payload struct {
		RoomID string `json:"room_id"`
	}
	if err := c.do(ctx, http.MethodGet, nil, &payload, "directory", "room", url.PathEscape(alias)); err != nil {
		return "", err
	}
	if payload.RoomID == "" {
		return "", fmt.Errorf("alias %s resolved to an empty room id", alias)
	}
	return payload.RoomID, nil
}

// PowerLevels fetches the m.room.power_levels content of roomID.
func (c *Client) PowerLevels(ctx context.Context, roomID string) (PowerLevels, error) {
	var payload PowerLevels
	if err := c.do(ctx, http.MethodGet, nil, &payload, stateSegments(roomID)...); err != nil {
		return PowerLevels{}, err
	}
	return payload, nil
}

// SetPowerLevels replaces the m.room.power_levels content of roomID and
// returns the new event id.
func (c *Client) SetPowerLevels(ctx context.Context, roomID string, content PowerLevels) (string, error) {
	var payload struct {
		EventID string `json:"event_id"`
	}
	if err := c.do(ctx, http.MethodPut, content, &payload, stateSegments(roomID)...); err != nil {
		return "", err
	}
	return payload.EventID, nil
}

func stateSegments(roomID string) []string {
	return []string{"rooms", url.PathEscape(roomID), "state", EventTypePowerLevels + "/"}
}

func (c *Client) do(ctx context.Context, method string, body, dest any, segments ...string) error {
	rel := c.baseURL.JoinPath(append([]string{"_matrix", "client", "v3"}, segments...)...)
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, reqURL *url.URL, body, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var matrixErr MatrixError
		if jsonErr := json.Unmarshal(data, &matrixErr); jsonErr != nil || matrixErr.Code == "" {
			return fmt.Errorf("%s %s returned status %d", method, reqURL.Path, resp.StatusCode)
		}
		matrixErr.StatusCode = resp.StatusCode
		return &matrixErr
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(homeserver string) (*url.URL, error) {
	trimmed := strings.TrimSpace(homeserver)
	if trimmed == "" {
		return nil, fmt.Errorf("homeserver url is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse homeserver url %q: %w", homeserver, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("homeserver url %q has no host", homeserver)
	}
	u.Path = "/"
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
