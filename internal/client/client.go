package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"configgate/internal/auth"
)

// ErrUnauthorized is returned for a 401 from either endpoint. Callers show
// it as "invalid username or password".
var ErrUnauthorized = errors.New("unauthorized")

const maxArtifactBytes = 16 << 20

// StatusError reports a non-2xx status other than 401.
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	Logger       *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		RetryMax:     3,
		RetryWaitMin: 250 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		Timeout:      10 * time.Second,
	}
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New builds a client that retries transport errors and 5xx responses.
// 4xx responses are final.
func New(baseURL string, opts Options) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	// Return the last response instead of a "giving up" error so callers
	// still see the status code.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}
	hc := rc.StandardClient()
	hc.Timeout = opts.Timeout
	return &Client{BaseURL: baseURL, HTTPClient: hc}
}

func (c *Client) endpoint(path string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return "", errors.New("base url required")
	}
	return base + path, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return cleanhttp.DefaultClient()
	}
	return c.HTTPClient
}

// Login posts the credential as a form and returns the issued tokens.
func (c *Client) Login(ctx context.Context, username, password string) (auth.Tokens, error) {
	u, err := c.endpoint("/login")
	if err != nil {
		return auth.Tokens{}, err
	}
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return auth.Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return auth.Tokens{}, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus("login", resp); err != nil {
		return auth.Tokens{}, err
	}
	var tokens auth.Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return auth.Tokens{}, fmt.Errorf("login: decode response: %w", err)
	}
	if tokens.AccessToken == "" {
		return auth.Tokens{}, errors.New("login: response has no accessToken")
	}
	return tokens, nil
}

// FetchConfig downloads the config artifact using a bearer token.
func (c *Client) FetchConfig(ctx context.Context, token string) ([]byte, error) {
	u, err := c.endpoint("/config")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", auth.BearerHeader(token))
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus("fetch config", resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch config: read body: %w", err)
	}
	if len(data) > maxArtifactBytes {
		return nil, errors.New("fetch config: artifact too large")
	}
	return data, nil
}

// checkStatus accepts any 2xx, so a backend answering 201 for login works
// the same as one answering 200.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	return &StatusError{Op: op, Status: resp.StatusCode}
}
