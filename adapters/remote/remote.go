// Package remote provides adapters that talk to the catalog REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/artpar/catalogctl/adapters/metrics"
	"github.com/artpar/catalogctl/ports"
	"github.com/rs/zerolog"
)

// Client provides HTTP communication with the catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	logger     zerolog.Logger
	metrics    *metrics.Collector

	mu    sync.RWMutex
	token string
}

// ClientConfig configures the remote client.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Headers map[string]string
	Logger  zerolog.Logger
	Metrics *metrics.Collector
}

// NewClient creates a new catalog API client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		headers:    cfg.Headers,
		logger:     cfg.Logger.With().Str("component", "catalog_client").Logger(),
		metrics:    cfg.Metrics,
	}
}

// Call describes one API request.
type Call struct {
	Op          string // metric and log label
	Method      string
	Path        string
	Query       url.Values
	ContentType string // defaults to application/json when Body is set
	Body        any
}

// Send executes the call and returns the raw response. Statuses >= 400 are
// returned as *RemoteError.
func (c *Client) Send(ctx context.Context, call Call) (ports.Response, error) {
	start := time.Now()
	resp, err := c.send(ctx, call)
	c.metrics.ObserveClient(call.Op, resp.StatusCode, time.Since(start), err)

	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}
	event.Str("op", call.Op).
		Str("method", call.Method).
		Str("path", call.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("catalog request")

	return resp, err
}

func (c *Client) send(ctx context.Context, call Call) (ports.Response, error) {
	var bodyReader io.Reader
	if call.Body != nil {
		data, err := json.Marshal(call.Body)
		if err != nil {
			return ports.Response{}, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + call.Path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, bodyReader)
	if err != nil {
		return ports.Response{}, fmt.Errorf("create request: %w", err)
	}

	if call.Body != nil {
		contentType := call.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.Response{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.Response{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return ports.Response{StatusCode: resp.StatusCode, Body: body}, &RemoteError{
			StatusCode: resp.StatusCode,
			Method:     call.Method,
			Path:       call.Path,
			Message:    string(body),
		}
	}

	return ports.Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Request sends a JSON request and decodes the JSON response into result.
func (c *Client) Request(ctx context.Context, method, path string, body, result interface{}) error {
	resp, err := c.Send(ctx, Call{Op: strings.ToLower(method), Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}

	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// LoginResponse is the body returned by the basic-auth login endpoint.
type LoginResponse struct {
	AccessToken    string `json:"accessToken"`
	TokenType      string `json:"tokenType"`
	ExpiryDuration int64  `json:"expiryDuration"`
}

// Login exchanges basic credentials for an access token and starts using it.
// The password travels base64 encoded, as the login endpoint expects.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{
		"email":    email,
		"password": base64.StdEncoding.EncodeToString([]byte(password)),
	}

	var out LoginResponse
	resp, err := c.Send(ctx, Call{Op: "login", Method: http.MethodPost, Path: "/api/v1/users/login", Body: body})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if out.AccessToken == "" {
		return errors.New("login: empty access token")
	}

	c.SetToken(out.AccessToken)
	c.logger.Info().Str("email", email).Msg("logged in")
	return nil
}

// RemoteError represents a non-success response from the catalog API.
type RemoteError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

// Is matches ports.ErrNotFound for 404 responses.
func (e *RemoteError) Is(target error) bool {
	return target == ports.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool {
	return statusIs(err, http.StatusNotFound)
}

// IsConflict returns true if the error is a 409.
func IsConflict(err error) bool {
	return statusIs(err, http.StatusConflict)
}

func statusIs(err error, status int) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode == status
	}
	return false
}
