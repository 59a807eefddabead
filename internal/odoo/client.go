// Package odoo is a session-authenticated client for the ERP's JSON-RPC API.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	sessionCookie       = "session_id"
	loginPath           = "/web/session/authenticate"
	callPath            = "/web/dataset/call_kw"
	maxResponseBytes    = 32 << 20
	defaultLoginTimeout = 5 * time.Second
	defaultCallTimeout  = 15 * time.Second
	defaultMaxRetries   = 3
)

// Settings configures a Client. URL, Database, Username and Password are required.
type Settings struct {
	URL               string        `yaml:"url"`
	Database          string        `yaml:"db"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	LoginTimeout      time.Duration `yaml:"login_timeout"`
	CallTimeout       time.Duration `yaml:"call_timeout"`
	// MaxRetries bounds transient retries per call. Nil means 3; zero or a
	// negative value disables retries.
	MaxRetries        *int          `yaml:"max_retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// Validate reports every missing required setting at once.
func (s Settings) Validate() error {
	var missing []string
	if strings.TrimSpace(s.URL) == "" {
		missing = append(missing, "ODOO_URL")
	}
	if strings.TrimSpace(s.Database) == "" {
		missing = append(missing, "ODOO_DB")
	}
	if strings.TrimSpace(s.Username) == "" {
		missing = append(missing, "ODOO_USERNAME")
	}
	if s.Password == "" {
		missing = append(missing, "ODOO_PASSWORD")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

func (s Settings) withDefaults() Settings {
	s.URL = strings.TrimRight(strings.TrimSpace(s.URL), "/")
	if s.LoginTimeout <= 0 {
		s.LoginTimeout = defaultLoginTimeout
	}
	if s.CallTimeout <= 0 {
		s.CallTimeout = defaultCallTimeout
	}
	return s
}

// Retries returns a pointer to n for Settings.MaxRetries.
func Retries(n int) *int {
	return &n
}

// Client issues read calls under a session and recovers from transient failures.
type Client struct {
	settings   Settings
	maxRetries int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
	metrics    *callMetrics
	nextID     atomic.Int64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient validates settings and builds a Client.
func NewClient(settings Settings, opts ...Option) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings = settings.withDefaults()

	maxRetries := defaultMaxRetries
	if settings.MaxRetries != nil {
		maxRetries = max(*settings.MaxRetries, 0)
	}

	limit := rate.Inf
	if settings.RequestsPerSecond > 0 {
		limit = rate.Limit(settings.RequestsPerSecond)
	}

	c := &Client{
		settings:   settings,
		maxRetries: maxRetries,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:      sleepContext,
		metrics:    newCallMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MaxRetries is the retry ceiling in effect.
func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// Authenticate logs in and returns a new session.
func (c *Client) Authenticate(ctx context.Context) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.settings.LoginTimeout)
	defer cancel()

	body, err := c.envelope(loginParams{
		DB:       c.settings.Database,
		Login:    c.settings.Username,
		Password: c.settings.Password,
	})
	if err != nil {
		return nil, &AuthenticationError{Reason: "encode login request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.URL+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, &AuthenticationError{Reason: "create login request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AuthenticationError{Reason: "endpoint unreachable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &AuthenticationError{Reason: fmt.Sprintf("status %s", resp.Status)}
	}

	var payload rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, &AuthenticationError{Reason: "decode login response", Err: err}
	}
	if payload.Error != nil {
		return nil, &AuthenticationError{Reason: payload.Error.Text()}
	}
	var result struct {
		UID any `json:"uid"`
	}
	if len(payload.Result) > 0 && json.Unmarshal(payload.Result, &result) == nil {
		if uid, ok := result.UID.(bool); ok && !uid {
			return nil, &AuthenticationError{Reason: "invalid credentials"}
		}
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return NewSession(cookie.Value), nil
		}
	}
	return nil, &AuthenticationError{Reason: "no session_id in response"}
}

// Call performs req under sess. Rate limits, timeouts, malformed bodies and
// 5xx responses are retried with a 2^attempt second backoff up to MaxRetries
// times. An expired session triggers exactly one re-authentication per call;
// a second expiry is terminal. Application errors are terminal immediately.
func (c *Client) Call(ctx context.Context, sess *Session, req Request) ([]Record, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, &RemoteCallError{Model: req.Model, Method: req.Method, Message: "no session", Err: ErrSessionExpired}
	}

	attempts := 0
	retry := 0
	refreshed := false
	for {
		attempts++
		records, err := c.callOnce(ctx, sess.ID(), req)
		if err == nil {
			return records, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, c.terminal(ctx, req, attempts, ctxErr)
		}

		switch {
		case errors.Is(err, ErrSessionExpired):
			if refreshed {
				return nil, c.terminal(ctx, req, attempts, err)
			}
			refreshed = true
			c.logger.Info("odoo session expired, re-authenticating", "model", req.Model, "method", req.Method)
			fresh, authErr := c.Authenticate(ctx)
			if authErr != nil {
				c.metrics.failure(ctx, req)
				return nil, authErr
			}
			sess.replace(fresh.ID())
			c.metrics.reauth(ctx)

		case isTransient(err):
			if retry >= c.maxRetries {
				return nil, c.terminal(ctx, req, attempts, err)
			}
			backoff := time.Duration(1<<retry) * time.Second
			c.logger.Warn("odoo call failed, retrying",
				"model", req.Model,
				"method", req.Method,
				"attempt", attempts,
				"backoff", backoff,
				"error", err,
			)
			c.metrics.retry(ctx, retryReason(err))
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, c.terminal(ctx, req, attempts, err)
			}
			retry++

		default:
			return nil, c.terminal(ctx, req, attempts, err)
		}
	}
}

// SearchRead is shorthand for Call with a search_read request.
func (c *Client) SearchRead(ctx context.Context, sess *Session, model string, domain Domain, fields ...string) ([]Record, error) {
	return c.Call(ctx, sess, SearchRead(model, domain, fields...))
}

func (c *Client) callOnce(ctx context.Context, sessionID string, r Request) ([]Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.metrics.attempt(ctx, r)

	ctx, cancel := context.WithTimeout(ctx, c.settings.CallTimeout)
	defer cancel()

	body, err := c.envelope(r.params())
	if err != nil {
		return nil, fmt.Errorf("encode call: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.URL+callPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: %s", ErrServerStatus, resp.Status)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, &applicationFault{kind: ErrUnexpectedStatus, message: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var payload rpcResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if payload.Error != nil {
		if payload.Error.sessionExpired() {
			return nil, &applicationFault{kind: ErrSessionExpired, message: payload.Error.Text()}
		}
		return nil, &applicationFault{kind: ErrApplication, message: payload.Error.Text()}
	}

	trimmed := bytes.TrimSpace(payload.Result)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: result is not a record list: %w", ErrMalformedResponse, err)
	}
	return records, nil
}

func (c *Client) terminal(ctx context.Context, req Request, attempts int, err error) error {
	c.metrics.failure(ctx, req)
	c.logger.Error("odoo call failed", "model", req.Model, "method", req.Method, "attempts", attempts, "error", err)
	return &RemoteCallError{
		Model:    req.Model,
		Method:   req.Method,
		Attempts: attempts,
		Message:  remoteMessage(err),
		Err:      err,
	}
}

func (c *Client) envelope(params any) ([]byte, error) {
	return json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  params,
		ID:      c.nextID.Add(1),
	})
}

func retryReason(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrServerStatus):
		return "server_status"
	default:
		return "transport"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
