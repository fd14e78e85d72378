package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/pochita-booking/pkg/logging"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 15 * time.Second
)

var backendTracer = otel.Tracer("pochita.internal.backend")

// Recorder receives call outcomes. *metrics.BookingMetrics satisfies it.
type Recorder interface {
	ObserveBackendCall(op, outcome string, seconds float64)
	ObserveTokenRefresh(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBackendCall(string, string, float64) {}
func (nopRecorder) ObserveTokenRefresh(string)                 {}

// Client talks to the clinic REST backend. It holds no credentials; use
// ForUser for authenticated calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	recorder   Recorder
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRecorder reports call outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New constructs a backend client rooted at baseURL.
func New(baseURL string, timeout time.Duration, logger *logging.Logger, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON performs one request. token may be empty for anonymous calls.
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, body, out any) error {
	ctx, span := backendTracer.Start(ctx, "backend."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("pochita.backend.path", path),
	)

	start := time.Now()
	err := c.send(ctx, op, method, path, token, body, out)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if be, ok := AsError(err); ok {
			outcome = string(be.Kind)
			span.SetAttributes(attribute.Int("http.status_code", be.Status))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	c.recorder.ObserveBackendCall(op, outcome, time.Since(start).Seconds())
	return err
}

func (c *Client) send(ctx context.Context, op, method, path, token string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		return &Error{Op: op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("backend API non-2xx response", "op", op, "status", resp.StatusCode, "path", path, "body", msg)
		return errorFromResponse(op, resp.StatusCode, respBody)
	}

	if len(bytes.TrimSpace(respBody)) == 0 || out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], respBody...)
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// TokenSource persists a user's token pair between requests.
type TokenSource interface {
	Tokens(ctx context.Context) (Tokens, error)
	SaveTokens(ctx context.Context, t Tokens) error
	ClearTokens(ctx context.Context) error
}

// UserClient issues authenticated calls on behalf of one session.
type UserClient struct {
	c      *Client
	tokens TokenSource
}

// ForUser binds the client to a session's tokens.
func (c *Client) ForUser(store TokenSource) *UserClient {
	return &UserClient{c: c, tokens: store}
}

// call sends an authenticated request. A 401 triggers one token refresh and
// one replay; a second 401 or a failed refresh ends the session.
func (u *UserClient) call(ctx context.Context, op, method, path string, body, out any) error {
	toks, err := u.tokens.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("%s: load tokens: %w", op, err)
	}
	if toks.Access == "" && toks.Refresh == "" {
		return fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}

	err = u.c.doJSON(ctx, op, method, path, toks.Access, body, out)
	if !IsKind(err, KindUnauthorized) {
		return err
	}

	refreshed, rerr := u.refresh(ctx, toks)
	if rerr != nil {
		return rerr
	}

	err = u.c.doJSON(ctx, op, method, path, refreshed.Access, body, out)
	if IsKind(err, KindUnauthorized) {
		u.c.logger.Warn("backend rejected refreshed token", "op", op)
		u.expire(ctx)
		return fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}
	return err
}

func (u *UserClient) refresh(ctx context.Context, toks Tokens) (Tokens, error) {
	if toks.Refresh == "" {
		u.c.recorder.ObserveTokenRefresh("missing")
		u.expire(ctx)
		return Tokens{}, ErrSessionExpired
	}
	next, err := u.c.Refresh(ctx, toks.Refresh)
	if err != nil {
		u.c.recorder.ObserveTokenRefresh("failed")
		u.c.logger.Info("token refresh failed", "error", err)
		u.expire(ctx)
		return Tokens{}, fmt.Errorf("refresh: %w", ErrSessionExpired)
	}
	if next.Refresh == "" {
		next.Refresh = toks.Refresh
	}
	if err := u.tokens.SaveTokens(ctx, next); err != nil {
		return Tokens{}, fmt.Errorf("save refreshed tokens: %w", err)
	}
	u.c.recorder.ObserveTokenRefresh("ok")
	return next, nil
}

func (u *UserClient) expire(ctx context.Context) {
	if err := u.tokens.ClearTokens(ctx); err != nil {
		u.c.logger.Warn("failed to clear session tokens", "error", err)
	}
}

// IsSessionExpired reports whether err ends the user's session.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}
