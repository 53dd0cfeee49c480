// Package api is the single outbound HTTP channel to the kaigi-note service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"kaiginote/internal/domain"
)

// RequestIDHeader carries a per-request id for correlating client and service logs.
const RequestIDHeader = "X-Request-ID"

// Client sends requests to the service, decorating them with the current credential
// and applying the session policy to 401 responses.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	tokens    domain.TokenStore
	navigator domain.Navigator
	logger    *slog.Logger
	metrics   *metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. hc itself is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. It applies to the client given to
// WithHTTPClient regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithNavigator sets where the client is sent when the session is torn down.
func WithNavigator(n domain.Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRegisterer registers request metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) { c.metrics = newMetrics(reg) }
}

// New returns a Client for the service at baseURL.
func New(baseURL string, tokens domain.TokenStore, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	if c.metrics == nil {
		c.metrics = newMetrics(nil)
	}
	return c, nil
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call to the service.
type Request struct {
	Method string
	// Path is the concrete request path, e.g. /api/events/3.
	Path string
	// Route is the templated path used as a metrics label, e.g. /api/events/{id}.
	// Defaults to Path.
	Route string
	Query url.Values
	// Body is sent as JSON when non-nil.
	Body any
	// Form is sent as application/x-www-form-urlencoded when non-nil.
	Form url.Values
	// Fallback is the detail reported when the service gives none or no response arrives.
	Fallback string
	// NoSessionPolicy disables the central 401 handling for this call.
	NoSessionPolicy bool
}

// Do performs req and decodes a successful JSON response into out (when non-nil).
// Every failure is a *domain.APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	route := req.Route
	if route == "" {
		route = req.Path
	}
	fallback := req.Fallback
	if fallback == "" {
		fallback = "request failed"
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return &domain.APIError{Kind: domain.KindServer, Detail: fallback, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.metrics.observe(req.Method, route, "network", duration)
		c.logger.DebugContext(ctx, "api request failed",
			"method", req.Method,
			"path", req.Path,
			"request_id", httpReq.Header.Get(RequestIDHeader),
			"err", err,
		)
		return &domain.APIError{Kind: domain.KindNetwork, Detail: fallback, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.observe(req.Method, route, strconv.Itoa(resp.StatusCode), duration)
	c.logger.DebugContext(ctx, "api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"request_id", httpReq.Header.Get(RequestIDHeader),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.APIError{Kind: domain.KindNetwork, StatusCode: resp.StatusCode, Detail: fallback, Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := newStatusError(resp.StatusCode, body, fallback)
		if resp.StatusCode == http.StatusUnauthorized && !req.NoSessionPolicy {
			c.endSession(ctx)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.APIError{
			Kind:       domain.KindServer,
			StatusCode: resp.StatusCode,
			Detail:     fallback,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if cred, ok := c.tokens.Get(); ok {
		httpReq.Header.Set("Authorization", cred.AuthorizationHeader())
	}
	return httpReq, nil
}

// endSession applies the session policy: a stale credential is dropped and the
// client is sent to the login view, whichever operation observed the 401.
func (c *Client) endSession(ctx context.Context) {
	if err := c.tokens.Clear(); err != nil {
		c.logger.WarnContext(ctx, "failed to clear credential after 401", "err", err)
	}
	c.logger.InfoContext(ctx, "session expired, redirecting to login")
	if c.navigator != nil {
		c.navigator.Navigate(domain.RouteLogin)
	}
}

// newStatusError maps an error response to the client's error taxonomy.
func newStatusError(status int, body []byte, fallback string) *domain.APIError {
	detail := parseDetail(body)
	if detail == "" {
		detail = fallback
	}
	kind := domain.KindValidation
	switch {
	case status == http.StatusUnauthorized:
		kind = domain.KindAuth
	case status == http.StatusNotFound:
		kind = domain.KindNotFound
	case status >= 500:
		kind = domain.KindServer
	}
	return &domain.APIError{Kind: kind, StatusCode: status, Detail: detail}
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Msg string `json:"msg"`
}

// parseDetail extracts {"detail": "..."} or the msg fields of {"detail": [{"msg": ...}]}.
func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var fields []fieldError
	if err := json.Unmarshal(eb.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				msgs = append(msgs, f.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
