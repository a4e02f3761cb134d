// Package api provides the HTTP client for the Airflow LLM plugin REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/diogo/dagchat/internal/config"
	apierrors "github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/models"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// HTTPDoer is the transport the client sends requests through. The
// tls-client HttpClient satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the plugin endpoints of one Airflow webserver.
type Client struct {
	baseURL            string
	doer               HTTPDoer
	cookies            *config.Cookies
	logger             *zap.Logger
	timeoutSeconds     int
	insecureSkipVerify bool
	newRequestID       func() string

	mu     sync.RWMutex
	closed bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPDoer replaces the tls-client transport.
func WithHTTPDoer(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeoutSeconds bounds each request. 0 disables the timeout.
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *Client) {
		c.timeoutSeconds = seconds
	}
}

// WithInsecureSkipVerify disables TLS certificate verification
func WithInsecureSkipVerify(skip bool) ClientOption {
	return func(c *Client) {
		c.insecureSkipVerify = skip
	}
}

// WithRequestIDs overrides the request id generator
func WithRequestIDs(fn func() string) ClientOption {
	return func(c *Client) {
		c.newRequestID = fn
	}
}

// NewClient creates a client for serverURL. cookies may be nil when the
// webserver does not require a login.
func NewClient(serverURL string, cookies *config.Cookies, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apierrors.NewValidationError("server_url", fmt.Sprintf("invalid server URL %q", serverURL))
	}

	client := &Client{
		baseURL:        strings.TrimRight(serverURL, "/"),
		cookies:        cookies,
		logger:         zap.NewNop(),
		timeoutSeconds: 300,
		newRequestID:   func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.doer == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		if client.insecureSkipVerify {
			options = append(options, tls_client.WithInsecureSkipVerify())
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.doer = httpClient
	}

	return client, nil
}

// BaseURL returns the server base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections. Further requests fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if idle, ok := c.doer.(interface{ CloseIdleConnections() }); ok {
		idle.CloseIdleConnections()
	}
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// do sends one request and returns the raw body. A non-2xx reply whose
// body is JSON is returned as-is: the plugin reports failures as
// {"success": false, "error": ...} with a 4xx/5xx status. Anything else
// that is not JSON is an APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if c.IsClosed() {
		return nil, apierrors.NewNetworkError(strings.ToLower(method), path, fmt.Errorf("client is closed"))
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request for %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, apierrors.NewNetworkError("create request", path, err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := c.newRequestID()
	req.Header.Set(RequestIDHeader, requestID)

	if c.cookies != nil {
		if name, value := c.cookies.Snapshot(); value != "" {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, apierrors.NewNetworkError(strings.ToLower(method), path, err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	var raw []byte
	if resp.Body != nil {
		raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, apierrors.NewNetworkError("read response", path, err)
		}
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(start)))

	c.adoptRotatedCookie(resp)

	if !gjson.ValidBytes(raw) {
		return nil, apierrors.NewAPIError(resp.StatusCode, path, "unexpected non-JSON response").WithBody(string(raw))
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("api error reply",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", gjson.GetBytes(raw, "error").String()))
	}

	return raw, nil
}

// adoptRotatedCookie keeps the session cookie in sync when the webserver
// re-issues it.
func (c *Client) adoptRotatedCookie(resp *http.Response) {
	if c.cookies == nil {
		return
	}
	name, current := c.cookies.Snapshot()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name && cookie.Value != "" && cookie.Value != current {
			c.cookies.SetValue(cookie.Value)
			c.logger.Debug("session cookie rotated", zap.String("name", name))
			return
		}
	}
}

func decode(path string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return apierrors.NewParseError(path, "unexpected response shape", err)
	}
	return nil
}
