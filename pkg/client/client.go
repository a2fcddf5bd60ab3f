// Package client is the Go SDK for the hercap HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ben-daghir/hercap/pkg/errors"
)

const Version = "0.1.0"

// Logger defines the logging interface used by the Client
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client is the hercap SDK client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	portfolio  *PortfolioClient
	sessions   *SessionsClient
	engagement *EngagementClient
}

// APIError is an error response from the API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("hercap: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsNotReady reports whether the server has not loaded the portfolio yet.
func (e *APIError) IsNotReady() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.ErrInvalidConfig
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid baseURL: %v", errors.ErrInvalidConfig, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: baseURL scheme must be http or https", errors.ErrInvalidConfig)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("hercap-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.portfolio = &PortfolioClient{client: c}
	c.sessions = &SessionsClient{client: c}
	c.engagement = &EngagementClient{client: c}
	return c, nil
}

// Portfolio returns the portfolio sub-client.
func (c *Client) Portfolio() *PortfolioClient { return c.portfolio }

// Sessions returns the view session sub-client.
func (c *Client) Sessions() *SessionsClient { return c.sessions }

// Engagement returns the engagement sub-client.
func (c *Client) Engagement() *EngagementClient { return c.engagement }

// Ready reports whether GET /readyz answers 200.
func (c *Client) Ready(ctx context.Context) (bool, error) {
	_, err := c.doRaw(ctx, http.MethodGet, "/readyz", nil, "application/json")
	if err == nil {
		return true, nil
	}
	if apiErr, ok := err.(*APIError); ok && apiErr.IsNotReady() {
		return false, nil
	}
	return false, err
}

// do performs a JSON request and decodes the response into result.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	respBody, err := c.doRaw(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// doRaw sends the request, retrying per the client's policy, and returns the
// response body. Network and 5xx failures are retried for GET and DELETE
// only. A 429 with Retry-After is retried for any method.
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}, accept string) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}
	idempotent := method == http.MethodGet || method == http.MethodDelete

	var (
		lastErr error
		wait    time.Duration
	)
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			if wait == 0 {
				wait = c.calculateBackoff(attempt)
			}
			c.logger.Debugf("hercap: retry %d of %s %s in %v", attempt, method, path, wait)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
		}

		out, err := c.attempt(ctx, method, path, payload, accept)
		if err == nil {
			return out.body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr, wait = err, out.retryAfter

		switch {
		case out.status == 0 && idempotent:
		case wait > 0:
		case idempotent && out.status >= 500 && out.status != http.StatusServiceUnavailable:
		default:
			return nil, err
		}
	}
	return nil, lastErr
}

type attemptResult struct {
	status     int
	body       []byte
	retryAfter time.Duration
}

// attempt performs one round trip. A zero status means the request never got
// a response.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, accept string) (attemptResult, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return attemptResult{}, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("hercap: %s %s: %v", method, path, err)
		return attemptResult{}, err
	}
	defer resp.Body.Close()
	c.logger.Debugf("hercap: %s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

	res := attemptResult{status: resp.StatusCode}
	if res.body, err = io.ReadAll(resp.Body); err != nil {
		return res, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 400 {
		return res, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		res.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), c.retryWaitMin)
	}
	return res, decodeAPIError(resp.StatusCode, requestID, res.body)
}

func decodeAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code, apiErr.Detail = "", ""
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.StatusCode, apiErr.RequestID = status, requestID
	return apiErr
}

// parseRetryAfter reads a delay in seconds. Zero maps to floor so the retry
// still waits. It returns 0 when the header is absent or malformed.
func parseRetryAfter(v string, floor time.Duration) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return floor
	}
	return time.Duration(seconds) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	if backoff < 4 {
		return backoff
	}
	jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
	return backoff + jitter
}

func invalidArg(msg string) error {
	return errors.InvalidParam(msg)
}

//Personal.AI order the ending
