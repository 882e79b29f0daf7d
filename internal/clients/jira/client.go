// Package jira provides a resilient client for the Jira Cloud REST APIs
package jira

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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/jira-mcp/internal/auth"
	"github.com/bobmcallan/jira-mcp/internal/common"
	"github.com/bobmcallan/jira-mcp/internal/interfaces"
	"github.com/bobmcallan/jira-mcp/internal/resilience"
)

const (
	DefaultBaseURL    = "https://api.atlassian.com"
	DefaultTimeout    = 30 * time.Second
	DefaultRateLimit  = 10 // requests per second
	DefaultMaxRetries = 3
)

// retryableStatus lists the response codes worth retrying. Anything else in
// the 4xx/5xx range is a client-side mistake and fails immediately.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// ErrCircuitOpen marks a request rejected by the circuit breaker without a
// network call. Calling code should treat it as "try again later" rather
// than a problem with the specific request.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitOpenError carries when the breaker will next permit an attempt.
type CircuitOpenError struct {
	RetryAfter time.Time
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("service unavailable, circuit open until %s", e.RetryAfter.Format(time.RFC3339))
}

func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }

// RequestError is the single enhanced error returned for a failed logical
// request, wrapping the original cause with request context.
type RequestError struct {
	Cause      error
	Method     string
	Endpoint   string
	StatusCode int
	Attempts   int
	Retryable  bool
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("Jira API error: %s %s failed after %d attempt(s) (status %d, retryable=%t): %v",
			e.Method, e.Endpoint, e.Attempts, e.StatusCode, e.Retryable, e.Cause)
	}
	return fmt.Sprintf("Jira API error: %s %s failed after %d attempt(s) (retryable=%t): %v",
		e.Method, e.Endpoint, e.Attempts, e.Retryable, e.Cause)
}

func (e *RequestError) Unwrap() error { return e.Cause }

// Client executes authenticated requests against the Jira Cloud gateway,
// handling token freshness, transient-failure retry and circuit breaker
// gating.
type Client struct {
	baseURL    string
	authority  *auth.Authority
	breaker    *resilience.CircuitBreaker
	backoff    *resilience.BackoffPolicy
	maxRetries int
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	sleep      func(ctx context.Context, d time.Duration) error
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-attempt HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBreaker sets the circuit breaker
func WithBreaker(b *resilience.CircuitBreaker) ClientOption {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithBackoff sets the retry backoff policy
func WithBackoff(p *resilience.BackoffPolicy) ClientOption {
	return func(c *Client) {
		c.backoff = p
	}
}

// WithMaxRetries sets the attempt bound for retryable failures
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// NewClient creates a new Jira client backed by the given token authority
func NewClient(authority *auth.Authority, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		authority:  authority,
		backoff:    resilience.DefaultBackoff(),
		maxRetries: DefaultMaxRetries,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		sleep:   sleepCtx,
	}

	for _, opt := range opts {
		opt(c)
	}

	// At least one attempt is always made.
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}

	if c.breaker == nil {
		c.breaker = resilience.NewCircuitBreaker(common.NewDefaultConfig().Breaker, c.logger)
	}

	return c
}

// Breaker returns the circuit breaker for diagnostics.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Authority returns the token authority for diagnostics.
func (c *Client) Authority() *auth.Authority {
	return c.authority
}

// Execute performs one logical request: breaker gate, token freshness,
// bearer call, failure classification and bounded jittered retry. The caller
// receives the raw response body or exactly one enhanced error.
func (c *Client) Execute(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	if !c.breaker.CanAttempt() {
		retryAfter := c.breaker.NextAttemptAt()
		c.logger.Warn().Str("endpoint", path).Time("retry_after", retryAfter).Msg("Request rejected, circuit open")
		return nil, &CircuitOpenError{RetryAfter: retryAfter}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	reqID := uuid.New().String()[:8]
	authRetried := false
	var lastErr *RequestError

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		if err := c.authority.EnsureFresh(ctx); err != nil {
			return nil, err
		}

		respBody, status, err := c.do(ctx, method, path, payload)

		if err == nil && status < 400 {
			c.breaker.RecordSuccess()
			if attempt > 0 {
				c.logger.Debug().
					Str("req_id", reqID).
					Str("endpoint", path).
					Int("attempt", attempt+1).
					Msg("Request succeeded after retry")
			}
			return respBody, nil
		}

		if err != nil {
			// No response at all: network-level failure, retryable.
			lastErr = &RequestError{
				Cause:     err,
				Method:    method,
				Endpoint:  path,
				Attempts:  attempt + 1,
				Retryable: true,
			}
		} else {
			if status == http.StatusUnauthorized && attempt == 0 && !authRetried {
				// One forced refresh per logical call. A 401 on the
				// refreshed attempt falls through to normal handling.
				authRetried = true
				c.logger.Debug().Str("req_id", reqID).Str("endpoint", path).Msg("401 received, forcing token refresh")
				if rerr := c.authority.ForceRefresh(ctx); rerr != nil {
					return nil, rerr
				}
				continue
			}

			lastErr = &RequestError{
				Cause:      fmt.Errorf("HTTP %d: %s", status, errorSnippet(respBody)),
				Method:     method,
				Endpoint:   path,
				StatusCode: status,
				Attempts:   attempt + 1,
				Retryable:  retryableStatus[status],
			}
			if !lastErr.Retryable {
				// Client-side mistake: no retry, no breaker update.
				c.logger.Error().
					Str("req_id", reqID).
					Str("endpoint", path).
					Str("method", method).
					Int("status", status).
					Msg("Request failed")
				return nil, lastErr
			}
		}

		c.breaker.RecordFailure()

		if attempt+1 < c.maxRetries {
			delay := c.backoff.Delay(attempt)
			c.logger.Debug().
				Str("req_id", reqID).
				Str("endpoint", path).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Retrying request")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Error().
		Str("req_id", reqID).
		Str("endpoint", path).
		Str("method", lastErr.Method).
		Int("status", lastErr.StatusCode).
		Int("attempts", lastErr.Attempts).
		Msg("Request exhausted retries")
	return nil, lastErr
}

// do performs a single HTTP attempt.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) (json.RawMessage, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authority.AccessToken())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	return json.RawMessage(body), resp.StatusCode, nil
}

// apiPath builds a Jira REST API v3 path under the tenant gateway.
func (c *Client) apiPath(ctx context.Context, suffix string) (string, error) {
	cloudID, err := c.authority.ResolveCloudID(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/ex/jira/%s/rest/api/3%s", cloudID, suffix), nil
}

// agilePath builds a Jira Agile API path under the tenant gateway.
func (c *Client) agilePath(ctx context.Context, suffix string) (string, error) {
	cloudID, err := c.authority.ResolveCloudID(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/ex/jira/%s/rest/agile/1.0%s", cloudID, suffix), nil
}

// errorSnippet trims a response body for inclusion in an error message.
func errorSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "(empty body)"
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ensure Client implements JiraClient
var _ interfaces.JiraClient = (*Client)(nil)
