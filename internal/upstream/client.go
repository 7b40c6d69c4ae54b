// Package upstream implements the HTTP client for the Ransomware.live Pro
// API: a single shared capability that issues read-only GET calls against
// one fixed origin. The client owns connection pooling, the circuit
// breaker, and the retry policy; callers never retry.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/darkfeedlabs/leakwatch/internal/config"
	"github.com/darkfeedlabs/leakwatch/model"
)

// maxBodyBytes caps how much of an upstream response body is read.
const maxBodyBytes = 10 << 20 // 10MB

// Client is the shared upstream HTTP client. It is acquired once at process
// start and released exactly once via Close at shutdown.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *CircuitBreaker
	retry   config.RetryConfig
	logger  *zap.Logger

	closeOnce sync.Once
}

// NewClient creates the upstream client from configuration. The API key is
// attached as the X-API-KEY header on every call.
func NewClient(cfg config.UpstreamConfig, apiKey string, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	cb := cfg.CircuitBreaker
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		breaker: NewCircuitBreaker(cb.FailureThreshold, cb.SuccessThreshold, cb.Timeout,
			cb.ErrorRateThreshold, cb.ErrorRateWindow),
		retry:   cfg.Retry,
		logger:  logger,
	}
}

// Issue performs one GET against the upstream for the given request shape,
// retrying per the configured policy. Every catalog operation is a
// read-only GET, so all calls are safe to retry here.
func (c *Client) Issue(ctx context.Context, shape model.RequestShape) (model.Result, error) {
	maxAttempts := c.retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	var lastResult model.Result

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return model.Result{}, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		result, err := c.issueOnce(ctx, shape)
		if err != nil {
			lastErr = err
			if !isRetryableError(err) {
				return model.Result{}, err
			}
			c.logger.Debug("upstream: retrying after error",
				zap.Int("attempt", attempt+1),
				zap.Int("max", maxAttempts),
				zap.Error(err),
			)
			continue
		}

		if isRetryableStatus(result.StatusCode) && attempt < maxAttempts-1 {
			lastResult = result
			c.logger.Debug("upstream: retrying after status",
				zap.Int("attempt", attempt+1),
				zap.Int("max", maxAttempts),
				zap.Int("status", result.StatusCode),
			)
			continue
		}

		return result, nil
	}

	if lastErr != nil {
		return model.Result{}, lastErr
	}
	return lastResult, nil
}

// issueOnce performs a single HTTP GET with circuit breaker protection.
func (c *Client) issueOnce(ctx context.Context, shape model.RequestShape) (model.Result, error) {
	if err := c.breaker.Allow(); err != nil {
		return model.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(shape), nil)
	if err != nil {
		return model.Result{}, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("X-API-KEY", sanitizeHeader(c.apiKey))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		if IsConnectionError(err) {
			return model.Result{}, fmt.Errorf("upstream: connection failed: %w", err)
		}
		return model.Result{}, fmt.Errorf("upstream: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.breaker.RecordFailure()
		return model.Result{}, fmt.Errorf("upstream: read response: %w", err)
	}

	// Record breaker outcome: only 5xx count as infrastructure failures.
	if resp.StatusCode >= 500 {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}

	return model.Result{StatusCode: resp.StatusCode, Body: body}, nil
}

// buildURL joins the fixed origin with the resolved path and encodes the
// query parameters. Path parameter values were escaped at bind time.
func (c *Client) buildURL(shape model.RequestShape) string {
	u := c.baseURL + shape.Path
	if len(shape.Query) > 0 {
		params := url.Values{}
		for k, v := range shape.Query {
			params.Set(k, v)
		}
		u += "?" + params.Encode()
	}
	return u
}

// BreakerState exposes the current circuit breaker state for metrics.
func (c *Client) BreakerState() BreakerState {
	return c.breaker.State()
}

// Close releases the client's pooled connections. Safe to call more than
// once; only the first call takes effect.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.client.CloseIdleConnections()
	})
}

func (c *Client) backoff(attempt int) time.Duration {
	initial := c.retry.BackoffInitial
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	multiplier := c.retry.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	max := c.retry.BackoffMax
	if max <= 0 {
		max = 2 * time.Second
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * multiplier)
		if delay > max {
			return max
		}
	}
	return delay
}

// sanitizeHeader strips newlines and carriage returns to prevent header
// injection.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	// An open breaker or a cancelled context will not improve by retrying.
	if errors.Is(err, ErrBreakerOpen) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// IsConnectionError reports whether err is a network-level failure
// (connection refused, DNS) as opposed to a protocol-level one.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
