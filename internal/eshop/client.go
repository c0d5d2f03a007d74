package eshop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/misdekor/pohoda-bridge/internal/config"
)

const userAgent = "misdekor-bridge"

// Client fetches the current order list from the shop API.
type Client struct {
	baseURL     string
	password    string
	httpClient  *http.Client
	maxAttempts int
	backoffBase time.Duration
	policy      string
	logger      *slog.Logger
}

// NewClient builds a client from API config. The password must already
// have been validated by the caller.
func NewClient(cfg config.APIConfig, logger *slog.Logger) *Client {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		password:    cfg.Password,
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
		maxAttempts: attempts,
		backoffBase: cfg.BackoffBase(),
		policy:      cfg.BackoffPolicy,
		logger:      logger,
	}
}

// FetchOrders issues the GetOrders request, retrying transient failures
// (network errors, bad status, non-JSON bodies) with an increasing delay
// up to the attempt ceiling. The located order list is normalized before
// returning; an unrecognizable response shape is not retried.
func (c *Client) FetchOrders(ctx context.Context) ([]Order, error) {
	var raw any
	attempt := 0

	operation := func() error {
		attempt++
		c.logger.Info("HTTP GET", "attempt", attempt, "max_attempts", c.maxAttempts)
		v, err := c.fetchJSON(ctx)
		if err != nil {
			c.logger.Warn("fetch attempt failed", "attempt", attempt, "error", err)
			return err
		}
		raw = v
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackoff(), uint64(c.maxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("failed after %d attempts: %w", attempt, err)
	}

	orders, dropped, err := NormalizeOrders(raw)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.logger.Warn("dropped non-record order entries", "dropped", dropped)
	}
	return orders, nil
}

func (c *Client) fetchJSON(ctx context.Context) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var v any
	if err := json.Unmarshal(bytes.TrimSpace(body), &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

func (c *Client) requestURL() string {
	return fmt.Sprintf("%s?action=GetOrders&version=v2.0&password=%s",
		c.baseURL, url.QueryEscape(c.password))
}

// newBackoff builds the delay schedule: exponential base*2^(n-1) by
// default, or linear base*n when configured.
func (c *Client) newBackoff() backoff.BackOff {
	if c.policy == "linear" {
		return &linearBackoff{base: c.backoffBase}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.backoffBase
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 10 * time.Minute
	b.MaxElapsedTime = 0
	// NewExponentialBackOff resets to its defaults before the fields above
	// are assigned; reset again so the configured interval takes effect.
	b.Reset()
	return b
}

// linearBackoff waits base*1, base*2, base*3, ...
type linearBackoff struct {
	base time.Duration
	n    int
}

func (l *linearBackoff) NextBackOff() time.Duration {
	l.n++
	return time.Duration(l.n) * l.base
}

func (l *linearBackoff) Reset() {
	l.n = 0
}
