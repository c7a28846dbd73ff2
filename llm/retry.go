// Completer decorator with retry logic.
//
// Information Hiding:
// - Backoff algorithm hidden
// - Error classification logic hidden

package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cenkalti/backoff/v5"
	openai "github.com/sashabaranov/go-openai"
)

// RetryConfig holds retry configuration for model calls.
// The zero value disables retries.
type RetryConfig struct {
	MaxRetries      uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// RetryClient retries transient failures of the wrapped Completer.
type RetryClient struct {
	next   Completer
	config RetryConfig
	notify func(err error, wait time.Duration)
}

// NewRetryClient wraps next with exponential backoff.
func NewRetryClient(next Completer, config RetryConfig) *RetryClient {
	return &RetryClient{next: next, config: config}
}

// OnRetry registers a callback invoked before each backoff wait.
func (c *RetryClient) OnRetry(fn func(err error, wait time.Duration)) *RetryClient {
	c.notify = fn
	return c
}

// Complete calls the wrapped Completer, retrying transient failures.
func (c *RetryClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.config.MaxRetries == 0 {
		return c.next.Complete(ctx, req)
	}

	policy := backoff.NewExponentialBackOff()
	if c.config.InitialInterval > 0 {
		policy.InitialInterval = c.config.InitialInterval
	}
	if c.config.MaxInterval > 0 {
		policy.MaxInterval = c.config.MaxInterval
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.config.MaxRetries + 1),
	}
	if c.notify != nil {
		opts = append(opts, backoff.WithNotify(c.notify))
	}

	return backoff.Retry(ctx, func() (Response, error) {
		resp, err := c.next.Complete(ctx, req)
		if err != nil && !IsTransient(err) {
			return Response{}, backoff.Permanent(err)
		}
		return resp, err
	}, opts...)
}

// IsTransient reports whether a model call failure is worth retrying:
// rate limits, server errors, timeouts and dropped connections.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return transientStatus(oaiErr.HTTPStatusCode)
	}
	var oaiReqErr *openai.RequestError
	if errors.As(err, &oaiReqErr) {
		return transientStatus(oaiReqErr.HTTPStatusCode)
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return transientStatus(antErr.StatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Don't retry authentication, validation or permission issues
	errLower := strings.ToLower(err.Error())
	for _, s := range []string{"invalid", "unauthorized", "permission", "api key"} {
		if strings.Contains(errLower, s) {
			return false
		}
	}
	for _, s := range []string{"timeout", "connection", "rate limit", "overloaded", "unavailable", "429"} {
		if strings.Contains(errLower, s) {
			return true
		}
	}
	return false
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}

// Verify RetryClient implements Completer
var _ Completer = (*RetryClient)(nil)
