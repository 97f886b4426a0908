package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Doer executes a single HTTP request. *http.Client satisfies it; tests and
// Transport substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestFactory builds the request for one attempt. It is invoked fresh on
// every attempt so that bodies and headers embedding per-attempt values are
// regenerated rather than reused. The supplied context bounds the attempt and
// must be attached to the request.
type RequestFactory func(ctx context.Context) (*http.Request, error)

// Client executes HTTP calls under a retry policy.
type Client struct {
	doer   Doer
	policy Policy
}

// New creates a client with the default policy and http.DefaultClient.
func New(opts ...ClientOption) *Client {
	c := &Client{
		doer:   http.DefaultClient,
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithPolicy sets the retry policy. Start from DefaultPolicy and adjust
// fields rather than building a Policy from zero.
func WithPolicy(p Policy) ClientOption {
	return func(c *Client) {
		c.policy = p
	}
}

// WithDoer sets the underlying HTTP executor.
func WithDoer(d Doer) ClientOption {
	return func(c *Client) {
		c.doer = d
	}
}

// Policy returns the client's retry policy.
func (c *Client) Policy() Policy { return c.policy }

// Execute performs the call described by build, retrying per the client's
// policy. The operation label names the call in errors and carries no other
// meaning.
//
// A 2xx response, or any response on the final attempt, is returned as-is;
// the caller interprets non-2xx as a logical failure. A response whose method
// or status is outside the policy's retryable sets is likewise returned
// without retry. Transport failures (including per-attempt timeouts) are
// retried under the same method and attempt rules. Cancellation of ctx takes
// priority over retries and in-flight attempts; the caller receives the
// context's cause.
//
// The caller owns the returned response body and must close it.
func (c *Client) Execute(ctx context.Context, operation string, build RequestFactory) (*http.Response, error) {
	p := c.policy
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}

		req, err := build(attemptCtx)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("%s: building request: %w", operation, err)
		}
		method := req.Method
		if method == "" {
			method = http.MethodGet
		}

		resp, err := c.doer.Do(req)
		if err != nil {
			cancel()
			// External cancellation is never retried.
			if ctx.Err() != nil {
				return nil, context.Cause(ctx)
			}
			lastErr = err
			if !p.RetryableMethod(method) || attempt == p.MaxAttempts {
				return nil, fmt.Errorf("%s: %w", operation, err)
			}
			if err := c.sleep(ctx, p.Backoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		success := resp.StatusCode >= 200 && resp.StatusCode < 300
		if success || attempt == p.MaxAttempts ||
			!p.RetryableMethod(method) || !p.RetryableStatus(resp.StatusCode) {
			// Tie the attempt's lifetime to the body so the caller can
			// still read it.
			resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}

		delay := p.Backoff(attempt)
		if p.RespectRetryAfter {
			if ra := retryAfterDelay(resp); ra > delay {
				delay = ra
			}
		}

		drain(resp.Body)
		cancel()

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	// Unreachable while the loop returns on the final attempt; guarded in
	// case the policy is ever restructured.
	if lastErr != nil {
		return nil, fmt.Errorf("%s: %w", operation, lastErr)
	}
	return nil, fmt.Errorf("%s: operation failed", operation)
}

// sleep waits for the given delay, aborting early if ctx is done.
func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}

// drain discards the response body so the connection can be reused, ignoring
// read errors: the response is being thrown away regardless.
func drain(body io.ReadCloser) {
	if body == nil {
		return
	}
	io.Copy(io.Discard, body) //nolint:errcheck
	body.Close()
}

// retryAfterDelay extracts the Retry-After duration from a response.
// Returns 0 if the header is absent or cannot be parsed. Values are either
// integer seconds or an HTTP-date (RFC 7231); past dates clamp to 0.
func retryAfterDelay(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}

// cancelBody releases the attempt's context when the caller closes the body.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
