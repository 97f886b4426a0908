// Package httpclient wraps single outbound HTTP calls with timeout, retry,
// and backoff policy. It is stateless and shared by every provider adapter:
// adapters that speak raw HTTP call Execute directly, while SDK-backed
// adapters route their traffic through Transport.
package httpclient

import (
	"math"
	"math/rand"
	"net/http"
	"time"
)

// Policy configures retry behavior for a single logical HTTP call. A Policy
// is supplied once per adapter, is never mutated by the client, and may be
// shared across concurrent calls.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Timeout bounds each individual attempt. An attempt that produces no
	// response within Timeout is aborted and treated as a transport failure.
	// Zero means no per-attempt deadline.
	Timeout time.Duration

	// BaseDelay is the backoff before the second attempt; it doubles per
	// attempt up to MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff (before jitter).
	MaxDelay time.Duration

	// JitterRatio adds up to this fraction of the backoff as random jitter.
	JitterRatio float64

	// RespectRetryAfter honors a Retry-After response header: the wait
	// before the next attempt is at least the server-requested delay.
	RespectRetryAfter bool

	// RetryMethods lists HTTP methods eligible for retry.
	RetryMethods []string

	// RetryStatuses lists response status codes eligible for retry.
	RetryStatuses []int

	// Rand supplies the uniform [0,1) values used for jitter. Nil means
	// the shared math/rand source; tests inject a fixed generator.
	Rand func() float64
}

// DefaultPolicy returns the policy adapters use unless configured otherwise:
//   - 3 attempts
//   - 30 second per-attempt timeout
//   - 250 ms base delay, 4 s max delay, 20% jitter
//   - Retry-After honored
//   - all idempotent methods plus POST retried
//   - statuses 408, 409, 425, 429, 500, 502, 503, 504 retried
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		Timeout:           30 * time.Second,
		BaseDelay:         250 * time.Millisecond,
		MaxDelay:          4 * time.Second,
		JitterRatio:       0.2,
		RespectRetryAfter: true,
		RetryMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
			http.MethodPut,
			http.MethodDelete,
			http.MethodPost,
		},
		RetryStatuses: []int{408, 409, 425, 429, 500, 502, 503, 504},
	}
}

// RetryableMethod reports whether the method is eligible for retry.
func (p Policy) RetryableMethod(method string) bool {
	if method == "" {
		method = http.MethodGet
	}
	for _, m := range p.RetryMethods {
		if m == method {
			return true
		}
	}
	return false
}

// RetryableStatus reports whether the status code is eligible for retry.
func (p Policy) RetryableStatus(code int) bool {
	for _, s := range p.RetryStatuses {
		if s == code {
			return true
		}
	}
	return false
}

// Backoff calculates the backoff delay for a given attempt (1-indexed).
// Formula: min(maxDelay, baseDelay * 2^(attempt-1)) plus that value
// multiplied by jitterRatio and a uniform random value in [0,1).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.JitterRatio > 0 {
		random := p.Rand
		if random == nil {
			random = rand.Float64
		}
		delay += delay * p.JitterRatio * random()
	}

	return time.Duration(delay)
}
