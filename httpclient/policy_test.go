package httpclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 30*time.Second, p.Timeout)
	assert.Equal(t, 250*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 4*time.Second, p.MaxDelay)
	assert.Equal(t, 0.2, p.JitterRatio)
	assert.True(t, p.RespectRetryAfter)
}

func TestRetryableMethod(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.RetryableMethod(http.MethodGet))
	assert.True(t, p.RetryableMethod(http.MethodPost))
	assert.True(t, p.RetryableMethod(http.MethodDelete))
	assert.False(t, p.RetryableMethod(http.MethodPatch))
}

func TestRetryableMethodEmptyDefaultsToGet(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.RetryableMethod(""))

	p.RetryMethods = []string{http.MethodPost}
	assert.False(t, p.RetryableMethod(""))
}

func TestRetryableStatus(t *testing.T) {
	p := DefaultPolicy()

	for _, code := range []int{408, 409, 425, 429, 500, 502, 503, 504} {
		assert.True(t, p.RetryableStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 501} {
		assert.False(t, p.RetryableStatus(code), "status %d", code)
	}
}

func TestBackoffExponential(t *testing.T) {
	p := Policy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		JitterRatio: 0,
	}

	assert.Equal(t, 100*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 400*time.Millisecond, p.Backoff(3))
	assert.Equal(t, 800*time.Millisecond, p.Backoff(4))
	// Capped by MaxDelay from here on.
	assert.Equal(t, time.Second, p.Backoff(5))
	assert.Equal(t, time.Second, p.Backoff(10))
}

func TestBackoffJitterDeterministicWithInjectedRand(t *testing.T) {
	p := Policy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		JitterRatio: 0.2,
		Rand:        func() float64 { return 0.5 },
	}

	// 100ms + 100ms * 0.2 * 0.5 = 110ms
	assert.Equal(t, 110*time.Millisecond, p.Backoff(1))
	// 200ms + 200ms * 0.2 * 0.5 = 220ms
	assert.Equal(t, 220*time.Millisecond, p.Backoff(2))
}

func TestBackoffJitterBounds(t *testing.T) {
	p := Policy{
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		JitterRatio: 0.2,
	}

	for i := 0; i < 100; i++ {
		d := p.Backoff(1)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 120*time.Millisecond)
	}
}

func TestBackoffClampsAttemptBelowOne(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
	assert.Equal(t, p.Backoff(1), p.Backoff(0))
	assert.Equal(t, p.Backoff(1), p.Backoff(-3))
}
