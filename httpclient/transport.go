package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

// Transport is an http.RoundTripper that applies a retry policy to every
// request passing through it. It lets SDK-backed adapters reuse the same
// resilience layer as raw HTTP adapters: hand an *http.Client built around a
// Transport to the SDK and all its traffic is retried under the policy.
//
// Requests with a body must carry GetBody (requests built by http.NewRequest
// from a byte or string reader do, as do SDK-generated requests) so each
// attempt can replay it; a request without GetBody is passed through with a
// single attempt.
type Transport struct {
	// Base performs the individual attempts. Nil means
	// http.DefaultTransport.
	Base http.RoundTripper

	// Policy is the retry policy. The zero value means DefaultPolicy.
	Policy *Policy
}

// NewHTTPClient returns an *http.Client whose transport retries under the
// given policy.
func NewHTTPClient(policy Policy) *http.Client {
	return &http.Client{
		Transport: &Transport{Policy: &policy},
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	policy := DefaultPolicy()
	if t.Policy != nil {
		policy = *t.Policy
	}
	if req.Body != nil && req.GetBody == nil {
		// The body cannot be replayed; do not retry.
		policy.MaxAttempts = 1
	}

	client := New(
		WithDoer(roundTripDoer{base}),
		WithPolicy(policy),
	)

	operation := fmt.Sprintf("%s %s", req.Method, req.URL.Path)
	return client.Execute(req.Context(), operation, rebuild(req))
}

// rebuild returns a factory that clones the original request for each
// attempt, replaying the body through GetBody.
func rebuild(req *http.Request) RequestFactory {
	return func(ctx context.Context) (*http.Request, error) {
		clone := req.Clone(ctx)
		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			clone.Body = body
		}
		return clone, nil
	}
}

// roundTripDoer adapts a RoundTripper to the Doer interface.
type roundTripDoer struct {
	rt http.RoundTripper
}

func (d roundTripDoer) Do(req *http.Request) (*http.Response, error) {
	return d.rt.RoundTrip(req)
}
