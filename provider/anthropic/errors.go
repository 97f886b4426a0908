package anthropic

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/modalkit/modalkit"
)

// wrapError maps an Anthropic SDK error onto the shared error taxonomy,
// extracting status codes and Retry-After headers.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		// Likely a network error; the transport already retried it.
		return err
	}

	code := apiErr.StatusCode
	msg := err.Error()

	if retryAfter := parseRetryAfter(apiErr.Response); retryAfter > 0 {
		return modalkit.NewTransientErrorWithRetry(msg, code, retryAfter, err)
	}

	switch categorizeStatusCode(code) {
	case modalkit.ErrorTransient:
		return modalkit.NewTransientError(msg, code, err)
	case modalkit.ErrorUserInput:
		return modalkit.NewUserInputError(msg, code, err)
	default:
		return modalkit.NewPermanentError(msg, code, err)
	}
}

// categorizeStatusCode determines the error category from an HTTP status code.
func categorizeStatusCode(code int) modalkit.ErrorCategory {
	switch {
	case code == 429:
		return modalkit.ErrorTransient // Rate limited
	case code >= 500 && code < 600:
		return modalkit.ErrorTransient // Server error, including 529 overloaded
	case code == 400 || code == 404 || code == 422:
		return modalkit.ErrorUserInput // Bad request or not found
	default:
		return modalkit.ErrorPermanent
	}
}

// parseRetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is not present or cannot be parsed.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}
