package gemini

import (
	"errors"

	"google.golang.org/genai"

	"github.com/modalkit/modalkit"
)

// wrapError maps a GenAI SDK error onto the shared error taxonomy,
// extracting status codes. genai.APIError does not expose response headers,
// so no Retry-After is available.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		// Likely a network error; the transport already retried it.
		return err
	}

	code := apiErr.Code
	msg := err.Error()

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
		return modalkit.ErrorTransient // Server error
	case code == 400 || code == 404 || code == 422:
		return modalkit.ErrorUserInput // Bad request or not found
	default:
		return modalkit.ErrorPermanent
	}
}
