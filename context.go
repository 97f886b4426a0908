package modalkit

import "github.com/google/uuid"

// RequestContext is the ephemeral per-call bundle passed to adapter handlers.
// It carries the identity of the caller, the adapter that was selected, the
// API key resolved for it, and a trace identifier unique to this call. A
// RequestContext lives for exactly one operation and is never persisted.
type RequestContext struct {
	UserID     string
	ProviderID string
	APIKey     string
	TraceID    string
}

// NewRequestContext creates a request context with a fresh trace identifier.
func NewRequestContext(userID, providerID, apiKey string) RequestContext {
	return RequestContext{
		UserID:     userID,
		ProviderID: providerID,
		APIKey:     apiKey,
		TraceID:    "trace-" + uuid.New().String(),
	}
}
