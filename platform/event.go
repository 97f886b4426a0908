package platform

import (
	"time"

	"github.com/modalkit/modalkit"
)

// EventType identifies the kind of event occurring during platform operations.
type EventType string

const (
	// EventRequestStart fires after an adapter is resolved, before its
	// handler runs.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after a handler returns successfully.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when a handler fails.
	EventRequestError EventType = "request_error"
)

// Event represents an observable occurrence during platform operations.
type Event struct {
	// Type identifies the kind of event.
	Type EventType

	// Operation names the platform operation ("chat", "generate_image", ...).
	Operation string

	// Adapter is the id of the adapter serving the request.
	Adapter string

	// TraceID is the per-call trace identifier from the request context.
	TraceID string

	// Duration is the elapsed time for completed or failed requests.
	Duration time.Duration

	// Usage contains token usage when the adapter reports it.
	Usage *modalkit.Usage

	// Error contains the failure for EventRequestError.
	Error error

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// emit sends an event with timestamp to the channel without blocking.
func (p *Platform) emit(event Event) {
	if p.events == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case p.events <- event:
	default:
		// Channel full - don't block
	}
}
