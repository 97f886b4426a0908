package platform

import (
	"fmt"

	"github.com/modalkit/modalkit"
)

// ErrEmptyAdapterID is returned by New when an adapter reports an empty id.
type ErrEmptyAdapterID struct {
	Index int
}

func (e *ErrEmptyAdapterID) Error() string {
	return fmt.Sprintf("adapter at index %d has an empty id", e.Index)
}

// ErrDuplicateAdapterID is returned by New when two adapters share an id.
type ErrDuplicateAdapterID struct {
	ID string
}

func (e *ErrDuplicateAdapterID) Error() string {
	return fmt.Sprintf("duplicate adapter id %q", e.ID)
}

// ErrMissingAPIKey is returned when the adapter selected for an operation has
// no API key in the key table. A key is present only if non-empty after
// trimming. The key itself never appears in the message.
type ErrMissingAPIKey struct {
	AdapterID  string
	Capability modalkit.Capability
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Capability != "" {
		return fmt.Sprintf("missing API key for adapter %q (capability %s)", e.AdapterID, e.Capability)
	}
	return fmt.Sprintf("missing API key for adapter %q", e.AdapterID)
}

// ErrCapabilityUnavailable is returned when no adapter can serve a required
// capability: none is registered for it, or the configured default adapter is
// missing, does not declare the capability, or lacks the needed handler.
type ErrCapabilityUnavailable struct {
	Capability modalkit.Capability
	Handler    string
	Reason     string
}

func (e *ErrCapabilityUnavailable) Error() string {
	return fmt.Sprintf("capability %q unavailable: %s", e.Capability, e.Reason)
}
