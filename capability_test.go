package modalkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllCapabilities(t *testing.T) {
	all := AllCapabilities()
	assert.Len(t, all, 7)
	assert.Contains(t, all, CapabilityChat)
	assert.Contains(t, all, CapabilityBalance)

	// Returned slice is a copy; mutating it must not affect later calls.
	all[0] = Capability("mutated")
	assert.NotContains(t, AllCapabilities(), Capability("mutated"))
}
