package modalkit

// Capability identifies a logical operation family used as the routing key.
type Capability string

// String returns the capability identifier.
func (c Capability) String() string { return string(c) }

// Supported capabilities.
const (
	CapabilityChat    Capability = "chat"
	CapabilityText    Capability = "text"
	CapabilitySpeech  Capability = "speech"
	CapabilityImage   Capability = "image"
	CapabilityVideo   Capability = "video"
	CapabilityModel   Capability = "model"
	CapabilityBalance Capability = "balance"
)

// AllCapabilities lists every capability the platform can route, in a stable
// order. The returned slice is fresh on every call.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityChat,
		CapabilityText,
		CapabilitySpeech,
		CapabilityImage,
		CapabilityVideo,
		CapabilityModel,
		CapabilityBalance,
	}
}
