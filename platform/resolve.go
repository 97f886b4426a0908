package platform

import (
	"fmt"

	"github.com/modalkit/modalkit"
)

// handlerKind names one operation function in modalkit.Handlers.
type handlerKind string

const (
	handlerChat             handlerKind = "chat"
	handlerText             handlerKind = "text"
	handlerSynthesizeSpeech handlerKind = "synthesizeSpeech"
	handlerTranscribeSpeech handlerKind = "transcribeSpeech"
	handlerGenerateImage    handlerKind = "generateImage"
	handlerGenerateVideo    handlerKind = "generateVideo"
	handlerGenerateModel    handlerKind = "generateModel"
	handlerCheckBalance     handlerKind = "checkBalance"

	// handlerSpeechAny is satisfied by either speech function; used when
	// checking whether the Speech capability is operational at all.
	handlerSpeechAny handlerKind = "speech"
)

// hasHandler reports whether the handler set exposes the named function.
func hasHandler(h modalkit.Handlers, kind handlerKind) bool {
	switch kind {
	case handlerChat:
		return h.Chat != nil
	case handlerText:
		return h.Text != nil
	case handlerSynthesizeSpeech:
		return h.SynthesizeSpeech != nil
	case handlerTranscribeSpeech:
		return h.TranscribeSpeech != nil
	case handlerGenerateImage:
		return h.GenerateImage != nil
	case handlerGenerateVideo:
		return h.GenerateVideo != nil
	case handlerGenerateModel:
		return h.GenerateModel != nil
	case handlerCheckBalance:
		return h.CheckBalance != nil
	case handlerSpeechAny:
		return h.SynthesizeSpeech != nil || h.TranscribeSpeech != nil
	default:
		return false
	}
}

// operationalHandler maps a capability to the handler that makes it usable.
func operationalHandler(c modalkit.Capability) handlerKind {
	switch c {
	case modalkit.CapabilityChat:
		return handlerChat
	case modalkit.CapabilityText:
		return handlerText
	case modalkit.CapabilitySpeech:
		return handlerSpeechAny
	case modalkit.CapabilityImage:
		return handlerGenerateImage
	case modalkit.CapabilityVideo:
		return handlerGenerateVideo
	case modalkit.CapabilityModel:
		return handlerGenerateModel
	case modalkit.CapabilityBalance:
		return handlerCheckBalance
	default:
		return handlerKind(c)
	}
}

// declares reports whether the adapter lists the capability.
func declares(a modalkit.Adapter, c modalkit.Capability) bool {
	for _, got := range a.Capabilities() {
		if got == c {
			return true
		}
	}
	return false
}

// resolution pairs a selected adapter with its resolved API key.
type resolution struct {
	adapter modalkit.Adapter
	apiKey  string
}

// resolve selects exactly one adapter for the capability and handler kind.
//
// A configured default adapter is binding: if it is missing, does not declare
// the capability, lacks the handler, or has no key, resolution fails rather
// than silently substituting another adapter. Without a default, adapters are
// scanned in registration order and the first one declaring the capability
// and exposing the handler wins; a missing key on that adapter fails the same
// way.
//
// When required is false, an unavailable capability resolves to (nil, nil)
// instead of an error.
func (p *Platform) resolve(c modalkit.Capability, kind handlerKind, required bool) (*resolution, error) {
	if id, ok := p.defaults[c]; ok {
		adapter, found := p.byID[id]
		switch {
		case !found:
			return p.unavailable(required, c, kind,
				fmt.Sprintf("default adapter %q is not registered", id))
		case !declares(adapter, c):
			return p.unavailable(required, c, kind,
				fmt.Sprintf("default adapter %q does not declare capability %q", id, c))
		case !hasHandler(adapter.Handlers(), kind):
			return p.unavailable(required, c, kind,
				fmt.Sprintf("default adapter %q has no %s handler", id, kind))
		}
		return p.withKey(adapter, c, required)
	}

	for _, adapter := range p.adapters {
		if declares(adapter, c) && hasHandler(adapter.Handlers(), kind) {
			return p.withKey(adapter, c, required)
		}
	}

	return p.unavailable(required, c, kind,
		fmt.Sprintf("no registered adapter declares it with a %s handler", kind))
}

// withKey attaches the adapter's API key, or fails resolution if the key
// table has no usable entry for it.
func (p *Platform) withKey(adapter modalkit.Adapter, c modalkit.Capability, required bool) (*resolution, error) {
	key, ok := p.keys[adapter.ID()]
	if !ok {
		if !required {
			return nil, nil
		}
		return nil, &ErrMissingAPIKey{AdapterID: adapter.ID(), Capability: c}
	}
	return &resolution{adapter: adapter, apiKey: key}, nil
}

func (p *Platform) unavailable(required bool, c modalkit.Capability, kind handlerKind, reason string) (*resolution, error) {
	if !required {
		return nil, nil
	}
	return nil, &ErrCapabilityUnavailable{Capability: c, Handler: string(kind), Reason: reason}
}
