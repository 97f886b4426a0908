package modalkit

import "context"

// Handlers is the sparse set of per-capability operation functions an adapter
// exposes. A nil entry means the adapter does not serve that operation; the
// routing engine inspects presence, never the adapter's concrete type.
//
// The Speech capability is operational when either SynthesizeSpeech or
// TranscribeSpeech is present.
type Handlers struct {
	Chat             func(ctx context.Context, rc RequestContext, messages []Message, opts ...Option) (*ChatResult, error)
	Text             func(ctx context.Context, rc RequestContext, prompt string, opts ...Option) (*ChatResult, error)
	SynthesizeSpeech func(ctx context.Context, rc RequestContext, input string, opts ...SpeechOption) (*SpeechResult, error)
	TranscribeSpeech func(ctx context.Context, rc RequestContext, audio AudioSource, opts ...SpeechOption) (*TranscriptResult, error)
	GenerateImage    func(ctx context.Context, rc RequestContext, prompt string, opts ...ImageOption) (*ImageResult, error)
	GenerateVideo    func(ctx context.Context, rc RequestContext, prompt string, opts ...VideoOption) (*VideoResult, error)
	GenerateModel    func(ctx context.Context, rc RequestContext, prompt string, opts ...ModelOption) (*ModelResult, error)
	CheckBalance     func(ctx context.Context, rc RequestContext) (*BalanceResult, error)
}

// Adapter is a pluggable implementation of one or more capabilities, typically
// backed by a specific external provider.
//
// Implementations must be safe for concurrent use: handlers receive their API
// key per call through the RequestContext rather than holding one.
type Adapter interface {
	// ID returns the adapter identifier, unique within a registry
	// (e.g. "openai", "gemini").
	ID() string

	// Capabilities returns the capabilities this adapter declares.
	Capabilities() []Capability

	// Handlers returns the operation functions for the declared
	// capabilities.
	Handlers() Handlers
}

// Vetoer is optionally implemented by adapters that want to veto routing at
// runtime even for capabilities they statically declare (e.g. behind a
// feature flag). The routing engine consults it last during CanHandle checks.
type Vetoer interface {
	CanHandle(capabilities []Capability) bool
}
