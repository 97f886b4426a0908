// Package platform routes capability operations to registered adapters.
//
// A Platform holds an ordered adapter registry and an API key table, both
// immutable after construction. Each operation resolves exactly one adapter
// (honoring per-capability default overrides), injects its key through a
// fresh request context, invokes the matching handler, and normalizes the
// outcome into a modalkit.Completion. Concurrent operations share no state
// beyond the read-only registry.
package platform

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/modalkit/modalkit"
)

// Config-independent construction: everything arrives through arguments and
// options; the platform never reads environment variables or files.

// Option configures a Platform.
type Option func(*Platform)

// WithDefaultAdapter pins a capability to a specific adapter id, overriding
// registration-order selection. The pin is binding: if that adapter is
// missing or unusable, operations on the capability fail instead of falling
// back to another adapter.
func WithDefaultAdapter(c modalkit.Capability, adapterID string) Option {
	return func(p *Platform) {
		p.defaults[c] = adapterID
	}
}

// WithEvents sets an optional channel for operation events. Events are sent
// non-blocking; if the channel is full, events are dropped.
func WithEvents(ch chan<- Event) Option {
	return func(p *Platform) {
		p.events = ch
	}
}

// WithUserID sets the user or session id stamped into request contexts and
// completion partition keys.
func WithUserID(id string) Option {
	return func(p *Platform) {
		p.userID = id
	}
}

// Platform routes capability operations across registered adapters.
type Platform struct {
	adapters []modalkit.Adapter
	byID     map[string]modalkit.Adapter
	keys     map[string]string
	defaults map[modalkit.Capability]string
	events   chan<- Event
	userID   string

	balanceMu sync.Mutex
	balance   *modalkit.Completion
}

// New creates a platform over the given adapters and API key table.
//
// Adapter order is significant: without a default override, the first
// registered adapter declaring a capability serves it. Keys are trimmed of
// surrounding whitespace; entries blank after trimming are treated as absent.
// Construction fails on an empty or duplicated adapter id.
func New(adapters []modalkit.Adapter, apiKeys map[string]string, opts ...Option) (*Platform, error) {
	p := &Platform{
		adapters: adapters,
		byID:     make(map[string]modalkit.Adapter, len(adapters)),
		keys:     make(map[string]string, len(apiKeys)),
		defaults: make(map[modalkit.Capability]string),
	}

	for i, adapter := range adapters {
		id := adapter.ID()
		if id == "" {
			return nil, &ErrEmptyAdapterID{Index: i}
		}
		if _, exists := p.byID[id]; exists {
			return nil, &ErrDuplicateAdapterID{ID: id}
		}
		p.byID[id] = adapter
	}

	for id, key := range apiKeys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			p.keys[id] = trimmed
		}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Chat sends a conversation through the adapter resolved for the Chat
// capability and returns the normalized completion.
func (p *Platform) Chat(ctx context.Context, messages []modalkit.Message, opts ...modalkit.Option) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilityChat, handlerChat, true)
	if err != nil {
		return nil, err
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "chat", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().Chat(ctx, rc, messages, opts...)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "chat", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeChat, p.userID, out.Model)
	completion.Message = out.Content
	completion.Usage = out.Usage
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "chat", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Usage: out.Usage})
	return completion, nil
}

// GenerateText completes a single prompt through the adapter resolved for
// the Text capability.
func (p *Platform) GenerateText(ctx context.Context, prompt string, opts ...modalkit.Option) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilityText, handlerText, true)
	if err != nil {
		return nil, err
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "generate_text", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().Text(ctx, rc, prompt, opts...)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "generate_text", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeText, p.userID, out.Model)
	completion.Message = out.Content
	completion.Usage = out.Usage
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "generate_text", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Usage: out.Usage})
	return completion, nil
}

// SynthesizeSpeech converts text to audio through the adapter resolved for
// the Speech capability.
func (p *Platform) SynthesizeSpeech(ctx context.Context, input string, opts ...modalkit.SpeechOption) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilitySpeech, handlerSynthesizeSpeech, true)
	if err != nil {
		return nil, err
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "synthesize_speech", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().SynthesizeSpeech(ctx, rc, input, opts...)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "synthesize_speech", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeSpeech, p.userID, out.Model)
	completion.AudioBase64 = out.AudioBase64
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "synthesize_speech", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start)})
	return completion, nil
}

// TranscribeSpeech converts audio to text through the adapter resolved for
// the Speech capability.
func (p *Platform) TranscribeSpeech(ctx context.Context, audio modalkit.AudioSource, opts ...modalkit.SpeechOption) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilitySpeech, handlerTranscribeSpeech, true)
	if err != nil {
		return nil, err
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "transcribe_speech", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().TranscribeSpeech(ctx, rc, audio, opts...)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "transcribe_speech", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeTranscript, p.userID, out.Model)
	completion.Transcript = out.Text
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "transcribe_speech", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start)})
	return completion, nil
}

// GenerateImage creates an image from a text prompt through the adapter
// resolved for the Image capability.
func (p *Platform) GenerateImage(ctx context.Context, prompt string, opts ...modalkit.ImageOption) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilityImage, handlerGenerateImage, true)
	if err != nil {
		return nil, err
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "generate_image", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().GenerateImage(ctx, rc, prompt, opts...)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "generate_image", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeImage, p.userID, out.Model)
	completion.ImageURL = out.URL
	completion.ImageBase64 = out.Base64
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "generate_image", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start)})
	return completion, nil
}

// GenerateVideo creates a video from a text prompt through the adapter
// resolved for the Video capability.
func (p *Platform) GenerateVideo(ctx context.Context, prompt string, opts ...modalkit.VideoOption) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilityVideo, handlerGenerateVideo, true)
	if err != nil {
		return nil, err
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "generate_video", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().GenerateVideo(ctx, rc, prompt, opts...)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "generate_video", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeVideo, p.userID, out.Model)
	completion.VideoURL = out.URL
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "generate_video", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start)})
	return completion, nil
}

// GenerateModel creates a 3D model from a text prompt through the adapter
// resolved for the Model capability.
func (p *Platform) GenerateModel(ctx context.Context, prompt string, opts ...modalkit.ModelOption) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilityModel, handlerGenerateModel, true)
	if err != nil {
		return nil, err
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "generate_model", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().GenerateModel(ctx, rc, prompt, opts...)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "generate_model", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeModel, p.userID, out.Model)
	completion.ModelURL = out.URL
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "generate_model", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start)})
	return completion, nil
}

// CheckBalance queries the remaining account credit. Balance is an optional
// capability: when no adapter serves it (or its key is absent), CheckBalance
// returns a zero-balance completion instead of failing, so a platform without
// a balance-capable provider degrades gracefully.
func (p *Platform) CheckBalance(ctx context.Context) (*modalkit.Completion, error) {
	res, err := p.resolve(modalkit.CapabilityBalance, handlerCheckBalance, false)
	if err != nil {
		return nil, err
	}
	if res == nil {
		completion := modalkit.NewCompletion(modalkit.CompletionTypeBalance, p.userID, "")
		return completion, nil
	}

	rc := modalkit.NewRequestContext(p.userID, res.adapter.ID(), res.apiKey)
	start := time.Now()
	p.emit(Event{Type: EventRequestStart, Operation: "check_balance", Adapter: res.adapter.ID(), TraceID: rc.TraceID})

	out, err := res.adapter.Handlers().CheckBalance(ctx, rc)
	if err != nil {
		p.emit(Event{Type: EventRequestError, Operation: "check_balance", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start), Error: err})
		return nil, err
	}

	completion := modalkit.NewCompletion(modalkit.CompletionTypeBalance, p.userID, "")
	completion.Balance = out.Amount
	completion.DurationMillis = time.Since(start).Milliseconds()

	p.emit(Event{Type: EventRequestComplete, Operation: "check_balance", Adapter: res.adapter.ID(), TraceID: rc.TraceID, Duration: time.Since(start)})
	return completion, nil
}

// CurrentBalance returns a balance snapshot, computing it on first use and
// caching the result for the platform's lifetime. A failed first computation
// is not cached, so callers may retry.
func (p *Platform) CurrentBalance(ctx context.Context) (*modalkit.Completion, error) {
	p.balanceMu.Lock()
	defer p.balanceMu.Unlock()

	if p.balance != nil {
		return p.balance, nil
	}
	completion, err := p.CheckBalance(ctx)
	if err != nil {
		return nil, err
	}
	p.balance = completion
	return completion, nil
}

// CanHandle reports whether every requested capability is currently
// serviceable: a resolvable adapter exists, declares the capability, has a
// present API key, exposes the operationally relevant handler (for Speech,
// either synthesis or transcription suffices), and does not veto the request.
// It mutates no state and is safe to call repeatedly and concurrently.
func (p *Platform) CanHandle(capabilities ...modalkit.Capability) bool {
	for _, c := range capabilities {
		res, err := p.resolve(c, operationalHandler(c), false)
		if err != nil || res == nil {
			return false
		}
		if vetoer, ok := res.adapter.(modalkit.Vetoer); ok {
			if !vetoer.CanHandle(capabilities) {
				return false
			}
		}
	}
	return true
}
