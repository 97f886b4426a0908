// Package openai provides an OpenAI-backed capability adapter covering chat,
// text, speech (synthesis and transcription), and image generation.
package openai

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/modalkit/modalkit"
	"github.com/modalkit/modalkit/httpclient"
)

// AdapterID is the default registry id for this adapter.
const AdapterID = "openai"

// Default models per capability.
const (
	DefaultChatModel       = "gpt-4o"
	DefaultImageModel      = "dall-e-3"
	DefaultSpeechModel     = "tts-1"
	DefaultTranscribeModel = "whisper-1"
	DefaultVoice           = "alloy"
)

// Adapter implements modalkit.Adapter on top of the OpenAI SDK. It holds no
// API key: the key arrives per call through the request context, and an SDK
// client is constructed from it per request. All SDK traffic flows through a
// retrying httpclient.Transport.
type Adapter struct {
	id              string
	baseURL         string
	chatModel       string
	imageModel      string
	speechModel     string
	transcribeModel string
	voice           string
	httpClient      *http.Client
}

// New creates an OpenAI adapter with the default models and retry policy.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		id:              AdapterID,
		chatModel:       DefaultChatModel,
		imageModel:      DefaultImageModel,
		speechModel:     DefaultSpeechModel,
		transcribeModel: DefaultTranscribeModel,
		voice:           DefaultVoice,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.httpClient == nil {
		a.httpClient = httpclient.NewHTTPClient(httpclient.DefaultPolicy())
	}
	return a
}

// Option configures the adapter.
type Option func(*Adapter)

// WithID overrides the registry id, allowing several differently configured
// OpenAI adapters in one registry.
func WithID(id string) Option {
	return func(a *Adapter) {
		a.id = id
	}
}

// WithBaseURL points the adapter at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(a *Adapter) {
		a.baseURL = url
	}
}

// WithChatModel sets the default chat and text model.
func WithChatModel(model string) Option {
	return func(a *Adapter) {
		a.chatModel = model
	}
}

// WithImageModel sets the default image model.
func WithImageModel(model string) Option {
	return func(a *Adapter) {
		a.imageModel = model
	}
}

// WithSpeechModel sets the default speech synthesis model.
func WithSpeechModel(model string) Option {
	return func(a *Adapter) {
		a.speechModel = model
	}
}

// WithTranscribeModel sets the default transcription model.
func WithTranscribeModel(model string) Option {
	return func(a *Adapter) {
		a.transcribeModel = model
	}
}

// WithVoice sets the default synthesis voice.
func WithVoice(voice string) Option {
	return func(a *Adapter) {
		a.voice = voice
	}
}

// WithPolicy sets the retry policy for the adapter's HTTP traffic.
func WithPolicy(p httpclient.Policy) Option {
	return func(a *Adapter) {
		a.httpClient = httpclient.NewHTTPClient(p)
	}
}

// WithHTTPClient sets the HTTP client used for SDK traffic, replacing the
// retrying default. Mostly useful in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		a.httpClient = c
	}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() string { return a.id }

// Capabilities returns the capabilities this adapter declares.
func (a *Adapter) Capabilities() []modalkit.Capability {
	return []modalkit.Capability{
		modalkit.CapabilityChat,
		modalkit.CapabilityText,
		modalkit.CapabilitySpeech,
		modalkit.CapabilityImage,
	}
}

// Handlers returns the operation functions for the declared capabilities.
func (a *Adapter) Handlers() modalkit.Handlers {
	return modalkit.Handlers{
		Chat:             a.chat,
		Text:             a.text,
		SynthesizeSpeech: a.synthesizeSpeech,
		TranscribeSpeech: a.transcribeSpeech,
		GenerateImage:    a.generateImage,
	}
}

// sdk builds an SDK client bound to the per-call API key.
func (a *Adapter) sdk(rc modalkit.RequestContext) openai.Client {
	// SDK-level retries stay off: the transport policy owns retry behavior.
	opts := []option.RequestOption{
		option.WithAPIKey(rc.APIKey),
		option.WithHTTPClient(a.httpClient),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}
	return openai.NewClient(opts...)
}

func (a *Adapter) chat(ctx context.Context, rc modalkit.RequestContext, messages []modalkit.Message, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
	options := modalkit.ApplyOptions(opts...)
	model := a.chatModel
	if options.Model != "" {
		model = options.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: convertMessages(messages),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}

	client := a.sdk(rc)
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, modalkit.NewPermanentError("chat completion returned no choices", 0, nil)
	}

	return &modalkit.ChatResult{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: &modalkit.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}

func (a *Adapter) text(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
	return a.chat(ctx, rc, []modalkit.Message{modalkit.NewUserMessage(prompt)}, opts...)
}

func convertMessages(messages []modalkit.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case modalkit.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		case modalkit.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

var _ modalkit.Adapter = (*Adapter)(nil)
