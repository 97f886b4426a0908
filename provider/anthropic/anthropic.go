// Package anthropic provides an Anthropic-backed capability adapter covering
// chat and text.
package anthropic

import (
	"context"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/modalkit/modalkit"
	"github.com/modalkit/modalkit/httpclient"
)

// AdapterID is the default registry id for this adapter.
const AdapterID = "anthropic"

// DefaultChatModel is the model used unless configured otherwise.
const DefaultChatModel = "claude-sonnet-4-20250514"

// defaultMaxTokens applies when the caller does not set a limit; the
// Messages API requires one.
const defaultMaxTokens = 4096

// Adapter implements modalkit.Adapter on top of the Anthropic SDK. The API
// key arrives per call through the request context; SDK traffic flows
// through a retrying httpclient.Transport.
type Adapter struct {
	id         string
	baseURL    string
	chatModel  string
	httpClient *http.Client
}

// New creates an Anthropic adapter with the default model and retry policy.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		id:        AdapterID,
		chatModel: DefaultChatModel,
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

// WithID overrides the registry id.
func WithID(id string) Option {
	return func(a *Adapter) {
		a.id = id
	}
}

// WithBaseURL points the adapter at a different API endpoint. Mostly useful
// in tests.
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

// WithPolicy sets the retry policy for the adapter's HTTP traffic.
func WithPolicy(p httpclient.Policy) Option {
	return func(a *Adapter) {
		a.httpClient = httpclient.NewHTTPClient(p)
	}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() string { return a.id }

// Capabilities returns the capabilities this adapter declares.
func (a *Adapter) Capabilities() []modalkit.Capability {
	return []modalkit.Capability{
		modalkit.CapabilityChat,
		modalkit.CapabilityText,
	}
}

// Handlers returns the operation functions for the declared capabilities.
func (a *Adapter) Handlers() modalkit.Handlers {
	return modalkit.Handlers{
		Chat: a.chat,
		Text: a.text,
	}
}

func (a *Adapter) chat(ctx context.Context, rc modalkit.RequestContext, messages []modalkit.Message, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
	options := modalkit.ApplyOptions(opts...)
	model := a.chatModel
	if options.Model != "" {
		model = options.Model
	}

	maxTokens := int64(defaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	msgs, system := convertMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}

	// SDK-level retries stay off: the transport policy owns retry behavior.
	clientOpts := []option.RequestOption{
		option.WithAPIKey(rc.APIKey),
		option.WithHTTPClient(a.httpClient),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(a.baseURL))
	}

	client := anthropic.NewClient(clientOpts...)
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &modalkit.ChatResult{
		Content:      content,
		Model:        model,
		FinishReason: string(resp.StopReason),
		Usage: &modalkit.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

func (a *Adapter) text(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
	return a.chat(ctx, rc, []modalkit.Message{modalkit.NewUserMessage(prompt)}, opts...)
}

func convertMessages(messages []modalkit.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var result []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	for _, msg := range messages {
		switch msg.Role {
		case modalkit.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case modalkit.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result, system
}

var _ modalkit.Adapter = (*Adapter)(nil)
