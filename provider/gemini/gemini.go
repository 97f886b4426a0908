// Package gemini provides a Google Gemini-backed capability adapter covering
// chat, text, image generation (Imagen), and video generation (Veo).
package gemini

import (
	"context"
	"encoding/base64"
	"net/http"

	"google.golang.org/genai"

	"github.com/modalkit/modalkit"
	"github.com/modalkit/modalkit/httpclient"
)

// AdapterID is the default registry id for this adapter.
const AdapterID = "gemini"

// Default models per capability.
const (
	DefaultChatModel  = "gemini-2.0-flash"
	DefaultImageModel = "imagen-3.0-generate-002"
	DefaultVideoModel = "veo-2.0-generate-001"
)

// Adapter implements modalkit.Adapter on top of the Google GenAI SDK. The
// API key arrives per call through the request context; SDK clients are
// constructed per request and share a retrying HTTP client.
type Adapter struct {
	id         string
	baseURL    string
	chatModel  string
	imageModel string
	videoModel string
	httpClient *http.Client
}

// New creates a Gemini adapter with the default models and retry policy.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		id:         AdapterID,
		chatModel:  DefaultChatModel,
		imageModel: DefaultImageModel,
		videoModel: DefaultVideoModel,
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

// WithImageModel sets the default image model.
func WithImageModel(model string) Option {
	return func(a *Adapter) {
		a.imageModel = model
	}
}

// WithVideoModel sets the default video model.
func WithVideoModel(model string) Option {
	return func(a *Adapter) {
		a.videoModel = model
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
		modalkit.CapabilityImage,
		modalkit.CapabilityVideo,
	}
}

// Handlers returns the operation functions for the declared capabilities.
func (a *Adapter) Handlers() modalkit.Handlers {
	return modalkit.Handlers{
		Chat:          a.chat,
		Text:          a.text,
		GenerateImage: a.generateImage,
		GenerateVideo: a.generateVideo,
	}
}

// sdk builds a GenAI client bound to the per-call API key.
func (a *Adapter) sdk(ctx context.Context, rc modalkit.RequestContext) (*genai.Client, error) {
	config := &genai.ClientConfig{
		APIKey:     rc.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.httpClient,
	}
	if a.baseURL != "" {
		config.HTTPOptions.BaseURL = a.baseURL
	}
	return genai.NewClient(ctx, config)
}

func (a *Adapter) chat(ctx context.Context, rc modalkit.RequestContext, messages []modalkit.Message, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
	options := modalkit.ApplyOptions(opts...)
	model := a.chatModel
	if options.Model != "" {
		model = options.Model
	}

	client, err := a.sdk(ctx, rc)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}

	resp, err := client.Models.GenerateContent(ctx, model, convertMessages(messages), config)
	if err != nil {
		return nil, wrapError(err)
	}

	content := ""
	finishReason := ""
	if len(resp.Candidates) > 0 {
		finishReason = string(resp.Candidates[0].FinishReason)
		if resp.Candidates[0].Content != nil {
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text != "" {
					content += part.Text
				}
			}
		}
	}

	var usage *modalkit.Usage
	if resp.UsageMetadata != nil {
		usage = &modalkit.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return &modalkit.ChatResult{
		Content:      content,
		Model:        model,
		FinishReason: finishReason,
		Usage:        usage,
	}, nil
}

func (a *Adapter) text(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.Option) (*modalkit.ChatResult, error) {
	return a.chat(ctx, rc, []modalkit.Message{modalkit.NewUserMessage(prompt)}, opts...)
}

func (a *Adapter) generateImage(ctx context.Context, rc modalkit.RequestContext, prompt string, opts ...modalkit.ImageOption) (*modalkit.ImageResult, error) {
	options := modalkit.ApplyImageOptions(opts...)
	model := a.imageModel
	if options.Model != "" {
		model = options.Model
	}

	client, err := a.sdk(ctx, rc)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	}
	if options.Size != "" {
		config.AspectRatio = convertSizeToAspectRatio(options.Size)
	}

	resp, err := client.Models.GenerateImages(ctx, model, prompt, config)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.GeneratedImages) == 0 {
		return nil, modalkit.NewPermanentError("image generation returned no images", 0, nil)
	}

	var b64 string
	if img := resp.GeneratedImages[0].Image; img != nil && len(img.ImageBytes) > 0 {
		b64 = base64.StdEncoding.EncodeToString(img.ImageBytes)
	}

	return &modalkit.ImageResult{
		Base64: b64,
		Model:  model,
	}, nil
}

// convertMessages maps conversation messages to GenAI contents. System
// messages become user-role contents: Gemini has no system role inside
// contents.
func convertMessages(messages []modalkit.Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		role := "user"
		if msg.Role == modalkit.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return contents
}

// convertSizeToAspectRatio maps ImageSize to Imagen aspect ratio strings.
func convertSizeToAspectRatio(size modalkit.ImageSize) string {
	switch size {
	case modalkit.ImageSize1024x1792:
		return "9:16" // Portrait
	case modalkit.ImageSize1792x1024:
		return "16:9" // Landscape
	default:
		return "1:1"
	}
}

var _ modalkit.Adapter = (*Adapter)(nil)
