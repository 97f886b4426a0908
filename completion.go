package modalkit

import (
	"time"

	"github.com/google/uuid"
)

// CompletionType identifies which operation produced a Completion.
type CompletionType string

const (
	CompletionTypeChat       CompletionType = "chat"
	CompletionTypeText       CompletionType = "text"
	CompletionTypeSpeech     CompletionType = "speech"
	CompletionTypeTranscript CompletionType = "transcript"
	CompletionTypeImage      CompletionType = "image"
	CompletionTypeVideo      CompletionType = "video"
	CompletionTypeModel      CompletionType = "model"
	CompletionTypeBalance    CompletionType = "balance"
)

// Completion is the normalized result envelope returned by every platform
// operation, regardless of which adapter served the request. A Completion is
// created once per successful call and is immutable thereafter.
type Completion struct {
	// ID is a unique identifier generated fresh for each call.
	ID string `json:"id"`
	// PartitionKey groups completions by the requesting user or session.
	PartitionKey string `json:"partitionKey,omitempty"`
	// Type identifies the operation that produced this completion.
	Type CompletionType `json:"type"`
	// Model is the provider model that served the request.
	Model string `json:"model,omitempty"`
	// DurationMillis is the wall-clock span of the underlying call.
	DurationMillis int64 `json:"durationMs"`
	// CreatedAt is the timestamp at envelope creation.
	CreatedAt time.Time `json:"createdAt"`
	// Usage contains token accounting when the provider reports it.
	Usage *Usage `json:"usage,omitempty"`

	// Message holds the assistant reply for chat and text completions.
	Message string `json:"message,omitempty"`
	// AudioBase64 holds synthesized audio for speech completions.
	AudioBase64 string `json:"audioBase64,omitempty"`
	// Transcript holds recognized text for transcription completions.
	Transcript string `json:"transcript,omitempty"`
	// ImageURL and ImageBase64 hold the generated image; which is set
	// depends on what the provider returns.
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	// VideoURL holds the generated video location.
	VideoURL string `json:"videoUrl,omitempty"`
	// ModelURL holds the generated 3D model location.
	ModelURL string `json:"modelUrl,omitempty"`
	// Balance holds the remaining account credit for balance completions.
	Balance float64 `json:"balance,omitempty"`
}

// NewCompletion builds the shared envelope with a fresh ID and timestamp.
// Callers fill the type-specific payload and stamp DurationMillis after
// measuring the underlying operation.
func NewCompletion(t CompletionType, partitionKey, model string) *Completion {
	return &Completion{
		ID:           "cmpl-" + uuid.New().String(),
		PartitionKey: partitionKey,
		Type:         t,
		Model:        model,
		CreatedAt:    time.Now(),
	}
}

// ChatResult is an adapter's reply to a chat or text request.
type ChatResult struct {
	Content      string
	Model        string
	FinishReason string
	Usage        *Usage
}

// SpeechResult is an adapter's reply to a speech synthesis request.
type SpeechResult struct {
	AudioBase64 string
	Model       string
}

// TranscriptResult is an adapter's reply to a transcription request.
type TranscriptResult struct {
	Text  string
	Model string
}

// ImageResult is an adapter's reply to an image generation request.
type ImageResult struct {
	URL    string
	Base64 string
	// RevisedPrompt contains the prompt the provider actually used, when
	// the provider rewrites prompts.
	RevisedPrompt string
	Model         string
}

// VideoResult is an adapter's reply to a video generation request.
type VideoResult struct {
	URL   string
	Model string
}

// ModelResult is an adapter's reply to a 3D model generation request.
type ModelResult struct {
	URL    string
	Format string
	Model  string
}

// BalanceResult is an adapter's reply to a balance inquiry.
type BalanceResult struct {
	Amount   float64
	Currency string
}
