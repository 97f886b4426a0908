package modalkit

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
}

// NewUserMessage creates a user message with the given content.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewSystemMessage creates a system message with the given content.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewAssistantMessage creates an assistant message with the given content.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Usage contains token usage information for a request.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// AudioSource holds audio data for transcription requests.
type AudioSource struct {
	// Data contains the raw audio bytes.
	Data []byte
	// Filename is a name hint for providers that require one (e.g. "clip.mp3").
	Filename string
	// MimeType specifies the audio format (e.g. "audio/mpeg", "audio/wav").
	MimeType string
}
