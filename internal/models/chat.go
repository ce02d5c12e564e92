package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role     string `json:"role"` // "user" or "assistant"
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
}

// ChatRequest is the payload accepted by POST /v1/chat and forwarded to the
// upstream provider with the server-side defaults applied.
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// StreamChunk mirrors one streamed completion chunk from the provider.
// Only the delta content is of interest; everything else is relayed opaquely.
type StreamChunk struct {
	Choices []StreamChoice `json:"choices"`
}

type StreamChoice struct {
	Delta StreamDelta `json:"delta"`
}

type StreamDelta struct {
	Content string `json:"content,omitempty"`
}
