package llm

import (
	"context"

	"github.com/Rrens/chat-widget/internal/domain"
)

// Turn is one prior message of the conversation handed to a provider as context
type Turn struct {
	Role    domain.MessageType
	Content string
}

// Request contains the user message an assistant reply is requested for
type Request struct {
	ConversationID string
	Message        string
	Attachment     *domain.FileAttachment
	History        []Turn
}

// Response contains the assistant reply
type Response struct {
	Reply      string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for assistant reply providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Reply produces the assistant answer to a user message
	Reply(ctx context.Context, req Request, model string) (*Response, error)
}
