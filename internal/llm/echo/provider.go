package echo

import (
	"context"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/llm"
)

// Provider implements llm.Provider with canned replies that repeat the user's
// message or acknowledge the attached file
type Provider struct {
	locale domain.Locale
}

// NewProvider creates a new echo provider
func NewProvider(locale domain.Locale) llm.Provider {
	return &Provider{locale: locale}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "echo"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{"canned"}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return "canned"
}

// IsConfigured always holds, echo has no credentials
func (p *Provider) IsConfigured() bool {
	return true
}

// Reply returns the canned answer
func (p *Provider) Reply(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &llm.Response{
		Reply: p.locale.EchoFor(req.Message, req.Attachment),
		Model: p.DefaultModel(),
	}, nil
}
