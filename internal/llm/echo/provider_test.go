package echo_test

import (
	"context"
	"testing"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/llm"
	"github.com/Rrens/chat-widget/internal/llm/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Reply(t *testing.T) {
	p := echo.NewProvider(domain.French)
	require.True(t, p.IsConfigured())

	resp, err := p.Reply(context.Background(), llm.Request{Message: "Bonjour"}, "")
	require.NoError(t, err)
	assert.Equal(t, `Réponse automatique à: "Bonjour"`, resp.Reply)

	resp, err = p.Reply(context.Background(), llm.Request{Attachment: &domain.FileAttachment{Name: "cv.docx"}}, "")
	require.NoError(t, err)
	assert.Equal(t, `J'ai bien reçu votre fichier: "cv.docx"`, resp.Reply)
}

func TestProvider_ReplyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := echo.NewProvider(domain.English).Reply(ctx, llm.Request{Message: "x"}, "")
	assert.ErrorIs(t, err, context.Canceled)
}
