package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Rrens/chat-widget/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
	name       string
	configured bool
}

func (m *MockProvider) Name() string              { return m.name }
func (m *MockProvider) AvailableModels() []string { return []string{"m1", "m2"} }
func (m *MockProvider) DefaultModel() string      { return "m1" }
func (m *MockProvider) IsConfigured() bool        { return m.configured }

func (m *MockProvider) Reply(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func TestRouter_ReplyUsesDefaultProvider(t *testing.T) {
	primary := &MockProvider{name: "primary", configured: true}
	other := &MockProvider{name: "other", configured: true}

	router := llm.NewRouter("primary", "")
	router.RegisterProvider(primary)
	router.RegisterProvider(other)

	ctx := context.Background()
	req := llm.Request{Message: "hi"}
	primary.On("Reply", ctx, req, "m1").Return(&llm.Response{Reply: "hello"}, nil)

	resp, err := router.Reply(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Reply)

	primary.AssertExpectations(t)
	other.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_ReplyUsesConfiguredModel(t *testing.T) {
	p := &MockProvider{name: "p", configured: true}
	router := llm.NewRouter("p", "m2")
	router.RegisterProvider(p)

	ctx := context.Background()
	req := llm.Request{Message: "hi"}
	p.On("Reply", ctx, req, "m2").Return(&llm.Response{Reply: "ok"}, nil)

	_, err := router.Reply(ctx, req)
	require.NoError(t, err)
	p.AssertExpectations(t)
}

func TestRouter_ReplyWrapsProviderError(t *testing.T) {
	p := &MockProvider{name: "p", configured: true}
	router := llm.NewRouter("p", "")
	router.RegisterProvider(p)

	boom := errors.New("boom")
	p.On("Reply", mock.Anything, mock.Anything, "m1").Return(nil, boom)

	_, err := router.Reply(context.Background(), llm.Request{})
	assert.ErrorIs(t, err, boom)
}

func TestRouter_GetProvider(t *testing.T) {
	router := llm.NewRouter("missing", "")
	router.RegisterProvider(&MockProvider{name: "unconfigured"})
	router.RegisterProvider(&MockProvider{name: "ready", configured: true})

	_, err := router.GetProvider("")
	assert.Error(t, err)

	_, err = router.GetProvider("unconfigured")
	assert.Error(t, err)

	p, err := router.GetProvider("ready")
	require.NoError(t, err)
	assert.Equal(t, "ready", p.Name())

	assert.Equal(t, []string{"ready"}, router.ListProviders())

	infos := router.GetProvidersInfo()
	require.Len(t, infos, 2)
	assert.Equal(t, "ready", infos[0].Name)
	assert.True(t, infos[0].Configured)
	assert.False(t, infos[1].Configured)
}
