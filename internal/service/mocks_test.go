package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/llm"
)

// MockAttachmentStore mocks the AttachmentStore interface
type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) Save(ctx context.Context, name, mimeType string, r io.Reader) (*domain.FileAttachment, error) {
	args := m.Called(ctx, name, mimeType, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileAttachment), args.Error(1)
}

func (m *MockAttachmentStore) Get(ctx context.Context, id string) (*domain.FileAttachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileAttachment), args.Error(1)
}

func (m *MockAttachmentStore) Open(ctx context.Context, att domain.FileAttachment) (io.ReadCloser, error) {
	args := m.Called(ctx, att)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockAttachmentStore) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func echoReply(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{Reply: domain.English.EchoFor(req.Message, req.Attachment)}, nil
}
