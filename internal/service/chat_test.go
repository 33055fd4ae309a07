package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/repository/memory"
	"github.com/Rrens/chat-widget/internal/store"
)

func newTestService(t *testing.T, attachments AttachmentStore, opts ChatOptions, storeOpts ...store.Option) (*ChatService, *store.Store) {
	t.Helper()
	st := store.New(context.Background(), memory.NewSlotRepository(), storeOpts...)
	t.Cleanup(st.Close)
	return NewChatService(st, attachments, opts), st
}

func TestChatService_EnsureConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("auto create", func(t *testing.T) {
		svc, st := newTestService(t, nil, ChatOptions{AutoCreateOnEmpty: true})

		conv, ok := svc.EnsureConversation(ctx)
		require.True(t, ok)
		assert.Equal(t, 1, st.Len())

		// idempotent while conversations exist
		again, ok := svc.EnsureConversation(ctx)
		require.True(t, ok)
		assert.Equal(t, conv.ID, again.ID)
		assert.Equal(t, 1, st.Len())
	})

	t.Run("caller decides", func(t *testing.T) {
		svc, st := newTestService(t, nil, ChatOptions{AutoCreateOnEmpty: false})

		_, ok := svc.EnsureConversation(ctx)
		assert.False(t, ok)
		assert.True(t, st.IsEmpty())
	})
}

func TestChatService_DeleteConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("recreates when empty", func(t *testing.T) {
		svc, st := newTestService(t, nil, ChatOptions{AutoCreateOnEmpty: true})
		conv := svc.CreateConversation(ctx)

		require.NoError(t, svc.DeleteConversation(ctx, conv.ID))
		assert.Equal(t, 1, st.Len())
		active, err := svc.Active(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, conv.ID, active.ID)
	})

	t.Run("leaves store empty", func(t *testing.T) {
		svc, st := newTestService(t, nil, ChatOptions{})
		conv := svc.CreateConversation(ctx)

		require.NoError(t, svc.DeleteConversation(ctx, conv.ID))
		assert.True(t, st.IsEmpty())
		_, err := svc.Active(ctx)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _ := newTestService(t, nil, ChatOptions{})
		assert.ErrorIs(t, svc.DeleteConversation(ctx, "missing"), domain.ErrConversationNotFound)
	})
}

func TestChatService_RenameAndSetActive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil, ChatOptions{})

	a := svc.CreateConversation(ctx)
	svc.CreateConversation(ctx)

	renamed, err := svc.RenameConversation(ctx, a.ID, "  Budget  ")
	require.NoError(t, err)
	assert.Equal(t, "Budget", renamed.Title)

	unchanged, err := svc.RenameConversation(ctx, a.ID, " ")
	require.NoError(t, err)
	assert.Equal(t, "Budget", unchanged.Title)

	_, err = svc.RenameConversation(ctx, "missing", "x")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	active, err := svc.SetActive(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active.ID)

	_, err = svc.SetActive(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)

	assert.Len(t, svc.List(ctx), 2)
}

func TestChatService_SendMessage(t *testing.T) {
	ctx := context.Background()
	att := &domain.FileAttachment{ID: "att-1", Name: "cv.docx", SizeBytes: 2048}

	mockAttachments := new(MockAttachmentStore)
	mockAttachments.On("Get", ctx, "att-1").Return(att, nil)
	mockAttachments.On("Get", ctx, "gone").Return(nil, errors.New("attachment not found"))

	svc, _ := newTestService(t, mockAttachments, ChatOptions{MaxMessageLength: 10})
	conv := svc.CreateConversation(ctx)

	t.Run("trims content", func(t *testing.T) {
		msg, err := svc.SendMessage(ctx, conv.ID, SendMessageInput{Content: "  hi  "})
		require.NoError(t, err)
		assert.Equal(t, "hi", msg.Content)
		assert.Equal(t, domain.MessageTypeUser, msg.Type)
	})

	t.Run("attachment only", func(t *testing.T) {
		msg, err := svc.SendMessage(ctx, conv.ID, SendMessageInput{AttachmentID: "att-1"})
		require.NoError(t, err)
		require.NotNil(t, msg.Attachment)
		assert.Equal(t, "cv.docx", msg.Attachment.Name)

		got, _ := svc.Get(ctx, conv.ID)
		assert.Equal(t, "File: cv.docx", got.LastMessage)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, conv.ID, SendMessageInput{Content: "   "})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, conv.ID, SendMessageInput{Content: strings.Repeat("é", 11)})
		assert.ErrorIs(t, err, ErrMessageTooLong)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, "missing", SendMessageInput{Content: "hi"})
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("unknown attachment", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, conv.ID, SendMessageInput{Content: "hi", AttachmentID: "gone"})
		assert.Error(t, err)
	})

	mockAttachments.AssertExpectations(t)
}

func TestChatService_RemoveAttachment(t *testing.T) {
	ctx := context.Background()
	sent := &domain.FileAttachment{ID: "att-sent", Name: "cv.docx"}

	mockAttachments := new(MockAttachmentStore)
	mockAttachments.On("Get", ctx, "att-sent").Return(sent, nil)
	mockAttachments.On("Remove", ctx, "att-pending").Return(nil)

	svc, _ := newTestService(t, mockAttachments, ChatOptions{})
	conv := svc.CreateConversation(ctx)
	_, err := svc.SendMessage(ctx, conv.ID, SendMessageInput{AttachmentID: "att-sent"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveAttachment(ctx, "att-sent"), ErrAttachmentInUse)
	require.NoError(t, svc.RemoveAttachment(ctx, "att-pending"))

	mockAttachments.AssertExpectations(t)
	mockAttachments.AssertNotCalled(t, "Remove", ctx, "att-sent")
}

func TestChatService_SendMessageSchedulesReply(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, nil, ChatOptions{},
		store.WithReplier(store.ReplierFunc(echoReply)),
		store.WithDelay(time.Millisecond),
	)
	conv := svc.CreateConversation(ctx)

	_, err := svc.SendMessage(ctx, conv.ID, SendMessageInput{Content: "Hi there"})
	require.NoError(t, err)
	st.Wait()

	got, err := svc.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Hi there", got.Title)
	assert.Equal(t, `Automatic reply to: "Hi there"`, got.Messages[1].Content)
}

func TestChatService_Export(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)

	svc, st := newTestService(t, nil, ChatOptions{Locale: domain.French},
		store.WithLocale(domain.French),
		store.WithClock(func() time.Time { return ts }),
	)
	conv := svc.CreateConversation(ctx)
	st.Rename(ctx, conv.ID, "Mon  projet\tfinal")
	st.AppendMessage(ctx, conv.ID, "Voici mon CV", domain.MessageTypeUser, &domain.FileAttachment{Name: "cv.docx", SizeBytes: 1536})
	st.AppendMessage(ctx, conv.ID, "Merci", domain.MessageTypeAssistant, nil)

	filename, text, err := svc.Export(ctx, conv.ID)
	require.NoError(t, err)

	assert.Equal(t, "Mon_projet_final.txt", filename)
	assert.Equal(t,
		"Vous (2024-03-09 14:05:00): Voici mon CV\n[Fichier joint: cv.docx - 1.5 KB]\n\nAssistant (2024-03-09 14:05:00): Merci",
		text,
	)

	_, _, err = svc.Export(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}
