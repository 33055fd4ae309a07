package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/store"
)

var (
	ErrEmptyMessage    = errors.New("message must have content or an attachment")
	ErrMessageTooLong  = errors.New("message is too long")
	ErrAttachmentInUse = errors.New("attachment is referenced by a sent message")
)

// AttachmentStore holds uploaded files referenced by messages
type AttachmentStore interface {
	Save(ctx context.Context, name, mimeType string, r io.Reader) (*domain.FileAttachment, error)
	Get(ctx context.Context, id string) (*domain.FileAttachment, error)
	Open(ctx context.Context, att domain.FileAttachment) (io.ReadCloser, error)
	Remove(ctx context.Context, id string) error
}

// SendMessageInput is a user message as submitted by the widget
type SendMessageInput struct {
	Content      string `json:"content"`
	AttachmentID string `json:"attachment_id,omitempty"`
}

// ChatOptions tunes ChatService behavior
type ChatOptions struct {
	AutoCreateOnEmpty bool
	MaxMessageLength  int
	Locale            domain.Locale
}

// ChatService is the UI-facing surface of the conversation store
type ChatService struct {
	store       *store.Store
	attachments AttachmentStore
	opts        ChatOptions
}

// NewChatService creates a new chat service
func NewChatService(st *store.Store, attachments AttachmentStore, opts ChatOptions) *ChatService {
	if opts.Locale.DefaultTitle == "" {
		opts.Locale = domain.English
	}
	return &ChatService{store: st, attachments: attachments, opts: opts}
}

// EnsureConversation creates a conversation when the store is empty and
// auto-creation is enabled. It returns the active conversation, if any.
func (s *ChatService) EnsureConversation(ctx context.Context) (*domain.Conversation, bool) {
	if s.opts.AutoCreateOnEmpty && s.store.IsEmpty() {
		conv := s.store.Create(ctx)
		log.Info().Str("conversation_id", conv.ID).Msg("Created conversation for empty store")
	}
	conv, ok := s.store.Active()
	if !ok {
		return nil, false
	}
	return &conv, true
}

// CreateConversation starts a new conversation and selects it
func (s *ChatService) CreateConversation(ctx context.Context) *domain.Conversation {
	conv := s.store.Create(ctx)
	return &conv
}

// DeleteConversation removes a conversation
func (s *ChatService) DeleteConversation(ctx context.Context, id string) error {
	if !s.store.Delete(ctx, id) {
		return domain.ErrConversationNotFound
	}
	s.EnsureConversation(ctx)
	return nil
}

// RenameConversation sets a new title. Blank titles are ignored.
func (s *ChatService) RenameConversation(ctx context.Context, id, title string) (*domain.Conversation, error) {
	if _, ok := s.store.Get(id); !ok {
		return nil, domain.ErrConversationNotFound
	}
	s.store.Rename(ctx, id, title)
	return s.Get(ctx, id)
}

// SetActive selects a conversation
func (s *ChatService) SetActive(ctx context.Context, id string) (*domain.Conversation, error) {
	if err := s.store.SetActive(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns every conversation, newest first
func (s *ChatService) List(ctx context.Context) []domain.Conversation {
	return s.store.Conversations()
}

// Get returns one conversation
func (s *ChatService) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	conv, ok := s.store.Get(id)
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return &conv, nil
}

// Active returns the selected conversation
func (s *ChatService) Active(ctx context.Context) (*domain.Conversation, error) {
	conv, ok := s.store.Active()
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return &conv, nil
}

// SendMessage appends a user message. The assistant reply follows
// asynchronously.
func (s *ChatService) SendMessage(ctx context.Context, conversationID string, input SendMessageInput) (*domain.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" && input.AttachmentID == "" {
		return nil, ErrEmptyMessage
	}
	if s.opts.MaxMessageLength > 0 && utf8.RuneCountInString(content) > s.opts.MaxMessageLength {
		return nil, fmt.Errorf("%w: limit is %d characters", ErrMessageTooLong, s.opts.MaxMessageLength)
	}

	if _, ok := s.store.Get(conversationID); !ok {
		return nil, domain.ErrConversationNotFound
	}

	var att *domain.FileAttachment
	if input.AttachmentID != "" {
		if s.attachments == nil {
			return nil, fmt.Errorf("attachments are not enabled")
		}
		found, err := s.attachments.Get(ctx, input.AttachmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get attachment: %w", err)
		}
		att = found
	}

	msg, ok := s.store.AppendMessage(ctx, conversationID, content, domain.MessageTypeUser, att)
	if !ok {
		// deleted between the lookup and the append
		return nil, domain.ErrConversationNotFound
	}
	return &msg, nil
}

// RemoveAttachment discards an uploaded file that no sent message references
func (s *ChatService) RemoveAttachment(ctx context.Context, id string) error {
	if s.attachments == nil {
		return fmt.Errorf("attachments are not enabled")
	}
	for _, conv := range s.store.Conversations() {
		for _, m := range conv.Messages {
			if m.Attachment != nil && m.Attachment.ID == id {
				return ErrAttachmentInUse
			}
		}
	}
	return s.attachments.Remove(ctx, id)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Export renders a conversation as plain text and returns it with a file
// name derived from the title
func (s *ChatService) Export(ctx context.Context, id string) (string, string, error) {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}

	l := s.opts.Locale
	blocks := make([]string, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		speaker := l.AssistantSpeaker
		if m.Type == domain.MessageTypeUser {
			speaker = l.UserSpeaker
		}
		text := fmt.Sprintf("%s (%s): %s", speaker, m.Timestamp.Local().Format("2006-01-02 15:04:05"), m.Content)
		if m.Attachment != nil {
			size := fmt.Sprintf("%.1f KB", float64(m.Attachment.SizeBytes)/1024)
			text += "\n" + fmt.Sprintf(l.AttachedFileLabel, m.Attachment.Name, size)
		}
		blocks = append(blocks, text)
	}

	filename := whitespaceRun.ReplaceAllString(conv.Title, "_") + ".txt"
	return filename, strings.Join(blocks, "\n\n"), nil
}
