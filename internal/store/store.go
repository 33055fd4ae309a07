package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/events"
	"github.com/Rrens/chat-widget/internal/llm"
)

// Store owns the conversation list and the active conversation pointer.
// Every mutation is serialized by mu and followed by a full write of the
// list to the slot repository.
type Store struct {
	mu            sync.Mutex
	conversations []domain.Conversation // newest first
	activeID      string

	slot         domain.SlotRepository
	key          string
	replier      Replier
	delay        time.Duration
	locale       domain.Locale
	greeting     bool
	historyLimit int
	publisher    events.Publisher
	now          func() time.Time

	// scheduled replies
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a store backed by slot and rehydrates it from the slot
func New(ctx context.Context, slot domain.SlotRepository, opts ...Option) *Store {
	s := &Store{
		slot:         slot,
		key:          domain.ConversationsKey,
		delay:        time.Second,
		locale:       domain.English,
		historyLimit: 20,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.load(ctx)
	return s
}

// load restores the persisted list. Missing or unreadable data leaves the
// store empty.
func (s *Store) load(ctx context.Context) {
	data, err := s.slot.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrSlotEmpty) {
			log.Warn().Err(err).Str("key", s.key).Msg("Failed to load conversations, starting empty")
		}
		return
	}

	var conversations []domain.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("Stored conversations are corrupt, starting empty")
		return
	}

	seen := make(map[string]bool, len(conversations))
	restored := conversations[:0]
	for _, c := range conversations {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if c.Messages == nil {
			c.Messages = []domain.Message{}
		}
		restored = append(restored, c)
	}

	s.conversations = restored
	if len(restored) > 0 {
		s.activeID = restored[0].ID
	}

	log.Info().Int("conversations", len(restored)).Msg("Conversations restored")
}

// Create inserts a new conversation at the head and makes it active
func (s *Store) Create(ctx context.Context) domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := domain.Conversation{
		ID:          uuid.New().String(),
		Title:       s.locale.DefaultTitle,
		Messages:    []domain.Message{},
		LastMessage: s.locale.StartingChat,
		Timestamp:   now,
	}
	if s.greeting {
		conv.Messages = append(conv.Messages, domain.Message{
			ID:        uuid.New().String(),
			Content:   s.locale.Greeting,
			Type:      domain.MessageTypeAssistant,
			Timestamp: now,
		})
		conv.LastMessage = s.locale.Greeting
	}

	s.conversations = append([]domain.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID

	s.persist(ctx)
	out := conv.Clone()
	s.publish(events.Event{Type: events.ConversationCreated, ConversationID: conv.ID, Conversation: &out})

	return conv.Clone()
}

// Delete removes a conversation. It reports false when id is unknown.
// Deleting the active conversation selects the new head, if any. The store
// never creates a replacement on its own; callers check IsEmpty.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	activeChanged := false
	if s.activeID == id {
		s.activeID = ""
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		}
		activeChanged = true
	}

	s.persist(ctx)
	s.publish(events.Event{Type: events.ConversationDeleted, ConversationID: id})
	if activeChanged {
		s.publish(events.Event{Type: events.ActiveChanged, ConversationID: s.activeID})
	}

	return true
}

// Rename sets the title of a conversation. Blank titles and unknown ids are
// ignored and reported as false.
func (s *Store) Rename(ctx context.Context, id, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}

	conv := &s.conversations[idx]
	conv.Title = title
	conv.Renamed = true

	s.persist(ctx)
	out := conv.Clone()
	s.publish(events.Event{Type: events.ConversationRenamed, ConversationID: id, Conversation: &out})

	return true
}

// AppendMessage adds a message to a conversation and reports false when id is
// unknown or msgType is not user or assistant. A user message derives the title when it is the first one and
// schedules an assistant reply when a replier is configured.
func (s *Store) AppendMessage(ctx context.Context, id, content string, msgType domain.MessageType, attachment *domain.FileAttachment) (domain.Message, bool) {
	if !msgType.Valid() {
		return domain.Message{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Message{}, false
	}

	now := s.now()
	msg := domain.Message{
		ID:        uuid.New().String(),
		Content:   content,
		Type:      msgType,
		Timestamp: now,
	}
	if attachment != nil {
		att := *attachment
		msg.Attachment = &att
	}

	conv := &s.conversations[idx]
	history := s.history(conv)

	conv.Messages = append(conv.Messages, msg)
	conv.LastMessage = domain.LastMessagePreview(content, attachment, s.locale)
	conv.Timestamp = now

	if msgType == domain.MessageTypeUser && !conv.Renamed && conv.UserMessageCount() == 1 {
		conv.Title = domain.ExtractTitle(content, s.locale.DefaultTitle)
	}

	s.persist(ctx)
	out := msg
	if out.Attachment != nil {
		att := *out.Attachment
		out.Attachment = &att
	}
	s.publish(events.Event{Type: events.MessageAppended, ConversationID: id, Message: &out})

	if msgType == domain.MessageTypeUser && s.replier != nil && !s.closed {
		s.schedule(replyTask{
			conversationID: id,
			request: llm.Request{
				ConversationID: id,
				Message:        content,
				Attachment:     msg.Attachment,
				History:        history,
			},
		})
	}

	return out, true
}

// SetActive selects a conversation. Unknown ids return
// domain.ErrConversationNotFound and leave the selection unchanged.
func (s *Store) SetActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return domain.ErrConversationNotFound
	}
	if s.activeID == id {
		return nil
	}

	s.activeID = id
	s.publish(events.Event{Type: events.ActiveChanged, ConversationID: id})
	return nil
}

// Conversations returns a copy of the list, newest first
func (s *Store) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Get returns a copy of one conversation
func (s *Store) Get(id string) (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// ActiveID returns the selected conversation id
func (s *Store) ActiveID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeID != ""
}

// Active returns a copy of the selected conversation
func (s *Store) Active() (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return domain.Conversation{}, false
	}
	idx := s.indexOf(s.activeID)
	if idx < 0 {
		return domain.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// IsEmpty reports whether the store holds no conversations
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations) == 0
}

// Len returns the number of conversations
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// history returns the most recent messages of conv as replier turns
func (s *Store) history(conv *domain.Conversation) []llm.Turn {
	msgs := conv.Messages
	if s.historyLimit >= 0 && len(msgs) > s.historyLimit {
		msgs = msgs[len(msgs)-s.historyLimit:]
	}
	turns := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		content := m.Content
		if content == "" && m.Attachment != nil {
			content = s.locale.AttachmentPreview(m.Attachment.Name)
		}
		turns = append(turns, llm.Turn{Role: m.Type, Content: content})
	}
	return turns
}

// persist writes the whole list to the slot. Must be called with mu held.
// Failures are logged and otherwise ignored.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.conversations)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode conversations")
		return
	}
	if err := s.slot.Save(context.WithoutCancel(ctx), s.key, data); err != nil {
		log.Error().Err(err).Str("key", s.key).Msg("Failed to persist conversations")
	}
}

func (s *Store) publish(event events.Event) {
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}
