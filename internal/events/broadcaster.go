package events

import (
	"sync"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/rs/zerolog/log"
)

// Type identifies a store change
type Type string

const (
	ConversationCreated Type = "conversation.created"
	ConversationDeleted Type = "conversation.deleted"
	ConversationRenamed Type = "conversation.renamed"
	MessageAppended     Type = "message.appended"
	ActiveChanged       Type = "active.changed"
)

// Event describes a single change of the conversation store
type Event struct {
	Type           Type                 `json:"type"`
	ConversationID string               `json:"conversation_id,omitempty"`
	Conversation   *domain.Conversation `json:"conversation,omitempty"`
	Message        *domain.Message      `json:"message,omitempty"`
}

// Publisher receives store events
type Publisher interface {
	Publish(event Event)
}

// subscriberBuffer bounds each subscriber queue; slow subscribers lose events
const subscriberBuffer = 64

// Broadcaster fans events out to every connected subscriber
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber queue
func (b *Broadcaster) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber queue
func (b *Broadcaster) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		if ch == sub {
			delete(b.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Publish delivers an event to all subscribers without blocking
func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			log.Warn().Str("event", string(event.Type)).Msg("dropping event for slow subscriber")
		}
	}
}

// Subscribers returns the number of connected subscribers
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
