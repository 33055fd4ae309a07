package store

import (
	"context"
	"time"

	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/events"
	"github.com/Rrens/chat-widget/internal/llm"
)

// Replier produces the assistant answer to a user message
type Replier interface {
	Reply(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// ReplierFunc adapts a function to the Replier interface
type ReplierFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f ReplierFunc) Reply(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

// Option configures a Store
type Option func(*Store)

// WithReplier enables scheduled assistant replies to user messages
func WithReplier(r Replier) Option {
	return func(s *Store) { s.replier = r }
}

// WithDelay sets how long a scheduled reply waits before it runs
func WithDelay(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

// WithLocale selects the user-visible fixed strings
func WithLocale(l domain.Locale) Option {
	return func(s *Store) { s.locale = l }
}

// WithPublisher receives an event for every state change
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithGreeting starts new conversations with an assistant greeting
func WithGreeting(enabled bool) Option {
	return func(s *Store) { s.greeting = enabled }
}

// WithHistoryLimit caps the prior messages passed to the replier
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.historyLimit = n }
}

// WithKey overrides the slot key the conversation list is stored under
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock replaces time.Now, used by tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}
