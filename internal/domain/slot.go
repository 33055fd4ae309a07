package domain

import (
	"context"
	"errors"
)

// ConversationsKey is the slot key holding the serialized conversation list
const ConversationsKey = "chatConversations"

// ErrSlotEmpty is returned by SlotRepository.Load when nothing is stored under the key
var ErrSlotEmpty = errors.New("slot is empty")

// SlotRepository is a durable key-value slot. Each key holds one opaque
// document that is overwritten as a whole on every save.
type SlotRepository interface {
	// Load returns the stored document or ErrSlotEmpty
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the document stored under key
	Save(ctx context.Context, key string, data []byte) error

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend
	Close() error
}
