package memory

import (
	"context"
	"sync"

	"github.com/Rrens/chat-widget/internal/domain"
)

// SlotRepository keeps slots in process memory
type SlotRepository struct {
	mu    sync.RWMutex
	slots map[string][]byte
	saves int
}

// NewSlotRepository creates an empty in-memory slot repository
func NewSlotRepository() *SlotRepository {
	return &SlotRepository{slots: make(map[string][]byte)}
}

func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.slots[key]
	if !ok {
		return nil, domain.ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots[key] = append([]byte(nil), data...)
	r.saves++
	return nil
}

// Saves returns how many writes the repository has received
func (r *SlotRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

func (r *SlotRepository) Ping(ctx context.Context) error { return nil }

func (r *SlotRepository) Close() error { return nil }
