package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/domain"
)

const slotPrefix = "slot:"

// SlotRepository stores each slot as a plain Redis string without expiry
type SlotRepository struct {
	client *Client
	owned  bool
}

// NewSlotRepository creates a slot repository on a client owned by the caller
func NewSlotRepository(client *Client) *SlotRepository {
	return &SlotRepository{client: client}
}

// OpenSlotRepository connects a dedicated client that Close releases
func OpenSlotRepository(ctx context.Context, cfg config.RedisConfig) (*SlotRepository, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &SlotRepository{client: client, owned: true}, nil
}

// Client returns the underlying client so other components can share it
func (r *SlotRepository) Client() *Client {
	return r.client
}

func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.rdb.Get(ctx, slotPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	return data, nil
}

func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.rdb.Set(ctx, slotPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

func (r *SlotRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// Close releases the client when the repository opened it
func (r *SlotRepository) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
