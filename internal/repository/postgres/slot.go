package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Rrens/chat-widget/internal/domain"
)

// SlotRepository implements domain.SlotRepository on the kv_slots table
type SlotRepository struct {
	db *DB
}

// NewSlotRepository creates a new slot repository
func NewSlotRepository(db *DB) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_slots WHERE key = $1`

	var data []byte
	if err := r.db.Pool.QueryRow(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	return data, nil
}

func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO kv_slots (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

func (r *SlotRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *SlotRepository) Close() error {
	r.db.Close()
	return nil
}
