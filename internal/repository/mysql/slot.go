package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Rrens/chat-widget/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_slots (
	slot_key   VARCHAR(191) NOT NULL PRIMARY KEY,
	value      LONGBLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// SlotRepository stores slots in a MySQL table
type SlotRepository struct {
	db *sql.DB
}

// NewSlotRepository connects with dsn and creates the table when missing
func NewSlotRepository(ctx context.Context, dsn string) (*SlotRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SlotRepository{db: db}, nil
}

func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv_slots WHERE slot_key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	return data, nil
}

func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO kv_slots (slot_key, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
		key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

func (r *SlotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SlotRepository) Close() error {
	return r.db.Close()
}
