package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/domain"
	"github.com/Rrens/chat-widget/internal/repository/file"
	"github.com/Rrens/chat-widget/internal/repository/memory"
	"github.com/Rrens/chat-widget/internal/repository/mongo"
	"github.com/Rrens/chat-widget/internal/repository/mysql"
	"github.com/Rrens/chat-widget/internal/repository/postgres"
	"github.com/Rrens/chat-widget/internal/repository/redis"
	"github.com/Rrens/chat-widget/internal/repository/sqlite"
)

// SlotFactory opens a slot repository from the storage configuration
type SlotFactory func(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error)

// Registry maps storage driver names to slot factories
type Registry struct {
	factories map[string]SlotFactory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]SlotFactory)}
}

// DefaultRegistry returns a registry with every built-in driver
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("memory", openMemory)
	r.Register("file", openFile)
	r.Register("sqlite", openSQLite)
	r.Register("postgres", openPostgres)
	r.Register("mysql", openMySQL)
	r.Register("redis", openRedis)
	r.Register("mongo", openMongo)
	return r
}

// Register registers a factory for a driver name
func (r *Registry) Register(driver string, factory SlotFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[driver] = factory
}

// Drivers returns the registered driver names
func (r *Registry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drivers := make([]string, 0, len(r.factories))
	for driver := range r.factories {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	return drivers
}

// Open creates the slot repository selected by cfg.Driver
func (r *Registry) Open(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Driver]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}

	slot, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Driver, err)
	}

	log.Info().Str("driver", cfg.Driver).Msg("Storage opened")
	return slot, nil
}

func openMemory(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	return memory.NewSlotRepository(), nil
}

func openFile(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	return file.NewSlotRepository(cfg.File.Dir)
}

func openSQLite(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	return sqlite.NewSlotRepository(ctx, cfg.SQLite.Path)
}

func openPostgres(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	if cfg.Postgres.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.Postgres.DSN(), cfg.Postgres.MigrationsPath); err != nil {
			return nil, err
		}
	}
	db, err := postgres.NewDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	return postgres.NewSlotRepository(db), nil
}

func openMySQL(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	return mysql.NewSlotRepository(ctx, cfg.MySQL.DSN())
}

func openRedis(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	return redis.OpenSlotRepository(ctx, cfg.Redis)
}

func openMongo(ctx context.Context, cfg config.StorageConfig) (domain.SlotRepository, error) {
	return mongo.NewSlotRepository(ctx, cfg.Mongo)
}
