package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/domain"
)

type slotDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SlotRepository stores each slot as one document keyed by slot name
type SlotRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewSlotRepository connects to MongoDB and selects the slot collection
func NewSlotRepository(ctx context.Context, cfg config.MongoConfig) (*SlotRepository, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &SlotRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var doc slotDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	return doc.Value, nil
}

func (r *SlotRepository) Save(ctx context.Context, key string, data []byte) error {
	doc := slotDocument{Key: key, Value: data, UpdatedAt: time.Now()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}
	return nil
}

func (r *SlotRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *SlotRepository) Close() error {
	return r.client.Disconnect(context.Background())
}
