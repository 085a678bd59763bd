package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains connection settings for the MongoDB map store.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. isomap
	Collection string // e.g. maps
}

// MongoStore implements MapStore on MongoDB. One document per slot,
// keyed by slot name.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	codec      *Codec
	ctxTimeout time.Duration
}

type mongoSlot struct {
	Name    string    `bson:"_id"`
	Columns int       `bson:"columns"`
	Rows    int       `bson:"rows"`
	Size    int       `bson:"size"`
	SavedAt time.Time `bson:"saved_at"`
	Data    []byte    `bson:"data,omitempty"`
}

// NewMongoStore establishes connection and returns the store.
func NewMongoStore(cfg MongoConfig, codec *Codec) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "isomap"
	}
	if cfg.Collection == "" {
		cfg.Collection = "maps"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MongoDB: %w", err)
	}
	// ping
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB не отвечает: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		codec:      codec,
		ctxTimeout: 5 * time.Second,
	}, nil
}

// Save upserts the slot document.
func (m *MongoStore) Save(ctx context.Context, name string, snap *world.Snapshot) error {
	if err := si.ValidateName(name); err != nil {
		return err
	}
	data, err := m.codec.Encode(snap)
	if err != nil {
		return err
	}
	info := si.NewSlotInfo(name, snap, len(data))

	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()
	doc := mongoSlot{
		Name:    name,
		Columns: info.Columns,
		Rows:    info.Rows,
		Size:    info.Bytes,
		SavedAt: info.SavedAt,
		Data:    data,
	}
	_, err = m.collection.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ошибка сохранения карты %s: %w", name, err)
	}
	return nil
}

// Load reads the snapshot of a slot.
func (m *MongoStore) Load(ctx context.Context, name string) (*world.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	var doc mongoSlot
	err := m.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки карты %s: %w", name, err)
	}
	return m.codec.Decode(doc.Data)
}

// List returns slot metadata sorted by name, without snapshot payloads.
func (m *MongoStore) List(ctx context.Context) ([]si.SlotInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка карт: %w", err)
	}

	var docs []mongoSlot
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]si.SlotInfo, 0, len(docs))
	for _, d := range docs {
		result = append(result, si.SlotInfo{
			Name:    d.Name,
			Columns: d.Columns,
			Rows:    d.Rows,
			Bytes:   d.Size,
			SavedAt: d.SavedAt.UTC(),
		})
	}
	return result, nil
}

// Delete removes the slot document.
func (m *MongoStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	return nil
}

// Close terminates connection.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
