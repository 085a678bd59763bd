package storage_adapter

import (
	"fmt"

	"github.com/annel0/isomap/internal/config"
	"github.com/annel0/isomap/internal/logging"
	"github.com/annel0/isomap/internal/storage"
	si "github.com/annel0/isomap/internal/storage_interface"
)

// codecStore закрывает кодек вместе с хранилищем
type codecStore struct {
	si.MapStore
	codec *storage.Codec
}

func (s *codecStore) Close() error {
	err := s.MapStore.Close()
	s.codec.Close()
	return err
}

// NewMapStore создаёт хранилище снимков по настройкам
func NewMapStore(cfg config.StorageConfig) (si.MapStore, error) {
	codec, err := storage.NewCodec(cfg.Compression)
	if err != nil {
		return nil, err
	}

	var store si.MapStore
	switch cfg.Backend {
	case "memory":
		store = storage.NewMemoryStore(codec)
	case "", "file":
		store, err = NewFileMapStore(cfg.Path, codec)
	case "badger":
		store, err = storage.NewBadgerStore(cfg.Path, codec)
	case "redis":
		store, err = storage.NewRedisStore(&storage.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			Timeout:   cfg.Redis.Timeout,
		}, codec)
	case "mysql":
		store, err = storage.NewMariaStore(cfg.MySQL.DSN, codec)
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.Postgres.DSN, codec)
	case "mongo":
		store, err = storage.NewMongoStore(storage.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		}, codec)
	default:
		err = fmt.Errorf("неизвестное хранилище %q", cfg.Backend)
	}
	if err != nil {
		codec.Close()
		return nil, err
	}

	logging.GetStorageLogger().Debug("Хранилище карт: %s (сжатие: %v)", cfg.Backend, cfg.Compression)
	return &codecStore{MapStore: store, codec: codec}, nil
}
