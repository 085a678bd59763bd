package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/annel0/isomap/internal/logging"
	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
	"github.com/go-redis/redis/v8"
)

// RedisStore хранит снимки в Redis. Снимок лежит под <префикс>map:<имя>,
// сведения о слоте под <префикс>meta:<имя>, имена слотов в множестве
// <префикс>slots.
type RedisStore struct {
	client    *redis.Client
	codec     *Codec
	keyPrefix string
	timeout   time.Duration
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	Timeout   time.Duration // Таймаут одной операции
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "isomap:",
		Timeout:   5 * time.Second,
	}
}

// NewRedisStore подключается к Redis и проверяет соединение
func NewRedisStore(config *RedisConfig, codec *Codec) (*RedisStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	logging.GetStorageLogger().Info("Подключено к Redis %s", config.Addr)
	return &RedisStore{
		client:    client,
		codec:     codec,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}, nil
}

func (s *RedisStore) mapKey(name string) string  { return s.keyPrefix + "map:" + name }
func (s *RedisStore) metaKey(name string) string { return s.keyPrefix + "meta:" + name }
func (s *RedisStore) indexKey() string           { return s.keyPrefix + "slots" }

// Save записывает снимок, сведения и индекс в одной транзакции MULTI/EXEC
func (s *RedisStore) Save(ctx context.Context, name string, snap *world.Snapshot) error {
	if err := si.ValidateName(name); err != nil {
		return err
	}

	data, err := s.codec.Encode(snap)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(si.NewSlotInfo(name, snap, len(data)))
	if err != nil {
		return fmt.Errorf("ошибка сериализации сведений о слоте: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.mapKey(name), data, 0)
		pipe.Set(ctx, s.metaKey(name), meta, 0)
		pipe.SAdd(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в Redis: %w", err)
	}
	return nil
}

// Load читает снимок
func (s *RedisStore) Load(ctx context.Context, name string) (*world.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.mapKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}
	return s.codec.Decode(data)
}

// List читает индекс и сведения о слотах одним пайплайном
func (s *RedisStore) List(ctx context.Context) ([]si.SlotInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения индекса Redis: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.Get(ctx, s.metaKey(name))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("ошибка чтения сведений о слотах: %w", err)
	}

	result := make([]si.SlotInfo, 0, len(names))
	for i, cmd := range cmds {
		raw, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			// Индекс пережил удалённый вручную ключ
			continue
		}
		if err != nil {
			return nil, err
		}
		var info si.SlotInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, fmt.Errorf("повреждены сведения о слоте %s: %w", names[i], err)
		}
		result = append(result, info)
	}
	return result, nil
}

// Delete удаляет слот
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.mapKey(name))
		pipe.Del(ctx, s.metaKey(name))
		pipe.SRem(ctx, s.indexKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	return nil
}

// Close закрывает соединение
func (s *RedisStore) Close() error {
	return s.client.Close()
}
