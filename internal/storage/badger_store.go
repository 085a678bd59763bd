package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
	"github.com/dgraph-io/badger/v3"
)

const (
	badgerMapPrefix  = "map:"
	badgerMetaPrefix = "meta:"
)

// BadgerStore хранит снимки в BadgerDB. Снимок лежит под ключом
// map:<имя>, сведения о слоте под meta:<имя>.
type BadgerStore struct {
	db      *badger.DB
	dbPath  string
	codec   *Codec
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerStore открывает базу в каталоге dataPath/maps
func NewBadgerStore(dataPath string, codec *Codec) (*BadgerStore, error) {
	dbPath := filepath.Join(dataPath, "maps")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerStore{
		db:      db,
		dbPath:  dbPath,
		codec:   codec,
		isReady: true,
	}, nil
}

// Close закрывает базу
func (s *BadgerStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}

	s.isReady = false
	return s.db.Close()
}

func (s *BadgerStore) ready() error {
	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return nil
}

// Save записывает снимок и сведения о слоте в одной транзакции
func (s *BadgerStore) Save(ctx context.Context, name string, snap *world.Snapshot) error {
	if err := si.ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
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

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(badgerMapPrefix+name), data); err != nil {
			return err
		}
		return txn.Set([]byte(badgerMetaPrefix+name), meta)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Load читает снимок
func (s *BadgerStore) Load(ctx context.Context, name string) (*world.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerMapPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return s.codec.Decode(data)
}

// List перебирает ключи meta:. Badger хранит ключи упорядоченно, поэтому
// слоты возвращаются по имени.
func (s *BadgerStore) List(ctx context.Context) ([]si.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	var result []si.SlotInfo
	prefix := []byte(badgerMetaPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var info si.SlotInfo
				if err := json.Unmarshal(val, &info); err != nil {
					return fmt.Errorf("повреждены сведения о слоте %s: %w",
						strings.TrimPrefix(string(item.Key()), badgerMetaPrefix), err)
				}
				result = append(result, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete удаляет снимок и сведения о слоте
func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(badgerMapPrefix + name)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(badgerMapPrefix + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(badgerMetaPrefix + name))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}
