package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
)

// MemoryStore реализует MapStore в памяти.
// Используется в тестах и для локальной работы без диска.
// ВНИМАНИЕ: данные теряются при завершении процесса!
type MemoryStore struct {
	mu    sync.RWMutex
	codec *Codec
	data  map[string][]byte
	meta  map[string]si.SlotInfo
}

// NewMemoryStore создаёт хранилище в памяти. Снимки хранятся в
// закодированном виде, как и во внешних хранилищах.
func NewMemoryStore(codec *Codec) *MemoryStore {
	return &MemoryStore{
		codec: codec,
		data:  make(map[string][]byte),
		meta:  make(map[string]si.SlotInfo),
	}
}

// Save сохраняет снимок в памяти
func (s *MemoryStore) Save(ctx context.Context, name string, snap *world.Snapshot) error {
	if err := si.ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.codec.Encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = data
	s.meta[name] = si.NewSlotInfo(name, snap, len(data))
	return nil
}

// Load читает снимок из памяти
func (s *MemoryStore) Load(ctx context.Context, name string) (*world.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.data[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	return s.codec.Decode(data)
}

// List возвращает слоты по имени
func (s *MemoryStore) List(ctx context.Context) ([]si.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]si.SlotInfo, 0, len(s.meta))
	for _, info := range s.meta {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Delete удаляет слот
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[name]; !ok {
		return fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	delete(s.data, name)
	delete(s.meta, name)
	return nil
}

// Close ничего не делает: памяти освобождать нечего
func (s *MemoryStore) Close() error {
	return nil
}
