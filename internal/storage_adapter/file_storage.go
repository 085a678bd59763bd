package storage_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/isomap/internal/storage"
	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
)

const (
	mapFileExt  = ".isomap"
	metaFileExt = ".meta.json"
)

// FileMapStore хранит снимки в файловой системе: <имя>.isomap со снимком
// и <имя>.meta.json со сведениями о слоте.
type FileMapStore struct {
	basePath string
	codec    *storage.Codec
	mu       sync.RWMutex
}

// NewFileMapStore создаёт файловое хранилище
func NewFileMapStore(basePath string, codec *storage.Codec) (*FileMapStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", basePath, err)
	}
	return &FileMapStore{basePath: basePath, codec: codec}, nil
}

func (s *FileMapStore) mapFilename(name string) string {
	return filepath.Join(s.basePath, name+mapFileExt)
}

func (s *FileMapStore) metaFilename(name string) string {
	return filepath.Join(s.basePath, name+metaFileExt)
}

// Save записывает снимок через временный файл, так что оборванная запись
// не портит существующий слот.
func (s *FileMapStore) Save(ctx context.Context, name string, snap *world.Snapshot) error {
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
	meta, err := json.Marshal(si.NewSlotInfo(name, snap, len(data)))
	if err != nil {
		return fmt.Errorf("ошибка сериализации сведений о слоте: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.mapFilename(name), data); err != nil {
		return err
	}
	return writeFileAtomic(s.metaFilename(name), meta)
}

// Load читает снимок из файла
func (s *FileMapStore) Load(ctx context.Context, name string) (*world.Snapshot, error) {
	if err := si.ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.mapFilename(name))
	s.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла карты %s: %w", name, err)
	}
	return s.codec.Decode(data)
}

// List читает сведения о слотах. Слот без файла сведений описывается по
// самому снимку.
func (s *FileMapStore) List(ctx context.Context) ([]si.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", s.basePath, err)
	}

	var result []si.SlotInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), mapFileExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), mapFileExt)
		info, err := s.slotInfo(name, e)
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *FileMapStore) slotInfo(name string, e fs.DirEntry) (si.SlotInfo, error) {
	var info si.SlotInfo
	raw, err := os.ReadFile(s.metaFilename(name))
	if err == nil {
		if err := json.Unmarshal(raw, &info); err != nil {
			return info, fmt.Errorf("повреждены сведения о слоте %s: %w", name, err)
		}
		return info, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return info, err
	}

	data, err := os.ReadFile(s.mapFilename(name))
	if err != nil {
		return info, err
	}
	snap, err := s.codec.Decode(data)
	if err != nil {
		return info, fmt.Errorf("слот %s: %w", name, err)
	}
	info = si.NewSlotInfo(name, snap, len(data))
	if fi, err := e.Info(); err == nil {
		info.SavedAt = fi.ModTime().UTC()
	}
	return info, nil
}

// Delete удаляет файлы слота
func (s *FileMapStore) Delete(ctx context.Context, name string) error {
	if err := si.ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.mapFilename(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", name, err)
	}
	if err := os.Remove(s.metaFilename(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления сведений о слоте %s: %w", name, err)
	}
	return nil
}

// Close ничего не держит открытым
func (s *FileMapStore) Close() error {
	return nil
}

// writeFileAtomic пишет во временный файл рядом с целевым и переименовывает его
func writeFileAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл в %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла %s: %w", filename, err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка переименования %s: %w", tmpName, err)
	}
	return nil
}
