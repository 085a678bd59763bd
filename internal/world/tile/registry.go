package tile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry хранит описания тайлов по идентификатору.
// Реестр заполняется при старте и дальше только читается.
type Registry struct {
	tiles map[ID]*Descriptor
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{tiles: make(map[ID]*Descriptor)}
}

// Register добавляет описание тайла в реестр, заменяя существующее
func (r *Registry) Register(desc Descriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("пустой идентификатор тайла")
	}
	desc.normalize()
	d := desc
	r.tiles[desc.ID] = &d
	return nil
}

// Get возвращает описание тайла по ID
func (r *Registry) Get(id ID) (*Descriptor, bool) {
	desc, exists := r.tiles[id]
	return desc, exists
}

// Has проверяет, зарегистрирован ли тайл
func (r *Registry) Has(id ID) bool {
	_, exists := r.tiles[id]
	return exists
}

// Len возвращает количество зарегистрированных тайлов
func (r *Registry) Len() int {
	return len(r.tiles)
}

// IDs возвращает отсортированный список идентификаторов
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.tiles))
	for id := range r.tiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LoadFile читает JSON-файл с массивом описаний тайлов
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла тайлов %s: %w", path, err)
	}

	var descs []Descriptor
	if err := json.Unmarshal(data, &descs); err != nil {
		return fmt.Errorf("ошибка разбора файла тайлов %s: %w", path, err)
	}

	for _, desc := range descs {
		if err := r.Register(desc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// LoadDir загружает все *.json файлы каталога в алфавитном порядке
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("ошибка чтения каталога тайлов %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
