package storage_interface

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/annel0/isomap/internal/world"
)

// ErrNotFound сохранение с таким именем отсутствует
var ErrNotFound = errors.New("сохранение не найдено")

// ErrInvalidName имя слота пустое или содержит недопустимые символы
var ErrInvalidName = errors.New("недопустимое имя сохранения")

// MapStore определяет интерфейс хранилища снимков карты.
// Снимки адресуются именем слота.
type MapStore interface {
	// Save записывает снимок, заменяя существующий слот
	Save(ctx context.Context, name string, snap *world.Snapshot) error

	// Load читает снимок; ErrNotFound, если слота нет
	Load(ctx context.Context, name string) (*world.Snapshot, error)

	// List возвращает слоты, упорядоченные по имени
	List(ctx context.Context) ([]SlotInfo, error)

	// Delete удаляет слот; ErrNotFound, если слота нет
	Delete(ctx context.Context, name string) error

	// Close закрывает хранилище
	Close() error
}

// SlotInfo сведения о сохранённом снимке
type SlotInfo struct {
	Name    string    `json:"name"`
	Columns int       `json:"columns"`
	Rows    int       `json:"rows"`
	Bytes   int       `json:"bytes"` // Размер закодированного снимка
	SavedAt time.Time `json:"saved_at"`
}

// NewSlotInfo заполняет сведения о слоте по снимку
func NewSlotInfo(name string, snap *world.Snapshot, size int) SlotInfo {
	return SlotInfo{
		Name:    name,
		Columns: snap.Columns,
		Rows:    snap.Rows,
		Bytes:   size,
		SavedAt: time.Now().UTC(),
	}
}

// ValidateName проверяет имя слота. Имя попадает в пути и ключи,
// поэтому разделители и пробелы запрещены.
func ValidateName(name string) error {
	if name == "" || len(name) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\: `) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
