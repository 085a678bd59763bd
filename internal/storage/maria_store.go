package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
	_ "github.com/go-sql-driver/mysql"
)

// MariaStore реализует MapStore для MariaDB/MySQL.
// Снимки лежат в таблице isomap_maps.
type MariaStore struct {
	db    *sql.DB
	codec *Codec
}

// NewMariaStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaStore(dsn string, codec *Codec) (*MariaStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	store := &MariaStore{db: db, codec: codec}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return store, nil
}

// createTable создаёт таблицу isomap_maps. Время хранится в наносекундах
// Unix, чтобы не зависеть от parseTime в DSN.
func (s *MariaStore) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS isomap_maps (
			name        VARCHAR(128) PRIMARY KEY,
			map_columns INT          NOT NULL,
			map_rows    INT          NOT NULL,
			size        INT          NOT NULL,
			data        LONGBLOB     NOT NULL,
			saved_at    BIGINT       NOT NULL
		) ENGINE=InnoDB
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("ошибка создания таблицы isomap_maps: %w", err)
	}
	return nil
}

// Save сохраняет снимок.
// Использует INSERT ... ON DUPLICATE KEY UPDATE для замены слота.
func (s *MariaStore) Save(ctx context.Context, name string, snap *world.Snapshot) error {
	if err := si.ValidateName(name); err != nil {
		return err
	}

	data, err := s.codec.Encode(snap)
	if err != nil {
		return err
	}
	info := si.NewSlotInfo(name, snap, len(data))

	query := `
		INSERT INTO isomap_maps (name, map_columns, map_rows, size, data, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			map_columns = VALUES(map_columns),
			map_rows = VALUES(map_rows),
			size = VALUES(size),
			data = VALUES(data),
			saved_at = VALUES(saved_at)
	`

	_, err = s.db.ExecContext(ctx, query, name, info.Columns, info.Rows, info.Bytes, data, info.SavedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("ошибка сохранения карты %s: %w", name, err)
	}
	return nil
}

// Load читает снимок
func (s *MariaStore) Load(ctx context.Context, name string) (*world.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM isomap_maps WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки карты %s: %w", name, err)
	}
	return s.codec.Decode(data)
}

// List возвращает сведения о слотах без самих снимков
func (s *MariaStore) List(ctx context.Context) ([]si.SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, map_columns, map_rows, size, saved_at FROM isomap_maps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка карт: %w", err)
	}
	defer rows.Close()

	var result []si.SlotInfo
	for rows.Next() {
		var info si.SlotInfo
		var savedAt int64
		if err := rows.Scan(&info.Name, &info.Columns, &info.Rows, &info.Bytes, &savedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		info.SavedAt = time.Unix(0, savedAt).UTC()
		result = append(result, info)
	}
	return result, rows.Err()
}

// Delete удаляет слот
func (s *MariaStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM isomap_maps WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения количества затронутых строк: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	return nil
}

// Close закрывает соединение с базой
func (s *MariaStore) Close() error {
	return s.db.Close()
}
