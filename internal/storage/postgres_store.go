package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	si "github.com/annel0/isomap/internal/storage_interface"
	"github.com/annel0/isomap/internal/world"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore хранит снимки карт в PostgreSQL
type PostgresStore struct {
	db    *sql.DB
	codec *Codec
}

// NewPostgresStore подключается к базе по строке вида
// "host=localhost user=isomap password=isomap dbname=isomap sslmode=disable"
func NewPostgresStore(connectionString string, codec *Codec) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с PostgreSQL: %w", err)
	}

	store := &PostgresStore{db: db, codec: codec}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS isomap_maps (
		name        TEXT PRIMARY KEY,
		map_columns INTEGER NOT NULL,
		map_rows    INTEGER NOT NULL,
		size        INTEGER NOT NULL,
		data        BYTEA NOT NULL,
		saved_at    TIMESTAMP WITH TIME ZONE NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("ошибка создания таблицы isomap_maps: %w", err)
	}
	return nil
}

// Save заменяет слот через ON CONFLICT
func (s *PostgresStore) Save(ctx context.Context, name string, snap *world.Snapshot) error {
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
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (name)
	DO UPDATE SET
		map_columns = $2, map_rows = $3, size = $4, data = $5, saved_at = $6
	`
	if _, err := s.db.ExecContext(ctx, query, name, info.Columns, info.Rows, info.Bytes, data, info.SavedAt); err != nil {
		return fmt.Errorf("ошибка сохранения карты %s: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) (*world.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM isomap_maps WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки карты %s: %w", name, err)
	}
	return s.codec.Decode(data)
}

func (s *PostgresStore) List(ctx context.Context) ([]si.SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, map_columns, map_rows, size, saved_at FROM isomap_maps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка карт: %w", err)
	}
	defer rows.Close()

	var result []si.SlotInfo
	for rows.Next() {
		var info si.SlotInfo
		if err := rows.Scan(&info.Name, &info.Columns, &info.Rows, &info.Bytes, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		info.SavedAt = info.SavedAt.UTC()
		result = append(result, info)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM isomap_maps WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", name, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", si.ErrNotFound, name)
	}
	return nil
}

// Close закрывает соединение с базой
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
