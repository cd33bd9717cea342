package merchant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a merchant id has no stored config.
var ErrNotFound = errors.New("merchant not found")

// Store is the merchant config catalog consumed by the CLI and the API
// server. The engine itself never touches storage; it receives a resolved
// *Config.
type Store interface {
	Create(ctx context.Context, cfg *Config) (*Config, error)
	Get(ctx context.Context, id string) (*Config, error)
	List(ctx context.Context) ([]*Config, error)
	Update(ctx context.Context, cfg *Config) (*Config, error)
	Delete(ctx context.Context, id string) error
}

type SQLiteStore struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the SQLite-backed merchant catalog at
// path. The parent directory is created on demand.
func OpenStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("merchant db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create merchant db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open merchant db: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS merchants (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	config TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("init merchant schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, errors.New("merchant config is required")
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, errors.New("merchant name is required")
	}

	stored := *cfg
	if strings.TrimSpace(stored.ID) == "" {
		stored.ID = "mch_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	raw, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("encode merchant config: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO merchants (id, name, config, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`, stored.ID, stored.Name, string(raw), now, now); err != nil {
		return nil, fmt.Errorf("insert merchant: %w", err)
	}
	return &stored, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Config, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("merchant id is required")
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT config FROM merchants WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query merchant %s: %w", id, err)
	}
	return decodeStored(raw)
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Config, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT config FROM merchants ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var configs []*Config
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		cfg, err := decodeStored(raw)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, cfg *Config) (*Config, error) {
	if cfg == nil || strings.TrimSpace(cfg.ID) == "" {
		return nil, errors.New("merchant id is required")
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode merchant config: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	result, err := s.db.ExecContext(ctx, `
UPDATE merchants SET name = ?, config = ?, updated_at = ? WHERE id = ?`,
		cfg.Name, string(raw), now, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("update merchant %s: %w", cfg.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update merchant %s: %w", cfg.ID, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return cfg, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("merchant id is required")
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM merchants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete merchant %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete merchant %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeStored(raw string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("decode stored merchant config: %w", err)
	}
	return &cfg, nil
}
