package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

type Storage struct {
	db *sql.DB
}

// New открывает файл базы (":memory:" для временной) и создаёт таблицу kv
func New(ctx context.Context, dbPath string) (*Storage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("создание каталога базы: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		logger.Error("Repository: Не удалось открыть SQLite", err)
		return nil, fmt.Errorf("открытие базы: %w", err)
	}
	// одно соединение: для :memory: каждое новое соединение - новая пустая база
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		logger.Error("Repository: Не удалось применить схему", err)
		return nil, fmt.Errorf("создание таблицы kv: %w", err)
	}

	logger.Info("Repository: Успешное подключение к SQLite", zap.String("path", dbPath))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие SQLite")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("чтение %s: %w", key, err)
	}
	return []byte(value), nil
}

// SetBatch пишет все ключи в одной транзакции
func (s *Storage) SetBatch(ctx context.Context, items map[string][]byte) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range items {
		if _, err := tx.ExecContext(ctx, query, key, string(value), now); err != nil {
			logger.Error("Repository: Не удалось записать ключ", err, zap.String("key", key))
			return fmt.Errorf("запись %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
