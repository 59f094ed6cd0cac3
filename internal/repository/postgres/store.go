package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Options struct {
	URL            string
	MaxConnections int32
	MinConnections int32
	IdleTimeout    time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, opts Options) (*Storage, error) {
	config, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if opts.MaxConnections > 0 {
		config.MaxConns = opts.MaxConnections
	}
	if opts.MinConnections > 0 {
		config.MinConns = opts.MinConnections
	}
	if opts.IdleTimeout > 0 {
		config.MaxConnIdleTime = opts.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

// Migrate применяет встроенные миграции; url должен быть в форме postgres://
func Migrate(connString string) error {
	dbURL, err := url.Parse(connString)
	if err != nil {
		return fmt.Errorf("разбор адреса базы: %w", err)
	}
	dbURL.Scheme = "pgx5"

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL.String())
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()

	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать ключ", err,
			zap.String("key", key),
			zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("чтение %s: %w", key, err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return value, nil
}

// SetBatch заменяет значения всех ключей в одной транзакции
func (s *Storage) SetBatch(ctx context.Context, items map[string][]byte) error {
	start := time.Now()

	query := `INSERT INTO kv (key, value, updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value,
					updated_at = NOW()`

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for key, value := range items {
			batch.Queue(query, key, json.RawMessage(value))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		logger.Error("Repository: Не удалось записать ключи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись ключей: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
