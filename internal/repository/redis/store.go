package redis

import (
	"context"
	"errors"
	"fmt"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Storage хранит ключи как обычные строки Redis с префиксом, без TTL
type Storage struct {
	client *redis.Client
	prefix string
}

func New(ctx context.Context, opts Options) (*Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Error("Repository: Redis недоступен", err, zap.String("addr", opts.Addr))
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное подключение к Redis", zap.String("addr", opts.Addr))
	return NewWithClient(client, opts.Prefix), nil
}

func NewWithClient(client *redis.Client, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие соединения Redis")
	return s.client.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("чтение %s: %w", key, err)
	}
	return data, nil
}

// SetBatch пишет все ключи одной командой MSET
func (s *Storage) SetBatch(ctx context.Context, items map[string][]byte) error {
	pairs := make([]any, 0, len(items)*2)
	for key, value := range items {
		pairs = append(pairs, s.prefix+key, value)
	}
	if err := s.client.MSet(ctx, pairs...).Err(); err != nil {
		logger.Error("Repository: Не удалось записать ключи", err)
		return fmt.Errorf("запись ключей: %w", err)
	}
	return nil
}
