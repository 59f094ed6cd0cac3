package inmemory

import (
	"context"
	"sync"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"go.uber.org/zap"
)

// Storage держит значения в памяти процесса; данные живут до перезапуска.
type Storage struct {
	storage map[string][]byte
	mtx     *sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		storage: make(map[string][]byte),
		mtx:     &sync.RWMutex{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// SetBatch заменяет все переданные ключи под одной блокировкой
func (s *Storage) SetBatch(ctx context.Context, items map[string][]byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for key, value := range items {
		s.storage[key] = append([]byte(nil), value...)
	}
	logger.Debug("Repository: Запись в память", zap.Int("keys", len(items)))
	return nil
}

func (s *Storage) Close() error {
	return nil
}
