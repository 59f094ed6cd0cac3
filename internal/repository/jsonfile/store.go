package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"taskList/internal/logger"
	repo "taskList/internal/repository"

	"go.uber.org/zap"
)

const fileName = "store.json"

// Storage хранит все ключи одним документом <dir>/store.json: {"tasks": [...], ...}.
// SetBatch переписывает документ целиком через временный файл и rename,
// поэтому читатель видит либо старые, либо новые значения всех ключей сразу.
type Storage struct {
	dir string
	mtx sync.RWMutex
}

func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
	}
	logger.Info("Repository: Файловое хранилище готово", zap.String("dir", dir))
	return &Storage{dir: dir}, nil
}

func (s *Storage) path() string {
	return filepath.Join(s.dir, fileName)
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("проверка каталога: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("проверка каталога: %s не является каталогом", s.dir)
	}
	return nil
}

// read: отсутствующий файл - пустой документ; повреждённый тоже, с предупреждением,
// и следующая запись его заменит
func (s *Storage) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("чтение %s: %w", fileName, err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("Repository: Повреждённый файл хранилища",
			zap.String("path", s.path()),
			zap.Error(err))
		return map[string]json.RawMessage{}, nil
	}
	return doc, nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return value, nil
}

// SetBatch принимает только JSON-значения: они встраиваются в документ как есть
func (s *Storage) SetBatch(ctx context.Context, items map[string][]byte) error {
	for key, value := range items {
		if !json.Valid(value) {
			return fmt.Errorf("значение %s не является JSON", key)
		}
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	for key, value := range items {
		doc[key] = json.RawMessage(value)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("сериализация %s: %w", fileName, err)
	}
	return s.replace(data)
}

func (s *Storage) replace(data []byte) error {
	tmp, err := os.CreateTemp(s.dir, fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("временный файл: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись %s: %w", fileName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("запись %s: %w", fileName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("запись %s: %w", fileName, err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return fmt.Errorf("замена %s: %w", fileName, err)
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
