package service

import "context"

// Storage - долговременное хранилище ключ-значение.
// Get для отсутствующего ключа возвращает repository.ErrNotFound.
type Storage interface {
	HealthCheck(context.Context) error
	Get(context.Context, string) ([]byte, error)
	SetBatch(context.Context, map[string][]byte) error
}
