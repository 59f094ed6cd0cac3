package app

import (
	"context"
	"fmt"

	"taskList/internal/config"
	"taskList/internal/logger"
	"taskList/internal/repository/inmemory"
	"taskList/internal/repository/jsonfile"
	"taskList/internal/repository/postgres"
	"taskList/internal/repository/redis"
	"taskList/internal/repository/sqlite"
	"taskList/internal/service"

	"go.uber.org/zap"
)

// Store - хранилище, которое нужно закрыть при остановке
type Store interface {
	service.Storage
	Close() error
}

var (
	_ Store = (*inmemory.Storage)(nil)
	_ Store = (*jsonfile.Storage)(nil)
	_ Store = (*sqlite.Storage)(nil)
	_ Store = (*postgres.Storage)(nil)
	_ Store = (*redis.Storage)(nil)
)

func OpenStorage(ctx context.Context, cfg config.RepositoryConfig) (Store, error) {
	logger.Info("App: Открытие хранилища", zap.String("type", cfg.Type))

	switch cfg.Type {
	case config.RepositoryInMemory:
		return inmemory.NewStorage(), nil
	case config.RepositoryJSONFile:
		return jsonfile.New(cfg.JSONFile.Dir)
	case config.RepositorySQLite:
		return sqlite.New(ctx, cfg.SQLite.Path)
	case config.RepositoryPostgres:
		if err := postgres.Migrate(cfg.Postgres.URL); err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}
		return postgres.New(ctx, postgres.Options{
			URL:            cfg.Postgres.URL,
			MaxConnections: cfg.Postgres.MaxConnections,
			MinConnections: cfg.Postgres.MinConnections,
			IdleTimeout:    cfg.Postgres.IdleTimeout,
		})
	case config.RepositoryRedis:
		return redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Type)
	}
}

// OpenService открывает хранилище и загружает в сервис сохранённые задачи.
// Возвращаемая функция закрывает хранилище.
func OpenService(ctx context.Context, cfg *config.Config) (*service.TaskService, func(), error) {
	store, err := OpenStorage(ctx, cfg.Repository)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Error("App: Ошибка закрытия хранилища", err)
		}
	}

	view, err := viewState(cfg.View)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	svc := service.NewTaskService(store, service.WithView(view))
	if err := svc.Load(ctx); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("загрузка задач: %w", err)
	}
	return svc, closeStore, nil
}
