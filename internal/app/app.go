package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskList/internal/config"
	"taskList/internal/handlers"
	"taskList/internal/logger"
	"taskList/internal/middleware"
	"taskList/internal/models/task"
	"taskList/internal/service"
	"taskList/internal/view"
	"taskList/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	service   *service.TaskService
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	svc, closeStore, err := OpenService(ctx, a.config)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("инициализация сервиса: %w", err)
	}
	a.service = svc
	a.shutdowns = append(a.shutdowns, closeStore)

	if err := a.initRouter(); err != nil {
		a.Shutdown()
		return nil, err
	}

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "tasklist"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	if a.config.Worker.Enabled {
		interval := a.config.Worker.Interval
		a.worker = worker.NewOverdueWorker(svc, &interval)
	}

	return a, nil
}

func (a *App) initRouter() error {
	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("шаблоны страницы: %w", err)
	}
	location, err := a.config.Location()
	if err != nil {
		return err
	}

	page := handlers.NewPageHandler(a.service, renderer, view.NewFormatter(a.config.View.Locale, location))
	api := handlers.NewTaskHandler(a.service, location)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))

	page.Register(r)
	r.Get("/health", api.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		if len(a.config.Server.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: a.config.Server.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         300,
			}))
		}
		api.Register(r)
	})

	a.router = r
	return nil
}

// Handler - роутер без обёртки трассировки
func (a *App) Handler() http.Handler {
	return a.router
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			a.worker.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера...")

		timeout := a.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown освобождает ресурсы в обратном порядке
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func viewState(cfg config.ViewConfig) (service.ViewState, error) {
	filter, err := task.ParseFilter(cfg.Filter)
	if err != nil {
		return service.ViewState{}, err
	}
	mode, err := task.ParseSortMode(cfg.Sort)
	if err != nil {
		return service.ViewState{}, err
	}
	return service.ViewState{Filter: filter, Sort: mode}, nil
}
