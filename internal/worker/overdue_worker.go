package worker

import (
	"context"
	"time"

	"taskList/internal/logger"
	"taskList/internal/models/task"

	"go.uber.org/zap"
)

type OverdueSource interface {
	OverdueTasks(now time.Time) []task.Task
}

// OverdueWorker периодически ищет просроченные задачи и сообщает о каждой
// один раз, в момент первого обнаружения. Данные он не меняет.
type OverdueWorker struct {
	source   OverdueSource
	interval time.Duration
	now      func() time.Time
	notified map[int64]struct{}
	notify   func(task.Task)
}

func NewOverdueWorker(source OverdueSource, interval *time.Duration) *OverdueWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = time.Minute
	} else {
		intervalToSet = *interval
	}

	return &OverdueWorker{
		source:   source,
		interval: intervalToSet,
		now:      time.Now,
		notified: make(map[int64]struct{}),
		notify:   logOverdue,
	}
}

// OnOverdue заменяет действие для новой просроченной задачи
func (w *OverdueWorker) OnOverdue(fn func(task.Task)) {
	w.notify = fn
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check возвращает число задач, впервые замеченных просроченными
func (w *OverdueWorker) Check(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	start := time.Now()

	overdue := w.source.OverdueTasks(w.now())

	current := make(map[int64]struct{}, len(overdue))
	fresh := 0
	for _, t := range overdue {
		current[t.ID] = struct{}{}
		if _, seen := w.notified[t.ID]; seen {
			continue
		}
		w.notify(t)
		fresh++
	}
	// выполненные и удалённые задачи забываем
	w.notified = current

	logger.Debug("Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("overdue", len(overdue)),
		zap.Int("new", fresh))
	return fresh
}

func logOverdue(t task.Task) {
	logger.Warn("Worker: Задача просрочена",
		zap.Int64("task_id", t.ID),
		zap.String("description", t.Description),
		zap.Time("deadline", t.Deadline),
		zap.String("priority", string(t.Priority)))
}
