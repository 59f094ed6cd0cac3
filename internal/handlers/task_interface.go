package handlers

import (
	"context"
	"time"

	"taskList/internal/models/task"
	"taskList/internal/service"
)

type Service interface {
	HealthCheck(context.Context) error
	AddTask(context.Context, string, time.Time, task.Priority) (task.Task, error)
	CompleteTask(context.Context, int64) (bool, error)
	DeletePending(context.Context, int64) (bool, error)
	DeleteFromHistory(context.Context, int64) (bool, error)
	SetFilter(task.Filter)
	SetSort(task.SortMode)
	View() service.ViewState
	Snapshot(...service.ViewOption) service.Snapshot
}

var _ Service = (*service.TaskService)(nil)
