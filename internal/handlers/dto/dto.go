package dto

import (
	"time"

	"taskList/internal/models/task"
	"taskList/internal/service"
)

type CreateTaskRequest struct {
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Priority    string `json:"priority"`
}

type ViewRequest struct {
	Filter string `json:"filter"`
	Sort   string `json:"sort"`
}

type ViewResponse struct {
	Filter string `json:"filter"`
	Sort   string `json:"sort"`
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	IsOverdue   bool       `json:"isOverdue"`
}

func FromTask(t task.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Deadline:    t.Deadline,
		Priority:    string(t.Priority),
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		IsOverdue:   t.IsOverdue(now),
	}
}

func FromTaskList(tasks []task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

func FromView(v service.ViewState) ViewResponse {
	return ViewResponse{
		Filter: string(v.Filter),
		Sort:   v.Sort.String(),
	}
}
