package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"taskList/internal/handlers/dto"
	"taskList/internal/logger"
	"taskList/internal/models/task"
	"taskList/internal/service"

	"go.uber.org/zap"
)

// TaskHandler - JSON API над тем же сервисом, что и страница
type TaskHandler struct {
	TaskService Service
	location    *time.Location
}

// NewTaskHandler: location - пояс для дедлайнов без смещения, nil - time.Local
func NewTaskHandler(taskService Service, location *time.Location) TaskHandler {
	if location == nil {
		location = time.Local
	}
	return TaskHandler{
		TaskService: taskService,
		location:    location,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Проверка здоровья не пройдена", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// GetTasks - GET /api/tasks?filter=high&sort=priorityAsc
// Параметры запроса действуют только на этот ответ.
func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := task.Filter("")
	if raw := query.Get("filter"); raw != "" {
		parsed, err := task.ParseFilter(raw)
		if err != nil {
			logger.Warn("HTTP: Неверное значение параметра", zap.String("query", "filter"), zap.Error(err))
			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter = parsed
	}

	var mode task.SortMode
	if raw := query.Get("sort"); raw != "" {
		parsed, err := task.ParseSortMode(raw)
		if err != nil {
			logger.Warn("HTTP: Неверное значение параметра", zap.String("query", "sort"), zap.Error(err))
			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}

	snap := s.TaskService.Snapshot(service.WithFilter(filter), service.WithSort(mode))
	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(snap.Pending, snap.Now)),
		toPayload("view", dto.FromView(snap.View)),
	)
}

func (s *TaskHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	snap := s.TaskService.Snapshot()
	responseWithJSON(w, http.StatusOK, toPayload("history", dto.FromTaskList(snap.History, snap.Now)))
}

func (s *TaskHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.TaskService.Snapshot().Summary
	responseWithJSON(w, http.StatusOK,
		toPayload("completedCount", summary.Completed),
		toPayload("pendingCount", summary.Pending),
		toPayload("overdueCount", summary.Overdue),
	)
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	priority, err := task.ParsePriority(request.Priority)
	if err != nil {
		handleBusinessError(w, service.NewValidationError("priority", err.Error()))
		return
	}

	deadline, err := task.ParseDeadlineIn(request.Deadline, s.location)
	if err != nil {
		handleBusinessError(w, service.NewValidationError("deadline", err.Error()))
		return
	}

	created, err := s.TaskService.AddTask(r.Context(), request.Description, deadline, priority)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created, time.Now())))
}

func (s *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "complete_task", "completed", s.TaskService.CompleteTask)
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "delete_task", "deleted", s.TaskService.DeletePending)
}

func (s *TaskHandler) DeleteHistoryTask(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "delete_history_task", "deleted", s.TaskService.DeleteFromHistory)
}

// mutate отвечает 200 и флагом, было ли изменение; отсутствующий id - не ошибка
func (s *TaskHandler) mutate(w http.ResponseWriter, r *http.Request, operation, key string,
	op func(context.Context, int64) (bool, error)) {

	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id", zap.Error(err), zap.String("operation", operation))
		responseWithError(w, http.StatusBadRequest, "не удалось получить id: "+err.Error())
		return
	}

	changed, err := op(r.Context(), id)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", operation),
			zap.Int64("task_id", id))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("id", id), toPayload(key, changed))
}

func (s *TaskHandler) GetView(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, toPayload("view", dto.FromView(s.TaskService.View())))
}

func (s *TaskHandler) PutView(w http.ResponseWriter, r *http.Request) {
	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	filter, err := task.ParseFilter(request.Filter)
	if err != nil {
		handleBusinessError(w, service.NewValidationError("filter", err.Error()))
		return
	}
	mode, err := task.ParseSortMode(request.Sort)
	if err != nil {
		handleBusinessError(w, service.NewValidationError("sort", err.Error()))
		return
	}

	s.TaskService.SetFilter(filter)
	s.TaskService.SetSort(mode)
	responseWithJSON(w, http.StatusOK, toPayload("view", dto.FromView(s.TaskService.View())))
}
