package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskList/internal/logger"
	"taskList/internal/models/task"
	"taskList/internal/service"
	"taskList/internal/view"

	"go.uber.org/zap"
)

// PageHandler отдаёт HTML-страницу и принимает формы.
// Каждая успешная форма заканчивается редиректом на полную перерисовку.
type PageHandler struct {
	TaskService Service
	renderer    *view.Renderer
	formatter   view.Formatter
}

func NewPageHandler(taskService Service, renderer *view.Renderer, formatter view.Formatter) PageHandler {
	return PageHandler{
		TaskService: taskService,
		renderer:    renderer,
		formatter:   formatter,
	}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "", view.FormInput{})
}

func (h *PageHandler) CSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(h.renderer.CSS())
}

func (h *PageHandler) render(w http.ResponseWriter, code int, alert string, input view.FormInput) {
	page := view.Build(h.TaskService.Snapshot(), h.formatter, alert, input)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := h.renderer.Render(w, page); err != nil {
		logger.Error("HTTP: Ошибка рендера страницы", err)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseForm(); err != nil {
		logger.Warn("HTTP: Ошибка чтения формы", zap.Error(err))
		http.Error(w, "неверное тело запроса", http.StatusBadRequest)
		return
	}

	input := view.FormInput{
		Description: r.PostForm.Get("description"),
		Deadline:    r.PostForm.Get("deadline"),
	}

	priority, err := task.ParsePriority(r.PostForm.Get("priority"))
	if err != nil {
		h.validationFailed(w, service.NewValidationError("priority", err.Error()), input)
		return
	}
	input.Priority = priority

	deadline, err := task.ParseDeadlineIn(input.Deadline, h.formatter.Location())
	if err != nil {
		h.validationFailed(w, service.NewValidationError("deadline", err.Error()), input)
		return
	}

	created, err := h.TaskService.AddTask(r.Context(), input.Description, deadline, priority)
	if err != nil {
		var businessErr *service.BusinessError
		if errors.As(err, &businessErr) {
			h.validationFailed(w, businessErr, input)
			return
		}
		logger.Error("HTTP: Ошибка Service", err, zap.String("operation", "add_task"))
		http.Error(w, "не удалось сохранить задачу", http.StatusInternalServerError)
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)))
	redirectHome(w, r)
}

func (h *PageHandler) validationFailed(w http.ResponseWriter, err *service.BusinessError, input view.FormInput) {
	logger.Warn("HTTP: Ошибка валидации",
		zap.Any("field", err.Details["field"]),
		zap.Any("reason", err.Details["reason"]))
	h.render(w, http.StatusBadRequest, alertMessage(err), input)
}

func (h *PageHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "complete_task", h.TaskService.CompleteTask)
}

func (h *PageHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "delete_task", h.TaskService.DeletePending)
}

func (h *PageHandler) DeleteHistoryTask(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "delete_history_task", h.TaskService.DeleteFromHistory)
}

// mutate - общая часть complete/delete: устаревший id молча игнорируется
func (h *PageHandler) mutate(w http.ResponseWriter, r *http.Request, operation string,
	op func(context.Context, int64) (bool, error)) {

	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id", zap.Error(err), zap.String("operation", operation))
		http.Error(w, "неверный id", http.StatusBadRequest)
		return
	}

	changed, err := op(r.Context(), id)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", operation),
			zap.Int64("task_id", id))
		http.Error(w, "не удалось сохранить изменения", http.StatusInternalServerError)
		return
	}
	if !changed {
		logger.Debug("HTTP: Задача уже отсутствует", zap.String("operation", operation), zap.Int64("task_id", id))
	}
	redirectHome(w, r)
}

// SetView меняет фильтр и сортировку списка
func (h *PageHandler) SetView(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "неверное тело запроса", http.StatusBadRequest)
		return
	}

	filter, err := task.ParseFilter(r.PostForm.Get("filter"))
	if err != nil {
		logger.Warn("HTTP: Неверный фильтр", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := task.ParseSortMode(r.PostForm.Get("sort"))
	if err != nil {
		logger.Warn("HTTP: Неверная сортировка", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.TaskService.SetFilter(filter)
	h.TaskService.SetSort(mode)
	redirectHome(w, r)
}
