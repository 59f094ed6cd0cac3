package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"taskList/internal/logger"
	"taskList/internal/models/task"
	rep "taskList/internal/repository"

	"go.uber.org/zap"
)

// TaskService владеет списком активных задач и историей выполненных.
// Операции выполняются строго по одной: изменение в памяти, полная запись
// обеих коллекций в хранилище, и только потом следующая операция.
type TaskService struct {
	mtx     sync.Mutex
	repo    Storage
	now     func() time.Time
	lastID  int64
	pending []task.Task
	history []task.Task
	view    ViewState
}

type Summary struct {
	Completed int `json:"completedCount"`
	Pending   int `json:"pendingCount"`
	Overdue   int `json:"overdueCount"`
}

// Snapshot - согласованный срез состояния для одной отрисовки
type Snapshot struct {
	Pending []task.Task
	History []task.Task
	Summary Summary
	View    ViewState
	Now     time.Time
}

func NewTaskService(repo Storage, opts ...Option) *TaskService {
	s := &TaskService{
		repo:    repo,
		now:     time.Now,
		pending: []task.Task{},
		history: []task.Task{},
		view:    ViewState{Filter: task.FilterAll, Sort: task.DefaultSort},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// Load читает обе коллекции при старте. Отсутствующие или повреждённые
// данные дают пустую коллекцию; ошибкой считается только сбой чтения.
func (s *TaskService) Load(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}

	logger.Info("Service: Задачи загружены",
		zap.Int("pending", len(s.pending)),
		zap.Int("history", len(s.history)))
	return nil
}

// refresh перечитывает обе коллекции из хранилища. Вызывается под мьютексом
// перед каждым изменением: тем же хранилищем может пользоваться другой
// процесс (сервер и команды CLI), и запись по устаревшей копии затёрла бы
// его изменения. lastID не уменьшается, чтобы id удалённых задач не повторялись.
func (s *TaskService) refresh(ctx context.Context) error {
	pending, err := s.loadCollection(ctx, rep.KeyTasks)
	if err != nil {
		return err
	}
	history, err := s.loadCollection(ctx, rep.KeyCompletedHistory)
	if err != nil {
		return err
	}

	s.pending = pending
	s.history = history
	for _, t := range pending {
		s.lastID = max(s.lastID, t.ID)
	}
	for _, t := range history {
		s.lastID = max(s.lastID, t.ID)
	}
	return nil
}

func (s *TaskService) loadCollection(ctx context.Context, key string) ([]task.Task, error) {
	data, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return []task.Task{}, nil
		}
		return nil, fmt.Errorf("загрузка %s: %w", key, err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		logger.Warn("Service: Повреждённые данные в хранилище, начинаем с пустого списка",
			zap.String("key", key),
			zap.Error(err))
		return []task.Task{}, nil
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// persist полностью перезаписывает обе коллекции
func (s *TaskService) persist(ctx context.Context, pending, history []task.Task) error {
	pendingData, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("сериализация задач: %w", err)
	}
	historyData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("сериализация истории: %w", err)
	}

	err = s.repo.SetBatch(ctx, map[string][]byte{
		rep.KeyTasks:            pendingData,
		rep.KeyCompletedHistory: historyData,
	})
	if err != nil {
		logger.Error("Service: Не удалось сохранить задачи", err)
		return fmt.Errorf("сохранение задач: %w", err)
	}
	return nil
}

// commit сохраняет новые коллекции и только после успешной записи подменяет их в памяти
func (s *TaskService) commit(ctx context.Context, pending, history []task.Task) error {
	if err := s.persist(ctx, pending, history); err != nil {
		return err
	}
	s.pending = pending
	s.history = history
	return nil
}

func (s *TaskService) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *TaskService) AddTask(ctx context.Context, description string, deadline time.Time, priority task.Priority) (task.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return task.Task{}, NewValidationError("description", "описание не может быть пустым")
	}
	if deadline.IsZero() {
		return task.Task{}, NewValidationError("deadline", "дедлайн должен быть задан")
	}
	if !priority.Valid() {
		return task.Task{}, NewValidationError("priority", fmt.Sprintf("неизвестный приоритет %q", priority))
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.refresh(ctx); err != nil {
		return task.Task{}, err
	}

	prevID := s.lastID
	newTask := task.Task{
		ID:          s.nextID(),
		Description: description,
		Deadline:    deadline,
		Priority:    priority,
		Completed:   false,
	}

	pending := append(clone(s.pending), newTask)
	if err := s.commit(ctx, pending, s.history); err != nil {
		s.lastID = prevID
		return task.Task{}, err
	}

	logger.Info("Service: Задача добавлена",
		zap.Int64("task_id", newTask.ID),
		zap.String("priority", string(priority)))
	return newTask, nil
}

// CompleteTask переносит задачу в историю. Неизвестный id - не ошибка, вернётся false.
func (s *TaskService) CompleteTask(ctx context.Context, id int64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.refresh(ctx); err != nil {
		return false, err
	}

	idx := indexOf(s.pending, id)
	if idx == -1 {
		logger.Debug("Service: Задача для завершения не найдена", zap.Int64("task_id", id))
		return false, nil
	}

	completedAt := s.now()
	done := s.pending[idx]
	done.Completed = true
	done.CompletedAt = &completedAt

	pending := removeAt(s.pending, idx)
	history := append(clone(s.history), done)
	if err := s.commit(ctx, pending, history); err != nil {
		return false, err
	}

	logger.Info("Service: Задача выполнена", zap.Int64("task_id", id))
	return true, nil
}

func (s *TaskService) DeletePending(ctx context.Context, id int64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.refresh(ctx); err != nil {
		return false, err
	}

	idx := indexOf(s.pending, id)
	if idx == -1 {
		return false, nil
	}
	if err := s.commit(ctx, removeAt(s.pending, idx), s.history); err != nil {
		return false, err
	}

	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return true, nil
}

func (s *TaskService) DeleteFromHistory(ctx context.Context, id int64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.refresh(ctx); err != nil {
		return false, err
	}

	idx := indexOf(s.history, id)
	if idx == -1 {
		return false, nil
	}
	if err := s.commit(ctx, s.pending, removeAt(s.history, idx)); err != nil {
		return false, err
	}

	logger.Info("Service: Задача удалена из истории", zap.Int64("task_id", id))
	return true, nil
}

func (s *TaskService) SetFilter(filter task.Filter) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.Filter = filter
}

func (s *TaskService) SetSort(mode task.SortMode) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.Sort = mode
}

func (s *TaskService) View() ViewState {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.view
}

// PendingTasks - отфильтрованный и отсортированный список активных задач
func (s *TaskService) PendingTasks(opts ...ViewOption) []task.Task {
	return s.Snapshot(opts...).Pending
}

// History - вся история в порядке добавления
func (s *TaskService) History() []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return clone(s.history)
}

func (s *TaskService) Summary() Summary {
	return s.Snapshot().Summary
}

// OverdueTasks - активные задачи с дедлайном раньше now
func (s *TaskService) OverdueTasks(now time.Time) []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var res []task.Task
	for _, t := range s.pending {
		if t.IsOverdue(now) {
			res = append(res, t)
		}
	}
	return res
}

func (s *TaskService) Snapshot(opts ...ViewOption) Snapshot {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	view := s.view
	for _, opt := range opts {
		if opt != nil {
			opt(&view)
		}
	}

	now := s.now()
	return Snapshot{
		Pending: FilterAndSort(s.pending, view.Filter, view.Sort),
		History: clone(s.history),
		Summary: summarize(s.pending, s.history, now),
		View:    view,
		Now:     now,
	}
}

// FilterAndSort оставляет невыполненные задачи под фильтр и сортирует их.
// Стабильность при равных ключах не гарантируется.
func FilterAndSort(tasks []task.Task, filter task.Filter, mode task.SortMode) []task.Task {
	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed && filter.Match(t) {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return mode.Less(res[i], res[j])
	})
	return res
}

func summarize(pending, history []task.Task, now time.Time) Summary {
	summary := Summary{Completed: len(history)}
	for _, t := range pending {
		if t.Completed {
			continue
		}
		summary.Pending++
		if t.IsOverdue(now) {
			summary.Overdue++
		}
	}
	return summary
}

func indexOf(tasks []task.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []task.Task) []task.Task {
	res := make([]task.Task, len(tasks))
	copy(res, tasks)
	return res
}

func removeAt(tasks []task.Task, idx int) []task.Task {
	res := make([]task.Task, 0, len(tasks)-1)
	res = append(res, tasks[:idx]...)
	return append(res, tasks[idx+1:]...)
}
