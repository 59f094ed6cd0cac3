package service

import (
	"time"

	"taskList/internal/models/task"
)

// ViewState - выбранные фильтр и сортировка. В хранилище не сохраняются.
type ViewState struct {
	Filter task.Filter   `json:"filter"`
	Sort   task.SortMode `json:"sort"`
}

// ViewOption меняет состояние вида только для одного чтения
type ViewOption func(*ViewState)

func WithFilter(filter task.Filter) ViewOption {
	if filter == "" {
		return nil
	}
	return func(v *ViewState) {
		v.Filter = filter
	}
}

func WithSort(mode task.SortMode) ViewOption {
	if mode.Key == "" {
		return nil
	}
	return func(v *ViewState) {
		v.Sort = mode
	}
}

// Option настраивает TaskService при создании
type Option func(*TaskService)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func WithView(view ViewState) Option {
	return func(s *TaskService) {
		if view.Filter != "" {
			s.view.Filter = view.Filter
		}
		if view.Sort.Key != "" {
			s.view.Sort = view.Sort
		}
	}
}
