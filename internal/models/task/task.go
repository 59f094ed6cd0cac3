package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Task - запись задачи. Пока задача в списке активных, Completed == false
// и CompletedAt == nil; при завершении запись целиком переносится в историю.
type Task struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// IsOverdue - активная задача с дедлайном в прошлом
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.Deadline.Before(now)
}

type Priority string

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

// Priorities в порядке отображения в селекторе
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// значения, которые писала браузерная версия в localStorage
var legacyPriorities = map[string]Priority{
	"alta":  PriorityHigh,
	"media": PriorityMedium,
	"baja":  PriorityLow,
}

// Rank - фиксированный ранг для сортировки: high=3, medium=2, low=1
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

func ParsePriority(s string) (Priority, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if p := Priority(value); p.Valid() {
		return p, nil
	}
	if p, ok := legacyPriorities[value]; ok {
		return p, nil
	}
	return "", fmt.Errorf("неизвестный приоритет %q", s)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// layout поля datetime-local в форме
const DeadlineInputLayout = "2006-01-02T15:04"

// ParseDeadline принимает RFC3339 и формат поля datetime-local (локальное время)
func ParseDeadline(s string) (time.Time, error) {
	return ParseDeadlineIn(s, time.Local)
}

// ParseDeadlineIn читает значение datetime-local в поясе loc, nil - time.Local.
// Значения RFC3339 несут смещение сами и от loc не зависят.
func ParseDeadlineIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(DeadlineInputLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат дедлайна %q: %w", s, err)
	}
	return t, nil
}

// UnmarshalJSON читает и старые записи, где deadline хранился как значение datetime-local
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	var raw struct {
		alias
		Deadline    string  `json:"deadline"`
		CompletedAt *string `json:"completedAt,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	deadline, err := ParseDeadline(raw.Deadline)
	if err != nil {
		return err
	}
	if deadline.IsZero() {
		return fmt.Errorf("задача %d: пустой дедлайн", raw.ID)
	}

	*t = Task(raw.alias)
	t.Deadline = deadline
	t.CompletedAt = nil
	if raw.CompletedAt != nil {
		completedAt, err := time.Parse(time.RFC3339, *raw.CompletedAt)
		if err != nil {
			return fmt.Errorf("задача %d: неверный completedAt: %w", raw.ID, err)
		}
		t.CompletedAt = &completedAt
	}
	return nil
}
