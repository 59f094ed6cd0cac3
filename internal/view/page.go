package view

import (
	"taskList/internal/models/task"
	"taskList/internal/service"
)

// Page - декларативное описание страницы, собранное из состояния.
// Шаблон только отображает его и ничего не вычисляет сам.
type Page struct {
	Lang    string
	Alert   string
	Form    Form
	Filters []Option
	Sorts   []Option
	Pending []PendingItem
	History []HistoryItem
	Summary service.Summary
}

// Form - значения полей добавления; после ошибки валидации сохраняются введённые
type Form struct {
	Description string
	Deadline    string
	Priorities  []Option
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type PendingItem struct {
	ID            int64
	Description   string
	Deadline      string
	Priority      string
	PriorityLabel string
	Overdue       bool
}

type HistoryItem struct {
	ID          int64
	Description string
	Deadline    string
	CompletedAt string
}

// FormInput - то, что пользователь ввёл в форму добавления
type FormInput struct {
	Description string
	Deadline    string
	Priority    task.Priority
}

// Build собирает страницу из снимка состояния
func Build(snap service.Snapshot, f Formatter, alert string, input FormInput) Page {
	page := Page{
		Lang:    f.Locale(),
		Alert:   alert,
		Summary: snap.Summary,
		Form: Form{
			Description: input.Description,
			Deadline:    input.Deadline,
		},
		Pending: make([]PendingItem, 0, len(snap.Pending)),
		History: make([]HistoryItem, 0, len(snap.History)),
	}

	selectedPriority := input.Priority
	if !selectedPriority.Valid() {
		selectedPriority = task.PriorityMedium
	}
	for _, p := range task.Priorities {
		page.Form.Priorities = append(page.Form.Priorities, Option{
			Value:    string(p),
			Label:    f.Priority(p),
			Selected: p == selectedPriority,
		})
	}

	page.Filters = append(page.Filters, Option{
		Value:    string(task.FilterAll),
		Label:    "All",
		Selected: snap.View.Filter == task.FilterAll,
	})
	for _, p := range task.Priorities {
		page.Filters = append(page.Filters, Option{
			Value:    string(p),
			Label:    f.Priority(p),
			Selected: snap.View.Filter == task.Filter(p),
		})
	}

	for _, m := range task.SortModes {
		page.Sorts = append(page.Sorts, Option{
			Value:    m.String(),
			Label:    sortLabels[m.String()],
			Selected: snap.View.Sort == m,
		})
	}

	for _, t := range snap.Pending {
		page.Pending = append(page.Pending, PendingItem{
			ID:            t.ID,
			Description:   t.Description,
			Deadline:      f.DateTime(t.Deadline),
			Priority:      string(t.Priority),
			PriorityLabel: f.Priority(t.Priority),
			Overdue:       t.IsOverdue(snap.Now),
		})
	}

	for _, t := range snap.History {
		item := HistoryItem{
			ID:          t.ID,
			Description: t.Description,
			Deadline:    f.DateTime(t.Deadline),
		}
		if t.CompletedAt != nil {
			item.CompletedAt = f.DateTime(*t.CompletedAt)
		}
		page.History = append(page.History, item)
	}

	return page
}

var sortLabels = map[string]string{
	"deadlineAsc":  "Deadline (earliest first)",
	"deadlineDesc": "Deadline (latest first)",
	"priorityAsc":  "Priority (high to low)",
	"priorityDesc": "Priority (low to high)",
}
