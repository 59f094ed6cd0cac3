package task

import (
	"fmt"
	"strings"
)

// Filter - либо конкретный приоритет, либо FilterAll
type Filter string

const FilterAll Filter = "all"

func ParseFilter(s string) (Filter, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if value == "" || value == string(FilterAll) || value == "todas" {
		return FilterAll, nil
	}
	p, err := ParsePriority(value)
	if err != nil {
		return "", fmt.Errorf("неизвестный фильтр %q", s)
	}
	return Filter(p), nil
}

func (f Filter) Match(t Task) bool {
	return f == FilterAll || Priority(f) == t.Priority
}

type SortKey string

const SortByDeadline SortKey = "deadline"
const SortByPriority SortKey = "priority"

type Direction string

const Asc Direction = "asc"
const Desc Direction = "desc"

type SortMode struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

var DefaultSort = SortMode{Key: SortByDeadline, Direction: Asc}

// SortModes в порядке отображения в селекторе
var SortModes = []SortMode{
	{SortByDeadline, Asc},
	{SortByDeadline, Desc},
	{SortByPriority, Asc},
	{SortByPriority, Desc},
}

// String - значение селектора, как в старой версии: deadlineAsc, priorityDesc...
func (m SortMode) String() string {
	dir := "Asc"
	if m.Direction == Desc {
		dir = "Desc"
	}
	return string(m.Key) + dir
}

func ParseSortMode(s string) (SortMode, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return DefaultSort, nil
	}
	for _, m := range SortModes {
		if strings.EqualFold(m.String(), value) {
			return m, nil
		}
	}
	return SortMode{}, fmt.Errorf("неизвестный порядок сортировки %q", s)
}

// Less сравнивает две задачи в данном режиме.
// Для приоритета "asc" означает от высокого к низкому, "desc" - от низкого к высокому.
func (m SortMode) Less(a, b Task) bool {
	switch m.Key {
	case SortByPriority:
		if m.Direction == Asc {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.Priority.Rank() < b.Priority.Rank()
	default:
		if m.Direction == Desc {
			return a.Deadline.After(b.Deadline)
		}
		return a.Deadline.Before(b.Deadline)
	}
}
