package view

import (
	"fmt"
	"strings"
	"time"

	"taskList/internal/models/task"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var shortMonths = map[string][12]string{
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	"es": {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
}

// Formatter выводит даты и подписи в выбранной локали
type Formatter struct {
	locale   string
	location *time.Location
	tag      language.Tag
}

// NewFormatter: неизвестная локаль заменяется на en, nil location - на time.Local
func NewFormatter(locale string, location *time.Location) Formatter {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if _, ok := shortMonths[locale]; !ok {
		locale = "en"
	}
	if location == nil {
		location = time.Local
	}
	return Formatter{
		locale:   locale,
		location: location,
		tag:      language.Make(locale),
	}
}

func (f Formatter) Locale() string {
	return f.locale
}

// DateTime: "1 Mar 2024, 14:05" / "1 mar 2024, 14:05"
func (f Formatter) DateTime(t time.Time) string {
	local := t.In(f.location)
	month := shortMonths[f.locale][local.Month()-1]
	return fmt.Sprintf("%d %s %d, %02d:%02d", local.Day(), month, local.Year(), local.Hour(), local.Minute())
}

// Location - пояс, в котором показываются и читаются даты из формы
func (f Formatter) Location() *time.Location {
	return f.location
}

// Priority: Caser хранит состояние, поэтому создаётся на каждый вызов
func (f Formatter) Priority(p task.Priority) string {
	return cases.Title(f.tag).String(string(p))
}
