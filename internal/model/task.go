package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxTaskTextLength = 100

type Task struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Category  Category  `json:"category,omitempty"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTask trims text and validates it. Category is checked only when
// withCategory is set, otherwise it is dropped.
func NewTask(id int64, text string, category Category, withCategory bool, createdAt time.Time) (*Task, error) {
	text, err := NormalizeTaskText(text)
	if err != nil {
		return nil, err
	}

	if !withCategory {
		category = ""
	} else if !category.Valid() {
		return nil, &ValidationError{Reason: ValidationCategory, Value: string(category)}
	}

	return &Task{
		ID:        id,
		Text:      text,
		Category:  category,
		CreatedAt: createdAt,
	}, nil
}

func NormalizeTaskText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrTextEmpty
	}
	if n := utf8.RuneCountInString(text); n > MaxTaskTextLength {
		return "", &ValidationError{Reason: ValidationTooLong, Value: text, Length: n}
	}
	return text, nil
}

func (t *Task) Toggle() {
	t.Completed = !t.Completed
}

type TaskStats struct {
	Total     int
	Active    int
	Completed int
	// Active tasks per category. Tasks without category are not counted.
	ActiveByCategory map[Category]int
}

func NewTaskStats(tasks []Task) TaskStats {
	stats := TaskStats{ActiveByCategory: make(map[Category]int, len(Categories))}
	for _, c := range Categories {
		stats.ActiveByCategory[c] = 0
	}

	for _, t := range tasks {
		stats.Total++
		if t.Completed {
			stats.Completed++
			continue
		}
		if t.Category != "" {
			stats.ActiveByCategory[t.Category]++
		}
	}
	stats.Active = stats.Total - stats.Completed
	return stats
}
