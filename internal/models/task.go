package models

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Due dates are stored as text in one of two fixed shapes. Both are
// zero-padded ISO-8601, so lexicographic comparison in SQL matches
// chronological order without a server-side date function.
const (
	DueDateLayout     = "2006-01-02"
	DueDateTimeLayout = "2006-01-02T15:04:05Z"
)

type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description"`
	Status      string    `json:"status" gorm:"not null;default:'todo';index"`
	Priority    string    `json:"priority" gorm:"not null;default:'medium'"`
	DueDate     *string   `json:"due_date" gorm:"type:text;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidDueDate reports whether s matches one of the two accepted shapes.
func ValidDueDate(s string) bool {
	if _, err := time.Parse(DueDateLayout, s); err == nil {
		return true
	}
	if _, err := time.Parse(DueDateTimeLayout, s); err == nil {
		return true
	}
	return false
}

func CheckStatus(s string) error {
	if !ValidStatus(s) {
		return fmt.Errorf("invalid status %q: must be one of todo, in_progress, done", s)
	}
	return nil
}

func CheckPriority(p string) error {
	if !ValidPriority(p) {
		return fmt.Errorf("invalid priority %q: must be one of low, medium, high, urgent", p)
	}
	return nil
}

func CheckDueDate(s string) error {
	if !ValidDueDate(s) {
		return fmt.Errorf("invalid due date %q: must be YYYY-MM-DD or YYYY-MM-DDTHH:MM:SSZ", s)
	}
	return nil
}
