package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TitleMaxLength is the longest title, in characters, a todo may carry.
const TitleMaxLength = 255

// Priority is the categorical importance of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is the single persisted entity. Deletion is permanent, so there is
// no soft-delete column.
type Todo struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	Priority    *Priority `gorm:"size:16;index"`
	Completed   bool      `gorm:"not null;default:false;index"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// Validate checks the field constraints of a todo and returns a
// *ValidationError listing every violated field, or nil.
func (t *Todo) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(t.Title) == "" {
		verr.Add("title", MsgBlank)
	} else if utf8.RuneCountInString(t.Title) > TitleMaxLength {
		verr.Add("title", MsgTooLong(TitleMaxLength))
	}

	if t.Priority != nil && !t.Priority.Valid() {
		verr.Add("priority", MsgNotIncluded)
	}

	return verr.OrNil()
}
