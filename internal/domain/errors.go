package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when no todo exists with the requested id.
var ErrNotFound = errors.New("todo not found")

// Field error messages.
const (
	MsgBlank       = "can't be blank"
	MsgNotIncluded = "is not included in the list"
	MsgInvalidDate = "is not a valid date"
)

// MsgTooLong formats the message for a value longer than max characters.
func MsgTooLong(max int) string {
	return fmt.Sprintf("is too long (maximum is %d characters)", max)
}

// ValidationError collects per-field messages for a rejected create or
// update. Nothing is persisted when one is returned.
type ValidationError struct {
	Fields map[string][]string
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies every message from other into e.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(field, msg)
		}
	}
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns e as an error if it holds messages, otherwise nil. It
// avoids handing back a typed nil inside a non-nil error interface.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, msg := range e.Fields[field] {
			parts = append(parts, field+" "+msg)
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
