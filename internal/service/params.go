package service

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// Field is a request value that remembers whether it was supplied and
// whether it was an explicit JSON null, so partial updates can tell
// "leave alone" from "clear".
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a supplied, non-null field.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a supplied field holding JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler. encoding/json only calls it
// for keys present in the input, so absent keys stay unset.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// TodoParams holds the writable todo attributes accepted from clients.
// Anything else in the payload is dropped during decoding.
type TodoParams struct {
	Title       Field[string]          `json:"title"`
	Description Field[string]          `json:"description"`
	Priority    Field[domain.Priority] `json:"priority"`
	Completed   Field[bool]            `json:"completed"`
	DueDate     Field[string]          `json:"due_date"`
}

// dueDateLayouts are tried in order when parsing due_date.
var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// apply copies the supplied fields onto todo. Values that cannot be
// converted are reported in verr and leave the todo field untouched.
func (p TodoParams) apply(todo *domain.Todo, verr *domain.ValidationError) {
	if p.Title.Set {
		todo.Title = p.Title.Value
	}

	if p.Description.Set {
		if p.Description.Null {
			todo.Description = nil
		} else {
			v := p.Description.Value
			todo.Description = &v
		}
	}

	if p.Priority.Set {
		if p.Priority.Null || p.Priority.Value == "" {
			todo.Priority = nil
		} else {
			v := p.Priority.Value
			todo.Priority = &v
		}
	}

	if p.Completed.Set && !p.Completed.Null {
		todo.Completed = p.Completed.Value
	}

	if p.DueDate.Set {
		switch {
		case p.DueDate.Null || p.DueDate.Value == "":
			todo.DueDate = nil
		default:
			if due, ok := parseDueDate(p.DueDate.Value); ok {
				todo.DueDate = &due
			} else {
				verr.Add("due_date", domain.MsgInvalidDate)
			}
		}
	}
}
