package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/service"
)

const maxBodyBytes = 1 << 20

// todoParamsSchema checks the types of the writable fields. Unknown keys
// are allowed here and dropped when decoding into service.TodoParams.
const todoParamsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title":       {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]},
    "priority":    {"enum": ["low", "medium", "high", "", null]},
    "completed":   {"type": "boolean"},
    "due_date":    {"type": ["string", "null"]}
  }
}`

var todoSchema = jsonschema.MustCompileString("todo_params.json", todoParamsSchema)

// badRequestError is a malformed request; it maps to 400.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

var errMissingTodo = &badRequestError{msg: "param is missing or the value is empty: todo"}

// decodeTodoParams reads a {"todo": {...}} body. It returns a
// *badRequestError for malformed JSON or a missing todo object, and a
// *domain.ValidationError when a field has the wrong type.
func decodeTodoParams(r *http.Request) (service.TodoParams, error) {
	var params service.TodoParams

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return params, fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return params, errMissingTodo
	}

	var envelope struct {
		Todo json.RawMessage `json:"todo"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return params, decodeError(err)
	}

	raw := bytes.TrimSpace(envelope.Todo)
	if len(raw) == 0 || raw[0] != '{' {
		return params, errMissingTodo
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return params, decodeError(err)
	}
	if len(doc) == 0 {
		return params, errMissingTodo
	}

	if err := todoSchema.Validate(doc); err != nil {
		return params, schemaFieldErrors(err)
	}

	if err := json.Unmarshal(raw, &params); err != nil {
		return params, decodeError(err)
	}
	return params, nil
}

func decodeError(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		return &badRequestError{msg: fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &badRequestError{msg: "Request body contains badly-formed JSON"}
	case errors.As(err, &unmarshalTypeError):
		return &badRequestError{msg: fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)}
	default:
		return &badRequestError{msg: "Invalid request body"}
	}
}

// schemaFieldErrors flattens a schema failure into per-field messages keyed
// by the top-level property name.
func schemaFieldErrors(err error) error {
	verr := &domain.ValidationError{}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		verr.Add("base", err.Error())
		return verr
	}

	collectSchemaErrors(ve, verr)
	if verr.Empty() {
		verr.Add("base", ve.Message)
	}
	return verr
}

func collectSchemaErrors(ve *jsonschema.ValidationError, verr *domain.ValidationError) {
	if len(ve.Causes) == 0 {
		field := strings.TrimPrefix(ve.InstanceLocation, "/")
		if i := strings.IndexByte(field, '/'); i >= 0 {
			field = field[:i]
		}
		if field == "" {
			field = "base"
		}
		verr.Add(field, ve.Message)
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(cause, verr)
	}
}
