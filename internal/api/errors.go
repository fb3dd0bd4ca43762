package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for the two failure classes callers branch on. Both are
// matched with errors.Is against the *Error returned by the client.
var (
	// ErrUnauthorized marks a 401: the stored token is missing, expired,
	// or lacks standing for the resource. The caller decides whether to
	// prompt for a fresh login.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrNotFound marks a 404.
	ErrNotFound = errors.New("api: not found")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api: backend returned %d", e.Status)
	}
	return fmt.Sprintf("api: backend returned %d: %s", e.Status, e.Detail)
}

// Is maps well-known statuses onto the package sentinels so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// FieldError is one entry of a structured validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries the backend's structured field errors (a 422
// response), flattened into field-labeled lines for display.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		lines = append(lines, f.Field+": "+f.Message)
	}
	return "api: validation failed: " + strings.Join(lines, "; ")
}

// Lines returns the field-labeled bullet list shown to the user.
func (e *ValidationError) Lines() []string {
	lines := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		lines = append(lines, f.Field+": "+f.Message)
	}
	return lines
}

// decodeError turns a non-2xx response body into the richest error it can.
// The backend reports errors as {"detail": ...} where detail is either a
// plain string or a list of {loc, msg} validation entries.
func decodeError(status int, body []byte) error {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return &Error{Status: status}
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		return &Error{Status: status, Detail: detail}
	}

	var entries []struct {
		Loc []json.RawMessage `json:"loc"`
		Msg string            `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &entries); err == nil && len(entries) > 0 {
		verr := &ValidationError{}
		for _, entry := range entries {
			// loc is ["body", "title", ...]; the last element names the
			// field. Elements may be strings or array indices.
			field := "request"
			if n := len(entry.Loc); n > 0 {
				var name string
				if err := json.Unmarshal(entry.Loc[n-1], &name); err == nil && name != "" && name != "body" {
					field = name
				}
			}
			verr.Fields = append(verr.Fields, FieldError{Field: field, Message: entry.Msg})
		}
		return verr
	}

	return &Error{Status: status, Detail: string(envelope.Detail)}
}
