package services

import (
	"fmt"
	"unicode/utf8"
)

type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Validation error"
}

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// IdentityError means the caller authenticated but the identity it carries
// cannot be used (for example a subject that is not a user id).
type IdentityError struct{ Message string }

func (e *IdentityError) Error() string { return e.Message }

// GenerationParseError is returned when generator output does not contain the
// structured payload that was asked for. Raw keeps the full response text.
type GenerationParseError struct {
	Message string
	Raw     string
}

func (e *GenerationParseError) Error() string { return e.Message }

const rawSnippetLen = 500

// Snippet is the truncated raw response shown to clients.
func (e *GenerationParseError) Snippet() string {
	if len(e.Raw) <= rawSnippetLen {
		return e.Raw + "..."
	}
	cut := rawSnippetLen
	for cut > 0 && !utf8.RuneStart(e.Raw[cut]) {
		cut--
	}
	return e.Raw[:cut] + "..."
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
