package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownKind         = errors.New("unknown record kind")
	ErrUnknownField        = errors.New("unknown field")
	ErrFieldType           = errors.New("invalid field value")
	ErrFormNotFound        = errors.New("form not found")
	ErrSubmitInFlight      = errors.New("submission already in progress")
	ErrNoImageField        = errors.New("form does not accept an image")
	ErrSelectionSuperseded = errors.New("image selection superseded by a newer one")
)

// FieldErrors maps a field name to a human-readable violation
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e[name]
	}
	return strings.Join(parts, "; ")
}

// SubmissionError is a failed pipeline run. Retryable failures (network,
// timeout, server overload) may succeed if the same record is sent again.
type SubmissionError struct {
	Retryable bool
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("submission failed (retryable): %v", e.Err)
	}
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
