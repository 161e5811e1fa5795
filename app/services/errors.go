package services

import (
	"errors"
	"fmt"

	"inkwell/app/repositories"
	"inkwell/app/validation"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("record not found")
	// ErrValidationFailed matches every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// NotFoundError reports an id that does not resolve to a live entity.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError carries the ordered rule failures that rejected a write.
type ValidationError struct {
	Kind   string
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Errors)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// loadErr maps a repository miss to a NotFoundError and wraps anything else.
func loadErr(kind string, id int, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return fmt.Errorf("load %s %d: %w", kind, id, err)
}

func rejected(kind string, errs validation.Errors, err error) error {
	if err != nil {
		return fmt.Errorf("validate %s: %w", kind, err)
	}
	if len(errs) > 0 {
		return &ValidationError{Kind: kind, Errors: errs}
	}
	return nil
}
