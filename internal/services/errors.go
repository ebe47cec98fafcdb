// Package services holds the use-case layer between HTTP and storage. Every
// operation takes the authenticated identity and enforces ownership here, so
// neither handlers nor queries have to get it right individually.
package services

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means the resource does not exist. Resources owned by a
	// different user return ErrForbidden instead, after the existence check.
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("access denied")

	ErrDuplicateUser = errors.New("username or email already exists")

	// ErrInvalidCategory covers both a missing category and a category owned
	// by another user; referencing someone else's category is indistinguishable
	// from referencing a nonexistent one.
	ErrInvalidCategory = errors.New("invalid category")

	ErrDuplicateBudget = errors.New("budget already exists for this category and period")
)

// ValidationError collects every problem found in a request payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func validationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
