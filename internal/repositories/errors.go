package repositories

import (
	"errors"
	"fmt"
)

type errorKind int

const (
	kindInternal errorKind = iota
	kindNotFound
	kindConflict
)

// Error is the concrete RepositoryError returned by the built-in stores.
type Error struct {
	kind errorKind
	op   string
	err  error
}

// NewNotFoundError reports a missing entity for the given operation.
func NewNotFoundError(op string, err error) *Error {
	return &Error{kind: kindNotFound, op: op, err: err}
}

// NewConflictError reports a uniqueness or state conflict for the given operation.
func NewConflictError(op string, err error) *Error {
	return &Error{kind: kindConflict, op: op, err: err}
}

// NewInternalError reports an uncategorised persistence failure.
func NewInternalError(op string, err error) *Error {
	return &Error{kind: kindInternal, op: op, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("repositories: %s: %v", e.op, e.err)
	}
	switch e.kind {
	case kindNotFound:
		return fmt.Sprintf("repositories: %s: not found", e.op)
	case kindConflict:
		return fmt.Sprintf("repositories: %s: conflict", e.op)
	default:
		return fmt.Sprintf("repositories: %s: internal error", e.op)
	}
}

// Unwrap exposes the underlying cause for errors.Is checks.
func (e *Error) Unwrap() error { return e.err }

// IsNotFound implements RepositoryError.
func (e *Error) IsNotFound() bool { return e.kind == kindNotFound }

// IsConflict implements RepositoryError.
func (e *Error) IsConflict() bool { return e.kind == kindConflict }

// IsNotFound reports whether err categorises as a missing entity.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err categorises as a conflict.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
