// Package apperr holds the error taxonomy shared by the services and the
// HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// PreconditionError means the current state of an entity blocks the
// requested transition.
type PreconditionError struct {
	Msg string
}

func (e PreconditionError) Error() string {
	if e.Msg == "" {
		return "precondition failed"
	}
	return e.Msg
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	}
	return "conflict"
}

func (e ConflictError) Unwrap() error { return e.Err }

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "unauthorized"
	}
	return e.Msg
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func Validation(msg string) error { return ValidationError{Msg: msg} }

func NotFound(resource, id string) error { return NotFoundError{Resource: resource, ID: id} }

func Precondition(msg string) error { return PreconditionError{Msg: msg} }

func Conflict(resource, msg string) error { return ConflictError{Resource: resource, Msg: msg} }

func Internal(msg string, err error) error { return InternalError{Msg: msg, Err: err} }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsPrecondition(err error) bool {
	var target PreconditionError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

// FromDB translates persistence errors into the taxonomy. Errors that are
// already classified pass through untouched.
func FromDB(resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsPrecondition(err) || IsConflict(err) || IsUnauthorized(err) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError{Resource: resource, ID: id, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ConflictError{Resource: resource, Msg: "already exists", Err: err}
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ConflictError{Resource: resource, Msg: "already exists", Err: err}
		case "23503":
			return ValidationError{Field: resource, Msg: "references a missing record", Err: err}
		}
	}
	var internal InternalError
	if errors.As(err, &internal) {
		return err
	}
	return InternalError{Msg: "database error", Err: err}
}

// StatusCode maps an error onto the HTTP status the API reports for it.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err), IsPrecondition(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	case IsUnauthorized(err):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
