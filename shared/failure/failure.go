package failure

import (
	"errors"
	"net/http"

	"github.com/lib/pq"
)

// Failure carries an HTTP status code alongside the message returned to the client.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest wraps err as a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return BadRequestFromString(err.Error())
}

func BadRequestFromString(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) error {
	return &Failure{Code: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Failure{Code: http.StatusForbidden, Message: msg}
}

// NotFound reports a missing entity, e.g. NotFound("performance not found").
func NotFound(entityName string) error {
	return &Failure{Code: http.StatusNotFound, Message: entityName}
}

// Conflict reports a write that collides with existing state: an occupied grid cell, a duplicate
// signup, a uniform already checked out.
func Conflict(msg string) error {
	return &Failure{Code: http.StatusConflict, Message: msg}
}

// Locked reports a resource frozen because its lock boundary has passed.
func Locked(msg string) error {
	return &Failure{Code: http.StatusLocked, Message: msg}
}

func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: http.StatusInternalServerError, Message: err.Error()}
}

func Unimplemented(methodName string) error {
	return &Failure{Code: http.StatusNotImplemented, Message: methodName}
}

// GetCode returns the status code carried by err. Constraint violations raised by postgres map to
// client errors; anything else unknown is a 500.
func GetCode(err error) int {
	if fail := find(err); fail != nil {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// Message returns the client-facing message for err.
func Message(err error) string {
	if fail := find(err); fail != nil {
		return fail.Message
	}

	return err.Error()
}

func find(err error) *Failure {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return &Failure{Code: http.StatusConflict, Message: "resource already exists"}
	case pqForeignKeyViolation:
		return &Failure{Code: http.StatusConflict, Message: "resource is referenced by or refers to a missing record"}
	case pqCheckViolation:
		return &Failure{Code: http.StatusBadRequest, Message: "value violates constraint " + pqErr.Constraint}
	}

	return nil
}
