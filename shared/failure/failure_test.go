package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"stagehand/shared/failure"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("bad input")), code: http.StatusBadRequest, message: "bad input"},
		{name: "bad request from string", err: failure.BadRequestFromString("starts_at is required"), code: http.StatusBadRequest, message: "starts_at is required"},
		{name: "unauthorized", err: failure.Unauthorized("invalid token"), code: http.StatusUnauthorized, message: "invalid token"},
		{name: "internal", err: failure.InternalError(errors.New("boom")), code: http.StatusInternalServerError, message: "boom"},
		{name: "unimplemented", err: failure.Unimplemented("Export"), code: http.StatusNotImplemented, message: "Export"},
		{name: "not found", err: failure.NotFound("performance not found"), code: http.StatusNotFound, message: "performance not found"},
		{name: "conflict", err: failure.Conflict("cell already taken"), code: http.StatusConflict, message: "cell already taken"},
		{name: "locked", err: failure.Locked("performance is locked"), code: http.StatusLocked, message: "performance is locked"},
		{name: "forbidden", err: failure.Forbidden("nope"), code: http.StatusForbidden, message: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNilErrors(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("failed to update performance: %w", failure.Locked("locked"))

	assert.Equal(t, http.StatusLocked, failure.GetCode(wrapped))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("plain")))
	assert.Equal(t, http.StatusForbidden, failure.GetCode(failure.ForbiddenError))
}

func TestDatabaseErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name:    "unique violation",
			err:     fmt.Errorf("failed to create signup: %w", &pq.Error{Code: "23505", Constraint: "signups_performance_id_student_id_key"}),
			code:    http.StatusConflict,
			message: "resource already exists",
		},
		{
			name:    "foreign key violation",
			err:     &pq.Error{Code: "23503"},
			code:    http.StatusConflict,
			message: "resource is referenced by or refers to a missing record",
		},
		{
			name:    "check violation",
			err:     &pq.Error{Code: "23514", Constraint: "users_role_check"},
			code:    http.StatusBadRequest,
			message: "value violates constraint users_role_check",
		},
		{
			name:    "other database error",
			err:     &pq.Error{Code: "57014", Message: "canceling statement"},
			code:    http.StatusInternalServerError,
			message: "pq: canceling statement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, failure.Message(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("failed to place student: %w", failure.Conflict("cell already taken"))

	assert.Equal(t, "cell already taken", failure.Message(wrapped))
	assert.Equal(t, "plain", failure.Message(errors.New("plain")))
}
