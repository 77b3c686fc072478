package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := Conflict(CodeTaskAlreadyAssigned, "task %d already accepted", 7)
	wrapped := fmt.Errorf("accept: %w", err)

	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "[2004] task 7 already accepted", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound(CodeTaskNotFound, "task not found"), http.StatusNotFound},
		{"conflict", Conflict(CodeAssignmentAlreadyExists, "dup"), http.StatusConflict},
		{"invalid state", InvalidState(CodeInvalidAssignmentStatus, "bad"), http.StatusBadRequest},
		{"validation", Validation(CodeInvalidRewardAmount, "bad"), http.StatusBadRequest},
		{"permission", PermissionDenied(CodeReviewPermissionDenied, "no"), http.StatusForbidden},
		{"unauthenticated", Unauthenticated(CodeInvalidToken, "no"), http.StatusUnauthorized},
		{"raw error", errors.New("boom"), http.StatusInternalServerError},
		{"deadline", fmt.Errorf("commit: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFromHidesRawCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: tasks.id")
	e := From(fmt.Errorf("insert task: %w", cause))

	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, CodeInternal, e.Code)
	assert.Equal(t, "internal server error", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeOK, CodeOf(nil))
	assert.Equal(t, CodeReviewAlreadyCompleted, CodeOf(Conflict(CodeReviewAlreadyCompleted, "done")))
	assert.Equal(t, KindValidation, KindOf(Validation(CodeValidation, "x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("x")))
}
