package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"team-journal/internal/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", errors.ErrNotAuthenticated, http.StatusUnauthorized},
		{"forbidden", errors.NewAuthorizationError("review", "u1", nil), http.StatusForbidden},
		{"self review", errors.NewAuthorizationError("review", "u1", errors.ErrSelfReview), http.StatusForbidden},
		{"validation", errors.NewValidationError("pair", "", "empty"), http.StatusBadRequest},
		{"score required", &errors.ValidationError{Field: "score", Err: errors.ErrScoreRequired}, http.StatusBadRequest},
		{"not found", errors.NewNotFoundError("trade", "t1"), http.StatusNotFound},
		{"transition", errors.NewInvalidTransitionError("t1", "reviewed", "review"), http.StatusConflict},
		{"locked", errors.NewRiskError("daily_loss", -2, -2, "locked"), http.StatusLocked},
		{"transient", errors.NewTransientIOError("query", fmt.Errorf("busy")), http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"wrapped", errors.Wrap(errors.NewNotFoundError("profile", "p1"), "loading"), http.StatusNotFound},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
