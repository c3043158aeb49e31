package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"team-journal/internal/errors"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrInputValidation), errors.Is(err, errors.ErrScoreRequired):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, errors.ErrRiskLocked):
		return http.StatusLocked
	case errors.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Field  string   `json:"field,omitempty"`
	TotalR *float64 `json:"total_r,omitempty"`
}

// writeError aborts the request with the mapped status. Internal errors are not echoed.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), Code: codeFor(status)}

	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		body.Error = verr.Message
		body.Field = verr.Field
	}
	var rerr *errors.RiskError
	if errors.As(err, &rerr) {
		body.Error = rerr.Message
		total := rerr.Current
		body.TotalR = &total
	}
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		body.Error = http.StatusText(status)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "invalid_transition"
	case http.StatusLocked:
		return "risk_locked"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}
