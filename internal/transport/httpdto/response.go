package httpdto

import (
	"errors"
	"net/http"

	matchup_errors "matchup-chat/pkg/errors"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}

// FromError maps a domain error to an HTTP status and response body.
func FromError(err error) (int, Response[any]) {
	switch {
	case errors.Is(err, matchup_errors.ErrInvalidInput):
		return http.StatusBadRequest, NewErrorResponse(err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, matchup_errors.ErrUnauthorized):
		return http.StatusUnauthorized, NewErrorResponse(err.Error(), "UNAUTHORIZED")
	case errors.Is(err, matchup_errors.ErrForbidden):
		return http.StatusForbidden, NewErrorResponse(err.Error(), "FORBIDDEN")
	case errors.Is(err, matchup_errors.ErrNotFound):
		return http.StatusNotFound, NewErrorResponse(err.Error(), "NOT_FOUND")
	case errors.Is(err, matchup_errors.ErrConflict), errors.Is(err, matchup_errors.ErrAlreadyExists):
		return http.StatusConflict, NewErrorResponse(err.Error(), "CONFLICT")
	case errors.Is(err, matchup_errors.ErrInvalidState):
		return http.StatusUnprocessableEntity, NewErrorResponse(err.Error(), "INVALID_STATE")
	case errors.Is(err, matchup_errors.ErrRateLimited):
		return http.StatusTooManyRequests, NewErrorResponse(err.Error(), "RATE_LIMITED")
	default:
		return http.StatusInternalServerError, NewErrorResponse("internal server error", "INTERNAL_ERROR")
	}
}
