package api

import (
	"net/http"

	qerrors "github.com/pzverkov/quantum-go-fips/internal/errors"
)

// Error codes for API responses.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeLockedOut      = "LOCKED_OUT"
	CodeSelfTestFailed = "SELF_TEST_FAILED"
	CodeInProgress     = "SELF_TEST_IN_PROGRESS"
	CodeNotOperational = "NOT_OPERATIONAL"
	CodeInternal       = "INTERNAL_ERROR"
)

// MapError maps a module error to an HTTP status code and APIError.
func MapError(err error) (int, *APIError) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case qerrors.Is(err, qerrors.ErrLockedOut):
		return http.StatusLocked, &APIError{Code: CodeLockedOut, Message: err.Error()}
	case qerrors.Is(err, qerrors.ErrAuthenticationFailure):
		return http.StatusUnauthorized, &APIError{Code: CodeUnauthorized, Message: err.Error()}
	case qerrors.IsSelfTestFailure(err):
		return http.StatusServiceUnavailable, &APIError{Code: CodeSelfTestFailed, Message: err.Error()}
	case qerrors.Is(err, qerrors.ErrPOSTInProgress):
		return http.StatusConflict, &APIError{Code: CodeInProgress, Message: err.Error()}
	case qerrors.IsStateError(err):
		return http.StatusServiceUnavailable, &APIError{Code: CodeNotOperational, Message: err.Error()}
	default:
		return http.StatusInternalServerError, &APIError{Code: CodeInternal, Message: "internal error"}
	}
}
