// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"log/slog"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Error codes surfaced on the wire. Clients key off these, not the messages.
const (
	CodeValidationError = "validation_error"
	CodeUnauthenticated = "unauthenticated"
	CodeInvalidToken    = "invalid_token"
	CodeForbidden       = "forbidden"
	CodeQuotaExceeded   = "quota_exceeded"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeRateLimited     = "rate_limited"
	CodeServerError     = "server_error"
)

type AppError struct {
	Err     error
	Message string
	Status  int
	Code    string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func ValidationError(message string) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		CodeValidationError,
	)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		CodeUnauthenticated,
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "permission denied"
	}
	return NewAppError(
		ErrForbidden,
		message,
		http.StatusForbidden,
		CodeForbidden,
	)
}

func QuotaExceededError(message string) *AppError {
	return NewAppError(
		ErrForbidden,
		message,
		http.StatusForbidden,
		CodeQuotaExceeded,
	)
}

// TokenInvalidError covers both malformed and expired bearer tokens. The
// contract returns 403 for a token that is present but unusable, reserving
// 401 for requests that carry no token at all.
func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"invalid or expired token",
		http.StatusForbidden,
		CodeInvalidToken,
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"invalid or expired token",
		http.StatusForbidden,
		CodeInvalidToken,
	)
}

// JSONError writes err as the standard error envelope. Unknown errors are
// logged and surfaced as an opaque 500.
func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		writeError(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, ErrDuplicateKey):
		writeError(w, http.StatusConflict, CodeConflict, "already exists")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, CodeForbidden, "permission denied")
	case errors.Is(err, ErrUnauthorized):
		writeError(
			w,
			http.StatusUnauthorized,
			CodeUnauthenticated,
			"authentication required",
		)
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, CodeValidationError, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		writeError(
			w,
			http.StatusInternalServerError,
			CodeServerError,
			"internal server error",
		)
	}
}

func BadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, CodeValidationError, message)
}

func NotFound(w http.ResponseWriter, resource string) {
	writeError(w, http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Conflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, CodeConflict, message)
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	writeError(
		w,
		http.StatusInternalServerError,
		CodeServerError,
		"internal server error",
	)
}
