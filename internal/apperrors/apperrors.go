// Package apperrors defines the application error taxonomy and its
// mapping to log fields and HTTP status codes.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorType classifies an error for handling and reporting.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeAuth       ErrorType = "auth"
)

// AppError is an error with a type, a stable code and optional context.
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	Internal error
	Context  map[string]any
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches AppErrors by type and code so predefined errors work with
// errors.Is.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext attaches a key/value pair for structured logging.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus maps the error type to a response status code.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeAuth:
		return http.StatusUnauthorized
	case ErrorTypePermission:
		return http.StatusForbidden
	case ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// LogFields returns structured logging fields for the error.
func (e *AppError) LogFields() []any {
	fields := []any{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
	}
	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// New creates an AppError.
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message}
}

// Wrap attaches taxonomy information to an existing error.
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message, Internal: err}
}

// Predefined errors shared across services.
var (
	ErrUnauthorized     = New(ErrorTypeAuth, "UNAUTHORIZED", "authentication required")
	ErrSessionExpired   = New(ErrorTypeAuth, "SESSION_EXPIRED", "session expired, sign in again")
	ErrForbidden        = New(ErrorTypePermission, "FORBIDDEN", "you do not have permission for this action")
	ErrProfileRequired  = New(ErrorTypePermission, "PROFILE_INCOMPLETE", "complete your profile to use this feature")
	ErrNoActiveGoal     = New(ErrorTypeNotFound, "NO_ACTIVE_GOAL", "you have no active goal; create one to get started")
	ErrRecordNotFound   = New(ErrorTypeNotFound, "NOT_FOUND", "record not found")
	ErrEmailTaken       = New(ErrorTypeConflict, "EMAIL_TAKEN", "an account with this email already exists")
	ErrAlreadyProcessed = New(ErrorTypeConflict, "ALREADY_PROCESSED", "this request has already been processed")
)

// NewValidationError builds a user-facing validation error.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

// NewDatabaseError wraps a storage failure.
func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "DB_ERROR", "database operation failed")
}

// NewExternalAPIError wraps a failure from a named upstream API.
func NewExternalAPIError(err error, api string) *AppError {
	return Wrap(err, ErrorTypeExternal, "EXTERNAL_API", fmt.Sprintf("%s API error", api)).
		WithContext("api", api)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, "INTERNAL", "internal server error")
}

// Handler logs errors according to their type.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates an error handler bound to a logger.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs the error at a severity matching its type.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
		return
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeConflict, ErrorTypePermission, ErrorTypeAuth:
		h.logger.WarnContext(ctx, "Request error", appErr.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Critical error", appErr.LogFields()...)
	}
}
