package shared

import "fmt"

// Error codes shared by every bounded context. The HTTP layer maps them to
// status codes, background jobs only log them.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeAlreadyExists           = "ALREADY_EXISTS"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeValidation              = "VALIDATION_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeConcurrencyConflict     = "CONCURRENCY_CONFLICT"
	CodeInvalidExternalResponse = "INVALID_EXTERNAL_RESPONSE"
	CodeSyncInProgress          = "SYNC_IN_PROGRESS"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithField returns a copy of the error annotated with a field-level message
func (e *DomainError) WithField(field, message string) *DomainError {
	fields := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[field] = message
	return &DomainError{Code: e.Code, Message: e.Message, Fields: fields}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NotFoundf builds a NOT_FOUND error with a formatted message
func NotFoundf(format string, args ...any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf(format, args...))
}

// Validationf builds a VALIDATION_ERROR error with a formatted message
func Validationf(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// Unauthorizedf builds an UNAUTHORIZED error with a formatted message
func Unauthorizedf(format string, args ...any) *DomainError {
	return NewDomainError(CodeUnauthorized, fmt.Sprintf(format, args...))
}

// InvalidExternalResponsef builds an INVALID_EXTERNAL_RESPONSE error with a formatted message
func InvalidExternalResponsef(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidExternalResponse, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrNotFound                = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists           = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput            = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation              = NewDomainError(CodeValidation, "Validation failed")
	ErrConcurrencyConflict     = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized            = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidExternalResponse = NewDomainError(CodeInvalidExternalResponse, "Upstream returned an invalid response")
	ErrSyncInProgress          = NewDomainError(CodeSyncInProgress, "A synchronization is already running for this merchant")
)
