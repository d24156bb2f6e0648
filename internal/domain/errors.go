package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode discriminates the failures surfaced by the retrieval pipeline.
type ErrorCode string

const (
	CodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	CodeEmptyDocument        ErrorCode = "EMPTY_DOCUMENT"
	CodeDimensionMismatch    ErrorCode = "DIMENSION_MISMATCH"
	CodeEmbeddingMismatch    ErrorCode = "EMBEDDING_MISMATCH"
	CodeNotReady             ErrorCode = "NOT_READY"
	CodeEmbeddingService     ErrorCode = "EMBEDDING_SERVICE"
	CodeGenerationService    ErrorCode = "GENERATION_SERVICE"
	// CodeEmptyGeneration means the generator answered but the response had
	// no extractable text.
	CodeEmptyGeneration ErrorCode = "EMPTY_GENERATION"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrInvalidConfiguration = &Error{Code: CodeInvalidConfiguration, Message: "invalid configuration"}
	ErrEmptyDocument        = &Error{Code: CodeEmptyDocument, Message: "document produced no chunks"}
	ErrDimensionMismatch    = &Error{Code: CodeDimensionMismatch, Message: "embedding dimension mismatch"}
	ErrEmbeddingMismatch    = &Error{Code: CodeEmbeddingMismatch, Message: "embedding count mismatch"}
	ErrNotReady             = &Error{Code: CodeNotReady, Message: "no document ingested"}
	ErrEmbeddingService     = &Error{Code: CodeEmbeddingService, Message: "embedding service error"}
	ErrGenerationService    = &Error{Code: CodeGenerationService, Message: "generation service error"}
	ErrEmptyGeneration      = &Error{Code: CodeEmptyGeneration, Message: "generation returned no text"}
)

// Error is a coded failure with an optional cause.
type Error struct {
	Code     ErrorCode
	Message  string
	Provider string
	Cause    error
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Provider != "" {
		prefix += "/" + e.Provider
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", prefix, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithProvider records which collaborator produced the error.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// HTTPStatus maps the error code onto a status an HTTP layer can return.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidConfiguration:
		return http.StatusBadRequest
	case CodeEmptyDocument:
		return http.StatusUnprocessableEntity
	case CodeNotReady:
		return http.StatusConflict
	case CodeEmbeddingService, CodeGenerationService, CodeEmptyGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the error code from err, or "" if err carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCollaboratorError reports whether err came from an embedder or generator.
func IsCollaboratorError(err error) bool {
	switch CodeOf(err) {
	case CodeEmbeddingService, CodeGenerationService, CodeEmptyGeneration:
		return true
	}
	return false
}
