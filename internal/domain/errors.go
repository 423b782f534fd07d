package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnavailable   = "SERVICE_UNAVAILABLE"
	ErrCodeProvider      = "PROVIDER_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion      = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrQuestionTooLong    = NewDomainError(ErrCodeValidation, "question exceeds maximum length")
	ErrHistoryTooLong     = NewDomainError(ErrCodeValidation, "conversation history exceeds maximum length")
	ErrInvalidTurnRole    = NewDomainError(ErrCodeValidation, "conversation turn has invalid role")
	ErrEmptyTurnContent   = NewDomainError(ErrCodeValidation, "conversation turn content cannot be empty")
	ErrTurnContentTooLong = NewDomainError(ErrCodeValidation, "conversation turn content exceeds maximum length")
)

// Store errors
var (
	ErrStoreEmpty             = NewDomainError(ErrCodeUnavailable, "vector store is empty, run 'sebastiand index' first")
	ErrStoreUnavailable       = NewDomainError(ErrCodeUnavailable, "vector store is unavailable")
	ErrEmbeddingDimensionSkew = NewDomainError(ErrCodeUnavailable, "embedding dimension does not match indexed corpus")
)

// Provider errors
var (
	ErrEmbeddingFailed  = NewDomainError(ErrCodeProvider, "embedding provider call failed")
	ErrGenerationFailed = NewDomainError(ErrCodeProvider, "generation provider call failed")
)
