package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a required artefact was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeCorruptArtefact indicates a stored artefact could not be read back
	ErrorTypeCorruptArtefact ErrorType = "CORRUPT_ARTEFACT"

	// ErrorTypeIO indicates artefact persistence or retrieval failed
	ErrorTypeIO ErrorType = "IO"

	// ErrorTypeGenerationService indicates the remote generation call failed
	ErrorTypeGenerationService ErrorType = "GENERATION_SERVICE"

	// ErrorTypeResponseParse indicates no JSON object could be extracted from model output
	ErrorTypeResponseParse ErrorType = "RESPONSE_PARSE"

	// ErrorTypeSchemaValidation indicates extracted JSON is missing its required shape
	ErrorTypeSchemaValidation ErrorType = "SCHEMA_VALIDATION"

	// ErrorTypeValidation indicates invalid caller input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeExternal indicates an error from an external service other than generation
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewCorruptArtefactError creates a new corrupt artefact error
func NewCorruptArtefactError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeCorruptArtefact,
		Message: message,
		Err:     err,
	}
}

// NewIOError creates a new persistence error
func NewIOError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Message: message,
		Err:     err,
	}
}

// NewGenerationServiceError creates a new generation service error
func NewGenerationServiceError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeGenerationService,
		Message: message,
		Err:     err,
	}
}

// NewResponseParseError creates a new response parse error
func NewResponseParseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeResponseParse,
		Message: message,
		Err:     err,
	}
}

// NewSchemaValidationError creates a new schema validation error
func NewSchemaValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeSchemaValidation,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}
