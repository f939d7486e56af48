package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Input errors, reported to the caller and never retried
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeInsufficientInput ErrorCode = "INSUFFICIENT_INPUT"
	CodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	CodeMissingFile       ErrorCode = "MISSING_FILE"
	CodeValidation        ErrorCode = "VALIDATION_ERROR"

	CodeRateLimited ErrorCode = "RATE_LIMITED"

	// Configuration and internal
	CodeConfig   ErrorCode = "CONFIG_ERROR"
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Upstream protocol errors
	CodeUploadInit          ErrorCode = "UPLOAD_INIT_FAILED"
	CodeUploadTransfer      ErrorCode = "UPLOAD_TRANSFER_FAILED"
	CodeMissingFileID       ErrorCode = "MISSING_FILE_ID"
	CodeFileDelete          ErrorCode = "FILE_DELETE_FAILED"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"

	// Provider output that could not be turned into a quiz after the repair pass
	CodeSchema ErrorCode = "SCHEMA_ERROR"
)

// ProviderDetailLimit bounds how much of an upstream error body is surfaced.
const ProviderDetailLimit = 200

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another *DomainError by code, so errors.Is(err, &DomainError{Code: ...}) works.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext attaches a key/value pair that is rendered as response details.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// AsDomainError extracts a *DomainError from an error chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the code of the first DomainError in err's chain, or CodeInternal.
func CodeOf(err error) ErrorCode {
	if de, ok := AsDomainError(err); ok {
		return de.Code
	}
	return CodeInternal
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInsufficientInputError(minTextLength int) *DomainError {
	return NewError(CodeInsufficientInput,
		fmt.Sprintf("please provide at least %d characters of study text or at least one uploaded file", minTextLength), nil)
}

func NewFileTooLargeError(maxBytes int64) *DomainError {
	return NewError(CodeFileTooLarge, fmt.Sprintf("file too large (max %d MiB)", maxBytes/(1024*1024)), nil).
		WithContext("max_bytes", maxBytes)
}

func NewMissingFileError() *DomainError {
	return NewError(CodeMissingFile, `no file received, expected form field "file"`, nil)
}

func NewConfigError(setting string) *DomainError {
	return NewError(CodeConfig, fmt.Sprintf("server configuration missing (%s)", setting), nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewRateLimitedError(retryAfterSeconds int) *DomainError {
	return NewError(CodeRateLimited, "too many requests, please try again later", nil).
		WithContext("retry_after_seconds", retryAfterSeconds)
}

func NewUpstreamUnavailableError(err error) *DomainError {
	return NewError(CodeUpstreamUnavailable, "quiz generation service is unavailable", err)
}

func NewSchemaError(message string) *DomainError {
	return NewError(CodeSchema, message, nil)
}

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by request validation and rendered as a 400.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Message: "invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max), Value: value}
}
