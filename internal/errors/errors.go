package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode categorizes errors surfaced at the tool boundary
type ErrorCode string

const (
	ErrCodeMappingBackend   ErrorCode = "MAPPING_BACKEND_ERROR"
	ErrCodeMappingParse     ErrorCode = "MAPPING_PARSE_ERROR"
	ErrCodeSubmission       ErrorCode = "SUBMISSION_ERROR"
	ErrCodePollTransport    ErrorCode = "POLL_TRANSPORT_ERROR"
	ErrCodePollTimeout      ErrorCode = "POLL_TIMEOUT_ERROR"
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED_ERROR"
	ErrCodeNoResult         ErrorCode = "NO_RESULT_ERROR"
	ErrCodeMalformedResult  ErrorCode = "MALFORMED_RESULT_ERROR"
	ErrCodeConfiguration    ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnknown          ErrorCode = "UNKNOWN_ERROR"
)

const maxBodyPreview = 500

// AppError is the base structured error embedded by every error in the taxonomy
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the category of the error
func (e *AppError) ErrorCode() ErrorCode {
	return e.Code
}

// MappingBackendError means the text-generation call itself failed
type MappingBackendError struct {
	AppError
	Provider string
}

func NewMappingBackendError(provider string, cause error) *MappingBackendError {
	return &MappingBackendError{
		AppError: AppError{
			Code:    ErrCodeMappingBackend,
			Message: fmt.Sprintf("text generation request to %s failed", provider),
			Cause:   cause,
		},
		Provider: provider,
	}
}

// MappingParseError means the model answered but not with the expected JSON object
type MappingParseError struct {
	AppError
	Content string
}

func NewMappingParseError(message, content string, cause error) *MappingParseError {
	return &MappingParseError{
		AppError: AppError{
			Code:    ErrCodeMappingParse,
			Message: message,
			Cause:   cause,
		},
		Content: content,
	}
}

func (e *MappingParseError) Error() string {
	return fmt.Sprintf("%s (content=%q)", e.AppError.Error(), truncate(e.Content, maxBodyPreview))
}

// SubmissionError is returned when the compose request is rejected.
// StatusCode is 0 when no HTTP response was received.
type SubmissionError struct {
	AppError
	StatusCode int
	Body       string
}

func NewSubmissionError(statusCode int, body string, cause error) *SubmissionError {
	return &SubmissionError{
		AppError: AppError{
			Code:    ErrCodeSubmission,
			Message: "soundraw compose request failed",
			Cause:   cause,
		},
		StatusCode: statusCode,
		Body:       body,
	}
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s (status=%d, body=%q)", e.AppError.Error(), e.StatusCode, truncate(e.Body, maxBodyPreview))
}

// PollTransportError is returned when a status check does not succeed
type PollTransportError struct {
	AppError
	RequestID  string
	StatusCode int
	Body       string
}

func NewPollTransportError(requestID string, statusCode int, body string, cause error) *PollTransportError {
	return &PollTransportError{
		AppError: AppError{
			Code:    ErrCodePollTransport,
			Message: "soundraw result request failed",
			Cause:   cause,
		},
		RequestID:  requestID,
		StatusCode: statusCode,
		Body:       body,
	}
}

func (e *PollTransportError) Error() string {
	return fmt.Sprintf("%s (request_id=%s, status=%d, body=%q)",
		e.AppError.Error(), e.RequestID, e.StatusCode, truncate(e.Body, maxBodyPreview))
}

// PollTimeoutError is a client-side give-up. The backend job may still finish later.
type PollTimeoutError struct {
	AppError
	RequestID string
	Attempts  int
}

func NewPollTimeoutError(requestID string, attempts int) *PollTimeoutError {
	return &PollTimeoutError{
		AppError: AppError{
			Code:    ErrCodePollTimeout,
			Message: fmt.Sprintf("timeout waiting for soundraw result: %s", requestID),
		},
		RequestID: requestID,
		Attempts:  attempts,
	}
}

// GenerationFailedError is returned when the backend reports status "failed"
type GenerationFailedError struct {
	AppError
	RequestID string
}

func NewGenerationFailedError(requestID string) *GenerationFailedError {
	return &GenerationFailedError{
		AppError: AppError{
			Code:    ErrCodeGenerationFailed,
			Message: fmt.Sprintf("soundraw generation failed: %s", requestID),
		},
		RequestID: requestID,
	}
}

// NoResultError is returned when extraction is attempted on a job without payload
type NoResultError struct {
	AppError
	RequestID string
}

func NewNoResultError(requestID string) *NoResultError {
	return &NoResultError{
		AppError: AppError{
			Code:    ErrCodeNoResult,
			Message: fmt.Sprintf("no result in soundraw response: %s", requestID),
		},
		RequestID: requestID,
	}
}

// MalformedResultError is returned when a result field cannot be coerced
type MalformedResultError struct {
	AppError
	Field string
	Value string
}

func NewMalformedResultError(field, value string, cause error) *MalformedResultError {
	return &MalformedResultError{
		AppError: AppError{
			Code:    ErrCodeMalformedResult,
			Message: fmt.Sprintf("malformed %s in soundraw result: %q", field, value),
			Cause:   cause,
		},
		Field: field,
		Value: value,
	}
}

// ConfigurationError is returned at startup when a required setting is missing
type ConfigurationError struct {
	AppError
	Key string
}

func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{
		AppError: AppError{
			Code:    ErrCodeConfiguration,
			Message: message,
		},
		Key: key,
	}
}

// ValidationError represents a rejected clip request field
type ValidationError struct {
	AppError
	Field string
	Value interface{}
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		AppError: AppError{
			Code:    ErrCodeValidation,
			Message: message,
		},
		Field: field,
		Value: value,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] field=%s value=%v: %s", e.Code, e.Field, e.Value, e.Message)
}

// Is enables errors.Is checks
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As enables errors.As checks
func As[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

// CodeOf returns the taxonomy code of err, or ErrCodeUnknown
func CodeOf(err error) ErrorCode {
	var coded interface{ ErrorCode() ErrorCode }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ErrCodeUnknown
}

// HTTPStatus maps an error code to the status returned by the HTTP transport
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodePollTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeMappingBackend, ErrCodeMappingParse, ErrCodeSubmission, ErrCodePollTransport,
		ErrCodeGenerationFailed, ErrCodeNoResult, ErrCodeMalformedResult:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
