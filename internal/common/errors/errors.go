// Package errors provides the structured error model shared by the onboarding
// service, its HTTP surface and its workflow workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Wizard and form validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeStepRejected     ErrorCode = "STEP_REJECTED"
	ErrCodeUnknownRole      ErrorCode = "UNKNOWN_ROLE"
	ErrCodeInvalidDraft     ErrorCode = "INVALID_DRAFT"

	// Storage
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"

	// Join page verification
	ErrCodeVerificationFailed ErrorCode = "VERIFICATION_FAILED"
	ErrCodeConfiguration      ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeJoinRejected       ErrorCode = "JOIN_REJECTED"

	// Marketplace matching
	ErrCodeNoEligibleMatch ErrorCode = "NO_ELIGIBLE_MATCH"

	// Handoff delivery
	ErrCodeHandoffFailed    ErrorCode = "HANDOFF_FAILED"
	ErrCodeNotificationFail ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Generic
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a failed or thrown job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError reports user input that does not satisfy a form or
// schema requirement.
func NewValidationError(message, details string) *StandardError {
	return newError(ErrCodeValidationFailed, message, details, false, nil)
}

// NewStepRejectedError reports a wizard transition that the state machine
// refused. reason is the rejection returned by the session.
func NewStepRejectedError(transition string, reason error) *StandardError {
	return newError(ErrCodeStepRejected,
		fmt.Sprintf("%s rejected", transition), reason.Error(), false, reason)
}

func NewUnknownRoleError(role string) *StandardError {
	return newError(ErrCodeUnknownRole, "Unknown onboarding role",
		fmt.Sprintf("role: %q", role), false, nil)
}

// NewInvalidDraftError reports a draft that cannot be decoded or is not a
// complete application.
func NewInvalidDraftError(details string) *StandardError {
	return newError(ErrCodeInvalidDraft, "Draft is not a valid application", details, false, nil)
}

// NewPersistenceError reports a storage failure. It is retryable and, in the
// wizard, surfaced as a non-fatal notice.
func NewPersistenceError(operation string, err error) *StandardError {
	return newError(ErrCodePersistenceFailed,
		fmt.Sprintf("Could not %s", operation), errDetails(err), true, err)
}

func NewNotFoundError(resource, id string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource),
		fmt.Sprintf("id: %s", id), false, nil)
}

// NewVerificationFailedError reports a bot-verification rejection.
func NewVerificationFailedError(details string) *StandardError {
	return newError(ErrCodeVerificationFailed, "Failed reCAPTCHA verification", details, false, nil)
}

// NewJoinRejectedError reports a Join submission refused for its content or
// its token, as thrown to a workflow.
func NewJoinRejectedError(message string, cause error) *StandardError {
	return newError(ErrCodeJoinRejected, message, errDetails(cause), false, cause)
}

func NewConfigurationError(message string) *StandardError {
	return newError(ErrCodeConfiguration, message, "", false, nil)
}

// NewNoMatchError reports a dispatch or instant booking that found no
// eligible driver or carrier.
func NewNoMatchError(message string, cause error) *StandardError {
	return newError(ErrCodeNoEligibleMatch, message, errDetails(cause), false, cause)
}

func NewHandoffError(sink string, err error) *StandardError {
	return newError(ErrCodeHandoffFailed,
		fmt.Sprintf("Handoff sink '%s' failed", sink), errDetails(err), true, err)
}

func NewNotificationError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationFail, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService,
		fmt.Sprintf("External service '%s' error", service), errDetails(err), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout,
		fmt.Sprintf("Service '%s' timeout", service), errDetails(err), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(err), false, err)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Inspection helpers
// ==========================

// AsStandard extracts a StandardError from err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize always returns a StandardError, wrapping foreign errors as
// INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// HTTPStatus maps an error to the status code returned by the HTTP surface.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	stdErr, ok := AsStandard(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch stdErr.Code {
	case ErrCodeValidationFailed, ErrCodeUnknownRole, ErrCodeInvalidDraft,
		ErrCodeVerificationFailed, ErrCodeJoinRejected:
		return http.StatusBadRequest
	case ErrCodeStepRejected, ErrCodeNoEligibleMatch:
		return http.StatusConflict
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeExternalService, ErrCodePersistenceFailed, ErrCodeHandoffFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 5. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePersistenceFailed,
		ErrCodeHandoffFailed,
		ErrCodeNotificationFail,
		ErrCodeExternalService:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError for the workflow engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "STEP") ||
		strings.Contains(codeStr, "ROLE") ||
		strings.Contains(codeStr, "DRAFT"):
		return "VALIDATION"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "NOT_FOUND"):
		return "STORAGE"
	case strings.Contains(codeStr, "VERIFICATION") ||
		strings.Contains(codeStr, "CONFIGURATION") ||
		strings.Contains(codeStr, "JOIN"):
		return "JOIN"
	case strings.Contains(codeStr, "HANDOFF") || strings.Contains(codeStr, "NOTIFICATION"):
		return "HANDOFF"
	case strings.Contains(codeStr, "MATCH"):
		return "MARKETPLACE"
	default:
		return "OTHER"
	}
}
