// Package errors provides standardized error handling for the quote engine and its BPMN worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeRatingFailed     ErrorCode = "RATING_FAILED"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeNoPremium        ErrorCode = "PREMIUM_NOT_AVAILABLE"

	ErrCodeInvalidPayload           ErrorCode = "INVALID_QUOTE_PAYLOAD"
	ErrCodeQuoteSubmissionFailed    ErrorCode = "QUOTE_SUBMISSION_FAILED"
	ErrCodeWalletQueryFailed        ErrorCode = "WALLET_QUERY_FAILED"
	ErrCodeFundingAmountTooLow      ErrorCode = "FUNDING_AMOUNT_TOO_LOW"
	ErrCodeFundingFailed            ErrorCode = "WALLET_FUNDING_FAILED"
	ErrCodeDraftNotFound            ErrorCode = "DRAFT_NOT_FOUND"
	ErrCodeDraftStoreFailed         ErrorCode = "DRAFT_STORE_FAILED"
	ErrCodeReferenceDataFailed      ErrorCode = "REFERENCE_DATA_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeEventPublishFailed       ErrorCode = "EVENT_PUBLISH_FAILED"
)

// RetryPrompt is the generic message shown to the customer when a submission step fails.
const RetryPrompt = "We could not complete your request. Please try again."

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

// Unwrap exposes the wrapped cause so errors.Is keeps working on domain sentinels.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns the error with an extra metadata entry.
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

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// NewValidationFailedError reports which validation rule blocked navigation.
func NewValidationFailedError(questionID, rule, message string) *StandardError {
	return newError(ErrCodeValidationFailed, message,
		fmt.Sprintf("questionId: %s, rule: %s", questionID, rule), false, nil).
		WithMetadata("questionId", questionID).
		WithMetadata("rule", rule)
}

// NewIncompleteAnswersError blocks a submission while active questions fail validation.
// failures is attached as-is for the client to render.
func NewIncompleteAnswersError(questionIDs []string, failures interface{}) *StandardError {
	return newError(ErrCodeValidationFailed, "Some answers are missing or invalid",
		fmt.Sprintf("questions: %s", strings.Join(questionIDs, ", ")), false, nil).
		WithMetadata("questionIds", questionIDs).
		WithMetadata("failures", failures)
}

// NewRatingFailedError is transient: the caller keeps showing the last good premium.
func NewRatingFailedError(err error) *StandardError {
	return newError(ErrCodeRatingFailed, "Premium could not be recalculated", err.Error(), true, err)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Quote session not found",
		fmt.Sprintf("sessionId: %s", sessionID), false, nil)
}

func NewNoPremiumError() *StandardError {
	return newError(ErrCodeNoPremium, "Premium has not been calculated yet",
		"answer more questions before submitting", false, nil)
}

func NewInvalidPayloadError(details string) *StandardError {
	return newError(ErrCodeInvalidPayload, "Quote payload is incomplete", details, false, nil)
}

// NewQuoteSubmissionFailedError carries the generic retry prompt; no automatic retry happens.
func NewQuoteSubmissionFailedError(err error) *StandardError {
	return newError(ErrCodeQuoteSubmissionFailed, RetryPrompt, err.Error(), true, err)
}

func NewWalletQueryFailedError(err error) *StandardError {
	return newError(ErrCodeWalletQueryFailed, RetryPrompt, err.Error(), true, err)
}

// NewFundingAmountTooLowError states the minimum amount the customer has to fund.
func NewFundingAmountTooLowError(minimum string) *StandardError {
	return newError(ErrCodeFundingAmountTooLow,
		fmt.Sprintf("Minimum funding amount is ₦%s", minimum),
		fmt.Sprintf("minimum: %s", minimum), false, nil).
		WithMetadata("minimum", minimum)
}

func NewFundingFailedError(err error) *StandardError {
	return newError(ErrCodeFundingFailed, RetryPrompt, err.Error(), true, err)
}

func NewDraftNotFoundError(draftID string) *StandardError {
	return newError(ErrCodeDraftNotFound, "Pending quote not found or expired",
		fmt.Sprintf("draftId: %s", draftID), false, nil)
}

func NewDraftStoreFailedError(err error) *StandardError {
	return newError(ErrCodeDraftStoreFailed, RetryPrompt, err.Error(), true, err)
}

func NewReferenceDataFailedError(resource string, err error) *StandardError {
	return newError(ErrCodeReferenceDataFailed, "Reference data lookup failed",
		fmt.Sprintf("resource: %s, error: %s", resource, err.Error()), true, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewEventPublishFailedError(event string, err error) *StandardError {
	return newError(ErrCodeEventPublishFailed, "Event publish failed",
		fmt.Sprintf("event: %s, error: %s", event, err.Error()), true, err)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service),
		err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeWalletQueryFailed,
		ErrCodeQuoteSubmissionFailed,
		ErrCodeFundingFailed,
		ErrCodeDraftStoreFailed,
		ErrCodeReferenceDataFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeEventPublishFailed:
		return 3
	case ErrCodeRatingFailed:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
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

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err into a *StandardError when one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize always yields a StandardError; unknown errors become INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return newError("INTERNAL_ERROR", "Unexpected error", err.Error(), false, err)
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidPayload, ErrCodeFundingAmountTooLow:
		return "validation"
	case ErrCodeSessionNotFound, ErrCodeDraftNotFound, ErrCodeNoPremium:
		return "business"
	case ErrCodeRatingFailed:
		return "rating"
	default:
		return "technical"
	}
}
