package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"property-quote/internal/common/errors"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code. Submission-side failures carry the generic retry
// prompt instead of the underlying message.
func writeError(w http.ResponseWriter, err error) {
	stdErr := errors.Normalize(err)

	status := statusFor(stdErr.Code)
	body := errorBody{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Retryable: stdErr.Retryable,
		Metadata:  stdErr.Metadata,
	}
	switch stdErr.Code {
	case errors.ErrCodeWalletQueryFailed,
		errors.ErrCodeQuoteSubmissionFailed,
		errors.ErrCodeFundingFailed,
		errors.ErrCodeDraftStoreFailed:
		body.Message = errors.RetryPrompt
	case errors.ErrCodeFundingAmountTooLow, errors.ErrCodeValidationFailed, errors.ErrCodeInvalidPayload:
		if body.Metadata == nil && stdErr.Details != "" {
			body.Metadata = map[string]interface{}{"details": stdErr.Details}
		}
	}
	if status == http.StatusInternalServerError {
		body.Message = "Internal error"
	}

	writeJSON(w, status, map[string]interface{}{"error": body})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidationFailed, errors.ErrCodeInvalidPayload, errors.ErrCodeFundingAmountTooLow:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeSessionNotFound, errors.ErrCodeDraftNotFound, "RESOURCE_NOT_FOUND":
		return http.StatusNotFound
	case errors.ErrCodeNoPremium:
		return http.StatusConflict
	case errors.ErrCodeWalletQueryFailed, errors.ErrCodeQuoteSubmissionFailed, errors.ErrCodeFundingFailed,
		"EXTERNAL_SERVICE_ERROR":
		return http.StatusBadGateway
	case "TIMEOUT_ERROR":
		return http.StatusGatewayTimeout
	case errors.ErrCodeDraftStoreFailed, errors.ErrCodeReferenceDataFailed, errors.ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	case errCodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

const errCodeBadRequest errors.ErrorCode = "BAD_REQUEST"

func badRequest(format string, args ...interface{}) error {
	return &errors.StandardError{Code: errCodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// readJSON decodes the request body into v. An empty body leaves v untouched.
func readJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}
