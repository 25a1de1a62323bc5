package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"foreign error", stderrors.New("boom"), http.StatusInternalServerError},
		{"validation", NewValidationError("bad", ""), http.StatusBadRequest},
		{"unknown role", NewUnknownRoleError("Pilot"), http.StatusBadRequest},
		{"join rejected", NewJoinRejectedError("no", nil), http.StatusBadRequest},
		{"step rejected", NewStepRejectedError("next", stderrors.New("incomplete")), http.StatusConflict},
		{"no match", NewNoMatchError("No eligible drivers", stderrors.New("hos")), http.StatusConflict},
		{"not found", NewNotFoundError("session", "s1"), http.StatusNotFound},
		{"timeout", NewTimeoutError("recaptcha", nil), http.StatusGatewayTimeout},
		{"persistence", NewPersistenceError("save the draft", nil), http.StatusBadGateway},
		{"configuration", NewConfigurationError("missing secret"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NewNotFoundError("record", "r1")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
	}{
		{"persistence retries", NewPersistenceError("finalize", stderrors.New("down")), 3},
		{"external service retries", NewExternalServiceError("recaptcha", stderrors.New("dial")), 3},
		{"timeout retries twice", NewTimeoutError("recaptcha", nil), 2},
		{"invalid draft thrown", NewInvalidDraftError("x"), 0},
		{"join rejected thrown", NewJoinRejectedError("Please accept the terms.", nil), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, bpmn.Code, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestNonRetryableOverridesCode(t *testing.T) {
	err := NewExternalServiceError("sns", nil)
	err.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(err).Retries)
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	cause := stderrors.New("connection reset")
	n := Normalize(cause)
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.ErrorIs(t, n, cause)

	std := NewHandoffError("search-index", cause)
	assert.Same(t, std, Normalize(fmt.Errorf("publish: %w", std)))
	assert.True(t, HasCode(std, ErrCodeHandoffFailed))
	assert.False(t, HasCode(cause, ErrCodeHandoffFailed))
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeValidationFailed:   "VALIDATION",
		ErrCodeStepRejected:       "VALIDATION",
		ErrCodeInvalidDraft:       "VALIDATION",
		ErrCodePersistenceFailed:  "STORAGE",
		ErrCodeNotFound:           "STORAGE",
		ErrCodeVerificationFailed: "JOIN",
		ErrCodeJoinRejected:       "JOIN",
		ErrCodeHandoffFailed:      "HANDOFF",
		ErrCodeNotificationFail:   "HANDOFF",
		ErrCodeNoEligibleMatch:    "MARKETPLACE",
		ErrCodeInternal:           "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestWithMetadata(t *testing.T) {
	err := NewNotFoundError("session", "s1").WithMetadata("role", "Driver")
	require.NotNil(t, err.Metadata)
	assert.Equal(t, "Driver", err.Metadata["role"])
	assert.Equal(t, "StandardError[NOT_FOUND]: session not found", err.Error())
}
