package camunda

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-quote/internal/common/errors"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"invalid argument", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"context deadline exceeded", "TIMEOUT_ERROR"},
		{"process not found", "RESOURCE_NOT_FOUND"},
		{"connection refused", "EXTERNAL_SERVICE_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(stderrors.New(tt.msg), "topology", 2)

			var se *errors.StandardError
			require.True(t, stderrors.As(err, &se))
			assert.Equal(t, tt.code, se.Code)
			assert.Contains(t, se.Details, "after 3 attempts")
		})
	}
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 2*time.Second, backoff(rc, 1))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 5*time.Second, backoff(rc, 3))
}
