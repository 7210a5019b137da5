package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotConfigured, "NOT_CONFIGURED"},
		{ErrTimeout, "TIMEOUT"},
		{ErrUnavailable, "UNAVAILABLE"},
		{fmt.Errorf("%w: status 401", ErrRejected), "REJECTED"},
		{fmt.Errorf("parse: %w", ErrInvalidOutput), "INVALID_OUTPUT"},
		{fmt.Errorf("%w: status 503", ErrRetryExhausted), "RETRY_EXHAUSTED"},
		{errors.New("other"), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorCode(tt.err))
	}
}

func TestStatusErrorRetryable(t *testing.T) {
	assert.True(t, (&statusError{code: 429}).retryable())
	assert.True(t, (&statusError{code: 529}).retryable())
	assert.True(t, (&statusError{code: 500}).retryable())
	assert.False(t, (&statusError{code: 400}).retryable())
	assert.False(t, (&statusError{code: 401}).retryable())
}
