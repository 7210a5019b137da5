package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by Generate. Callers match them with errors.Is;
// extraction maps every one of them to a review task.
var (
	ErrNotConfigured  = errors.New("llm api key not configured")
	ErrUnavailable    = errors.New("llm api unavailable")
	ErrTimeout        = errors.New("llm request timed out")
	ErrRejected       = errors.New("llm request rejected")
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrInvalidOutput means the response text held no JSON matching the
	// expected shape.
	ErrInvalidOutput = errors.New("invalid llm output format")
)

// statusError is a non-2xx API response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("anthropic returned status %d: %s", e.code, e.body)
}

// retryable covers rate limiting, overload (529) and server errors.
func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "NOT_CONFIGURED"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
