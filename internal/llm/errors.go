package llm

import "errors"

var (
	// ErrMissingCredential indicates no API key is configured. No request is sent.
	ErrMissingCredential = errors.New("llm api key not configured")

	// ErrUnavailable indicates the model endpoint is unreachable.
	ErrUnavailable = errors.New("llm endpoint unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRemoteCall indicates the endpoint answered with a non-success status
	// (bad credentials, rate limiting, server errors).
	ErrRemoteCall = errors.New("llm remote call failed")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrSchemaViolation indicates a decoded object is missing a required field.
	ErrSchemaViolation = errors.New("llm output violates response schema")
)

// IsRemoteFailure reports whether err came from the model call itself
// rather than from parsing its output.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRemoteCall)
}
