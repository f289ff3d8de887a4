// Package fault defines the classified error taxonomy shared by the provider
// boundary, the schema validator, and the simulation model. Callers test for a
// class with errors.Is and render user-facing text with UserMessage; raw
// provider output never travels through these errors to the user.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration covers missing credentials and malformed local input.
	// Never retried, always surfaced with actionable text.
	ErrConfiguration = errors.New("configuration error")

	// ErrServiceUnavailable is the terminal form of a transient failure after
	// the retry budget is exhausted.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrMalformedOutput means the provider replied but the content violated
	// the structured-output contract.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrTraceMismatch is an internal consistency violation between a
	// simulation trace and the blueprint it claims to describe. Treated as a
	// contract bug, never downgraded to a skipped step.
	ErrTraceMismatch = errors.New("simulation trace mismatch")
)

// HTTPError carries the provider's HTTP status and message so the gateway can
// classify the failure. The message is preserved for logs and error chains.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Message)
}

// UserMessage maps an error to a fixed, classified string safe to show to the
// end user. Diagnostic detail stays in the logs.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "Configuration problem: check that GEMINI_API_KEY is set and your input is valid JSON."
	case errors.Is(err, ErrServiceUnavailable):
		return "The AI service is temporarily unavailable. Please try again in a moment."
	case errors.Is(err, ErrMalformedOutput):
		return "The AI returned an unexpected response format. Re-running the request usually resolves this."
	case errors.Is(err, ErrTraceMismatch):
		return "The simulation produced an inconsistent trace. This is a bug; please report it."
	default:
		return "The request failed. See the logs for details."
	}
}
