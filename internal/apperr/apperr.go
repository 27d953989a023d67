// Package apperr defines the application error taxonomy shared by the
// pipeline stages and HTTP handlers.
package apperr

import "fmt"

// Kind classifies an error for HTTP mapping and logging.
type Kind int

const (
	// Validation marks malformed, missing or oversized caller input.
	Validation Kind = iota
	// Upstream marks a transcription or caption collaborator failure.
	Upstream
	// ModelResponse marks a summarization reply that failed JSON parsing
	// or structural validation.
	ModelResponse
	// Configuration marks missing or placeholder service credentials.
	Configuration
	// NotFound marks a missing or foreign-owned record.
	NotFound
	// Internal marks everything else.
	Internal
)

// Error carries a kind, a display-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (caused by: %v)", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

// KindOf returns the error's kind, or Internal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the display-safe message, or a generic fallback for
// unclassified errors so raw collaborator detail never reaches the caller.
func MessageOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	return "something went wrong, please try again"
}
