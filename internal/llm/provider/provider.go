// Package provider defines the uniform contract over the two model backends
// (local quantized runtime, cloud completion API) and the adapter
// implementations behind it.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Adapter is the uniform interface over one model backend.
// At most one adapter answers a given request; fallback between adapters is
// the selector's job, never the adapter's.
type Adapter interface {
	// Generate produces a completion for the request. Failures surface as
	// *BackendError; provider-internal faults never cross this boundary.
	Generate(ctx context.Context, req Request) (string, error)

	// Available reports whether the backend could plausibly serve a call.
	// It must be cheap and side-effect-free (file presence for the local
	// model, key presence for the cloud API) and does not guarantee the
	// next Generate succeeds.
	Available() bool

	// Name returns the backend name (e.g. "local", "groq").
	Name() string
}

// Message is one chat message sent to a backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request carries everything an adapter needs for one generation.
type Request struct {
	// System is the system message for this task.
	System string
	// History holds prior conversation turns in chronological order,
	// already truncated to the adapter's context window by the caller.
	History []Message
	// Prompt is the new user prompt.
	Prompt string
	// MaxTokens caps the completion length (0 = adapter default).
	MaxTokens int
	// Temperature controls sampling randomness.
	Temperature float32
}

// Messages flattens the request into an ordered chat transcript:
// system, history, then the new user prompt.
func (r Request) Messages() []Message {
	msgs := make([]Message, 0, len(r.History)+2)
	if r.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: r.System})
	}
	msgs = append(msgs, r.History...)
	msgs = append(msgs, Message{Role: RoleUser, Content: r.Prompt})
	return msgs
}

// ErrorKind classifies an adapter failure.
type ErrorKind string

// Backend error kinds.
const (
	KindUnavailable ErrorKind = "unavailable"
	KindRateLimited ErrorKind = "rate_limited"
	KindTimeout     ErrorKind = "timeout"
	KindMalformed   ErrorKind = "malformed"
)

// BackendError is an adapter-level failure during generation.
// Detail is the only provider-internal information that crosses the core
// boundary.
type BackendError struct {
	Backend string
	Kind    ErrorKind
	Detail  string
	cause   error
}

// NewBackendError creates a backend error wrapping the original cause.
func NewBackendError(backend string, kind ErrorKind, detail string, cause error) *BackendError {
	return &BackendError{
		Backend: backend,
		Kind:    kind,
		Detail:  detail,
		cause:   cause,
	}
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend %s: %s", e.Backend, e.Kind, e.Detail)
}

// Unwrap returns the original cause.
func (e *BackendError) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is a BackendError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Kind == kind
}
