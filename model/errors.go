// Package model holds the shared types of the gateway: the operation
// catalog contracts, the response envelope, and the failure taxonomy.
package model

import "fmt"

// Failure kinds. Every error surfaced by the dispatcher is one of these.
const (
	// ErrInvalidRequest is a caller-side contract violation: unknown
	// operation, missing required field, pattern mismatch, or an unmet
	// cross-field constraint. Upstream is never contacted.
	ErrInvalidRequest = "INVALID_REQUEST"
	// ErrTransport is a failure to communicate with upstream (connection
	// refused, timeout, DNS).
	ErrTransport = "TRANSPORT_ERROR"
	// ErrUpstream means upstream responded with an error status or an
	// unparseable body.
	ErrUpstream = "UPSTREAM_ERROR"
)

// Failure is the normalized error carried inside a response envelope.
// It implements the error interface.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// NewInvalidRequestError returns an INVALID_REQUEST failure.
func NewInvalidRequestError(msg string) *Failure {
	return &Failure{Kind: ErrInvalidRequest, Message: msg}
}

// NewUnknownOperationError returns an INVALID_REQUEST failure naming the
// operation that was not found in the catalog.
func NewUnknownOperationError(name string) *Failure {
	return &Failure{Kind: ErrInvalidRequest, Message: fmt.Sprintf("unknown operation: %s", name)}
}

// NewTransportError returns a TRANSPORT_ERROR failure wrapping the
// underlying transport error verbatim.
func NewTransportError(err error) *Failure {
	return &Failure{Kind: ErrTransport, Message: err.Error()}
}

// NewUpstreamStatusError returns an UPSTREAM_ERROR failure preserving the
// original status code and raw body text for diagnosability.
func NewUpstreamStatusError(status int, body []byte) *Failure {
	return &Failure{Kind: ErrUpstream, Message: fmt.Sprintf("status %d: %s", status, body)}
}

// NewMalformedResponseError returns an UPSTREAM_ERROR failure for a
// successful status whose body is not valid JSON.
func NewMalformedResponseError() *Failure {
	return &Failure{Kind: ErrUpstream, Message: "malformed response"}
}
