package meta

import (
	"encoding/json"
	"fmt"
)

// errorBody is the wire shape shared by every error type in this package.
// Message is what the original clients of this API read.
type errorBody struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// ErrAuthentication represents an error asserting a principal's identity.
type ErrAuthentication struct {
	// Reason is a natural language explanation for why authentication failed.
	Reason string `json:"reason,omitempty"`
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("Could not authenticate the request: %s", e.Reason)
}

// MarshalJSON amends ErrAuthentication instances with type metadata.
func (e ErrAuthentication) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		errorBody{
			Kind:    "AuthenticationError",
			Message: e.Error(),
		},
	)
}

// ErrBadRequest represents an error wherein an invalid request has been
// rejected by the API server.
type ErrBadRequest struct {
	// Reason is a natural language explanation for why the request is invalid.
	Reason string `json:"reason,omitempty"`
	// Details may further qualify why a request is invalid. For instance, if
	// the Reason field states that request validation failed, the Details field,
	// may enumerate specific request schema violations.
	Details []string `json:"details,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("Bad request: %s", e.Reason)
	}
	msg := fmt.Sprintf("Bad request: %s:", e.Reason)
	for i, detail := range e.Details {
		msg = fmt.Sprintf("%s\n  %d. %s", msg, i, detail)
	}
	return msg
}

// MarshalJSON amends ErrBadRequest instances with type metadata.
func (e ErrBadRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		errorBody{
			Kind:    "BadRequestError",
			Message: e.Reason,
			Details: e.Details,
		},
	)
}

// ErrNotFound represents an error wherein a resource presumed to exist could
// not be located.
type ErrNotFound struct {
	// Type identifies the type of the resource that could not be located.
	Type string `json:"type,omitempty"`
	// ID is the identifier of the resource of type Type that could not be
	// located.
	ID string `json:"id,omitempty"`
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found.", e.Type)
	}
	return fmt.Sprintf("%s %q not found.", e.Type, e.ID)
}

// MarshalJSON amends ErrNotFound instances with type metadata.
func (e ErrNotFound) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		errorBody{
			Kind:    "NotFoundError",
			Message: e.Error(),
		},
	)
}

// ErrConflict represents an error wherein a request cannot be completed because
// it would violate some constraint of the system, for instance creating a
// second user with an email address already used by another user.
type ErrConflict struct {
	// Type identifies the type of the resource that the conflict applies to.
	Type string `json:"type,omitempty"`
	// ID is the identifier of the resource that has encountered a conflict.
	ID string `json:"id,omitempty"`
	// Field, when non-empty, names the uniquely indexed field that was
	// violated.
	Field string `json:"field,omitempty"`
	// Reason is a natural language explanation of the conflict.
	Reason string `json:"reason,omitempty"`
}

func (e *ErrConflict) Error() string {
	return e.Reason
}

// MarshalJSON amends ErrConflict instances with type metadata.
func (e ErrConflict) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		errorBody{
			Kind:    "ConflictError",
			Message: e.Reason,
		},
	)
}

// ErrInternalServer represents a condition wherein the API server has
// encountered an unexpected error and does not wish to communicate further
// details of that error to the client.
type ErrInternalServer struct{}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}

// MarshalJSON amends ErrInternalServer instances with type metadata.
func (e ErrInternalServer) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		errorBody{
			Kind:    "InternalServerError",
			Message: e.Error(),
		},
	)
}

// ErrNotSupported represents an error wherein a request cannot be completed
// because the API server explicitly does not support it. This can occur, for
// instance, if a client attempts to log in while OpenID Connect is disabled or
// uploads an avatar while no object store is configured.
type ErrNotSupported struct {
	// Details is a natural language explanation of why the request is not
	// supported by the API server.
	Details string `json:"reason,omitempty"`
}

func (e *ErrNotSupported) Error() string {
	return e.Details
}

// MarshalJSON amends ErrNotSupported instances with type metadata.
func (e ErrNotSupported) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		errorBody{
			Kind:    "NotSupportedError",
			Message: e.Details,
		},
	)
}

// ErrGeneric carries the message of an error that isn't otherwise classified.
// The API server reports store and upstream failures this way so callers see
// the underlying message.
type ErrGeneric struct {
	Message string `json:"message,omitempty"`
}

func (e *ErrGeneric) Error() string {
	return e.Message
}

// MarshalJSON amends ErrGeneric instances with type metadata.
func (e ErrGeneric) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		errorBody{
			Kind:    "Error",
			Message: e.Message,
		},
	)
}
