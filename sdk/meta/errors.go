package meta

import (
	"fmt"
	"strings"
)

// ErrAuthentication represents an error asserting a principal's identity.
type ErrAuthentication struct {
	Message string `json:"message,omitempty"`
}

func (e *ErrAuthentication) Error() string {
	return e.Message
}

// ErrBadRequest represents an error wherein an invalid request has been
// rejected by the API server.
type ErrBadRequest struct {
	Message string `json:"message,omitempty"`
	// Details may enumerate specific request schema violations.
	Details []string `json:"details,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s:\n  %s", e.Message, strings.Join(e.Details, "\n  "))
}

// ErrNotFound represents an error wherein a resource presumed to exist could
// not be located.
type ErrNotFound struct {
	Message string `json:"message,omitempty"`
}

func (e *ErrNotFound) Error() string {
	return e.Message
}

// ErrNotSupported represents an error wherein the API server explicitly does
// not support a request.
type ErrNotSupported struct {
	Message string `json:"message,omitempty"`
}

func (e *ErrNotSupported) Error() string {
	return e.Message
}

// ErrInternalServer represents a failure on the API server's side. Message
// carries whatever explanation the server offered.
type ErrInternalServer struct {
	Message string `json:"message,omitempty"`
}

func (e *ErrInternalServer) Error() string {
	if e.Message == "" {
		return "An internal server error occurred."
	}
	return e.Message
}
