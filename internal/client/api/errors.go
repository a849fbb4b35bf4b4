package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call.
type Kind string

const (
	// KindServer: the server answered with a non-2xx status or an unusable body.
	KindServer Kind = "server"
	// KindNetwork: the request went out but no response came back.
	KindNetwork Kind = "network"
	// KindClient: the request could not be built or its result not stored.
	KindClient Kind = "client"
	// KindAuth: a 401 that could not be resolved, or a rejected refresh.
	KindAuth Kind = "auth"
)

const (
	msgGeneric     = "An error occurred"
	msgNetwork     = "Network error. Please check your connection."
	msgUnexpected  = "An unexpected error occurred"
	msgMalformed   = "Malformed response from server"
	msgValidation  = "Validation failed"
	msgStoreFailed = "Failed to update stored credentials"
)

// Error is the single error shape returned by every API call.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	// Status is the HTTP status, 0 when no response was received.
	Status int
	Errors map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAuthError reports whether err is an unresolved authentication failure.
func IsAuthError(err error) bool {
	e, ok := AsError(err)
	return ok && (e.Kind == KindAuth || e.Status == http.StatusUnauthorized)
}

func IsNetworkError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindNetwork
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if e, ok := AsError(err); ok {
		return e.Status
	}
	return 0
}

type errorBody struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors"`
}

// responseError normalizes a non-2xx response. The body is optional; when it
// carries no message the generic one is used.
func responseError(status int, body []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.Message
	if msg == "" {
		msg = msgGeneric
	}
	kind := KindServer
	if status == http.StatusUnauthorized {
		kind = KindAuth
	}
	return &Error{Kind: kind, Message: msg, Code: eb.Code, Status: status, Errors: eb.Errors}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
}

func clientError(err error) *Error {
	msg := msgUnexpected
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{Kind: KindClient, Message: msg, Err: err}
}

func validationError(fields map[string][]string) *Error {
	return &Error{Kind: KindClient, Message: msgValidation, Errors: fields}
}

func malformedError(status int, err error) *Error {
	return &Error{Kind: KindServer, Message: msgMalformed, Status: status, Err: err}
}

// authFailure turns the error of a failed refresh into the error reported
// for the original request.
func authFailure(err error) *Error {
	e, ok := AsError(err)
	if !ok {
		e = clientError(err)
	}
	out := *e
	out.Kind = KindAuth
	if out.Err == nil {
		out.Err = e
	}
	return &out
}
