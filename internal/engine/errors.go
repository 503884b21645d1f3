package engine

import (
	"errors"
	"fmt"
)

// Error kinds. A *RemoteError always unwraps to exactly one of these.
var (
	ErrRemoteQuery   = errors.New("remote query failed")
	ErrRemoteRender  = errors.New("remote render failed")
	ErrRemotePresets = errors.New("remote presets listing failed")
)

// RemoteError describes a failed call to the synthesis engine.
// StatusCode is 0 when the request never produced a response (connection
// refused, timeout, open circuit breaker); Err then holds the cause.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error

	kind error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %s: %v", e.kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%v: %s returned status %d: %s", e.kind, e.Op, e.StatusCode, e.Body)
}

// Unwrap exposes both the error kind and the transport cause, so
// errors.Is(err, ErrRemoteRender) and errors.Is(err, context.DeadlineExceeded)
// can both hold for the same error.
func (e *RemoteError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.kind, e.Err}
	}
	return []error{e.kind}
}

// IsTransport reports whether err is a RemoteError without an engine response.
func IsTransport(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.StatusCode == 0
}

func transportError(op string, kind, cause error) *RemoteError {
	return &RemoteError{Op: op, Err: cause, kind: kind}
}

func statusError(op string, kind error, status int, body []byte) *RemoteError {
	return &RemoteError{Op: op, StatusCode: status, Body: string(body), kind: kind}
}

// isClientError reports whether err is an engine response in the 4xx range.
// Those are caused by the request, not by engine health.
func isClientError(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.StatusCode >= 400 && remote.StatusCode < 500
}
