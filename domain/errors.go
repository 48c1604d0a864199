package domain

import (
	"errors"
	"fmt"
)

// Failure classes. Every error returned by the API client matches exactly one
// of these with errors.Is.
var (
	// ErrConfiguration indicates operator-supplied settings are missing.
	ErrConfiguration = errors.New("missing configuration")

	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")

	// ErrTimeout indicates the request exceeded its deadline.
	// Timeout errors also match ErrNetwork.
	ErrTimeout = errors.New("request timed out")

	// ErrRemote indicates the remote service answered with a non-2xx status.
	ErrRemote = errors.New("remote service error")

	// ErrDecode indicates the response body did not match the expected shape.
	ErrDecode = errors.New("unexpected response shape")
)

// Operation failures. These wrap one of the failure classes above.
var (
	// ErrAuthentication indicates login did not complete; no session was stored.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRemoteFetch indicates a timeline read did not complete.
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrPublish indicates a status was not published.
	ErrPublish = errors.New("publish failed")

	// ErrMissingArgument indicates a required input was empty.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrCanceled indicates the user abandoned an interactive prompt or draft.
	ErrCanceled = errors.New("canceled")
)

// RemoteError carries a non-2xx response.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API %s %s returned %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("API %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is reports RemoteError as ErrRemote.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// timeoutError lets a single wrapped error satisfy both ErrTimeout and ErrNetwork.
type timeoutError struct {
	err error
}

// NewTimeoutError wraps err so it matches ErrTimeout and ErrNetwork.
func NewTimeoutError(err error) error {
	return &timeoutError{err: err}
}

func (e *timeoutError) Error() string { return fmt.Sprintf("%v: %v", ErrTimeout, e.err) }
func (e *timeoutError) Unwrap() error { return e.err }

func (e *timeoutError) Is(target error) bool {
	return target == ErrTimeout || target == ErrNetwork
}
