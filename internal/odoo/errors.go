package odoo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration matches any *ConfigurationError.
	ErrConfiguration = errors.New("odoo configuration error")
	// ErrAuthentication matches any *AuthenticationError.
	ErrAuthentication = errors.New("odoo authentication failed")
	// ErrRemoteCall matches any *RemoteCallError.
	ErrRemoteCall = errors.New("odoo remote call failed")

	// ErrSessionExpired is reported when the ERP rejects the session credential.
	ErrSessionExpired = errors.New("odoo session expired")
	// ErrRateLimited is reported for HTTP 429 responses.
	ErrRateLimited = errors.New("odoo rate limited")
	// ErrTransport covers network failures and per-call timeouts.
	ErrTransport = errors.New("odoo transport failure")
	// ErrMalformedResponse covers empty or non-JSON bodies.
	ErrMalformedResponse = errors.New("odoo malformed response")
	// ErrServerStatus covers 5xx responses.
	ErrServerStatus = errors.New("odoo server error status")
	// ErrUnexpectedStatus covers non-retryable non-2xx responses.
	ErrUnexpectedStatus = errors.New("odoo unexpected status")
	// ErrApplication is an error object returned inside a JSON-RPC response.
	ErrApplication = errors.New("odoo application error")
)

// ConfigurationError lists required settings that are missing.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("odoo configuration: missing %s", strings.Join(e.Missing, ", "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// AuthenticationError reports a failed login.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("odoo authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("odoo authentication failed: %s", e.Reason)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// RemoteCallError is the terminal failure of one logical call.
type RemoteCallError struct {
	Model    string
	Method   string
	Attempts int
	Message  string
	Err      error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("odoo %s.%s failed after %d attempt(s): %s", e.Model, e.Method, e.Attempts, e.Message)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}

// isTransient reports whether err may succeed on a later attempt.
func isTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, ErrServerStatus)
}

// applicationFault keeps the remote message separate from the wrapping text.
type applicationFault struct {
	kind    error
	message string
}

func (f *applicationFault) Error() string {
	return fmt.Sprintf("%v: %s", f.kind, f.message)
}

func (f *applicationFault) Unwrap() error { return f.kind }

func remoteMessage(err error) string {
	var fault *applicationFault
	if errors.As(err, &fault) {
		return fault.message
	}
	return err.Error()
}
