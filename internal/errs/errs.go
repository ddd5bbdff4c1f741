// Package errs defines the distinct error kinds the reconciliation and
// migration engine raises, so callers can tell a fatal misconfiguration
// apart from a per-action failure without parsing message text.
package errs

import "fmt"

// InputError reports user-visible misconfiguration: missing credentials,
// malformed metadata.yaml, bad URL shapes, or an invalid level sequence.
type InputError struct {
	Msg   string
	Cause error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *InputError) Unwrap() error { return e.Cause }

// NewInputError builds an InputError with no wrapped cause.
func NewInputError(msg string) *InputError {
	return &InputError{Msg: msg}
}

// WrapInputError builds an InputError wrapping cause.
func WrapInputError(msg string, cause error) *InputError {
	return &InputError{Msg: msg, Cause: cause}
}

// ClientError reports a forum-server failure: transport, HTTP status, or a
// shape mismatch in the returned data.
type ClientError struct {
	Msg   string
	Cause error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *ClientError) Unwrap() error { return e.Cause }

// NewClientError builds a ClientError with no wrapped cause.
func NewClientError(msg string) *ClientError {
	return &ClientError{Msg: msg}
}

// WrapClientError builds a ClientError wrapping cause.
func WrapClientError(msg string, cause error) *ClientError {
	return &ClientError{Msg: msg, Cause: cause}
}

// ActionError reports an executor invariant violation, such as a
// content-changed update whose new content is nil.
type ActionError struct {
	Msg string
}

func (e *ActionError) Error() string { return e.Msg }

// NewActionError builds an ActionError.
func NewActionError(msg string) *ActionError {
	return &ActionError{Msg: msg}
}

// ServerError reports that preparing a run failed: the index topic could
// not be created or retrieved.
type ServerError struct {
	Msg   string
	Cause error
}

func (e *ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *ServerError) Unwrap() error { return e.Cause }

// WrapServerError builds a ServerError wrapping cause.
func WrapServerError(msg string, cause error) *ServerError {
	return &ServerError{Msg: msg, Cause: cause}
}

// MigrationError reports that one or more files failed during a migrate
// run. It carries every failure encountered so the caller can report all
// of them, not just the first.
type MigrationError struct {
	Failures []string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration failed for %d item(s): %v", len(e.Failures), e.Failures)
}

// NewMigrationError builds a MigrationError from the collected failure
// descriptions.
func NewMigrationError(failures []string) *MigrationError {
	return &MigrationError{Failures: failures}
}
