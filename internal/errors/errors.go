// Package errors provides sentinel errors and custom error types for regression-sniffer.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrMissingToken indicates that a required access token is not configured
	ErrMissingToken = errors.New("missing access token")

	// ErrInvalidState indicates that the persisted state failed schema validation
	ErrInvalidState = errors.New("invalid persisted state")

	// ErrInvalidResponse indicates that an external service returned data that failed validation
	ErrInvalidResponse = errors.New("invalid response")

	// ErrNotCloned indicates that a repository clone is not available on disk
	ErrNotCloned = errors.New("repository not cloned")
)

// MissingTokenError is returned when one of the required API tokens is not set
type MissingTokenError struct {
	Variable  string
	Locations []string
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("%s not set.\nPlease set the %s environment variable in %s",
		e.Variable, e.Variable, quoteJoin(e.Locations))
}

// Is returns true if the target error is ErrMissingToken
func (e *MissingTokenError) Is(target error) bool {
	return target == ErrMissingToken
}

// NewMissingTokenError creates a new MissingTokenError
func NewMissingTokenError(variable string, locations []string) *MissingTokenError {
	return &MissingTokenError{Variable: variable, Locations: locations}
}

// ValidationError describes a single schema violation in loaded data.
// Kind is either ErrInvalidState or ErrInvalidResponse.
type ValidationError struct {
	Kind  error
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Msg)
}

// Is reports whether target is the kind of this validation error
func (e *ValidationError) Is(target error) bool {
	return target == e.Kind
}

// NewStateError creates a ValidationError for persisted state
func NewStateError(field, msg string) *ValidationError {
	return &ValidationError{Kind: ErrInvalidState, Field: field, Msg: msg}
}

// NewResponseError creates a ValidationError for external service data
func NewResponseError(field, msg string) *ValidationError {
	return &ValidationError{Kind: ErrInvalidResponse, Field: field, Msg: msg}
}

// HTTPError represents a non-2xx answer from a REST API
type HTTPError struct {
	Service    string
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s API returned %d for %s %s", e.Service, e.StatusCode, e.Method, e.URL)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether the request may succeed when retried
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return strings.Join(quoted, " or ")
}
